package di

import (
	"flag"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/campoos/backend-lixeira-app/internal/adapters/cli"
	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Classifier flags
	Environment  string
	Provider     string
	APIURL       string
	APIToken     string
	OpenAIAPIKey string
	OpenAIModel  string

	// Storage flags
	DB string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	// Classifier flags
	fs.StringVar(&flags.Environment, "environment", config.EnvDevelopment, "Deployment mode (production enables strict classification)")
	fs.StringVar(&flags.Provider, "provider", "huggingface", "Classifier provider (huggingface, openai)")
	fs.StringVar(&flags.APIURL, "api-url", "", "Hugging Face inference URL (default from config)")
	fs.StringVar(&flags.APIToken, "api-token", os.Getenv("HF_TOKEN"), "Hugging Face API token")
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModel, "openai-model", "", "OpenAI model name (default from config)")

	// Storage flags
	fs.StringVar(&flags.DB, "db", "", "SQLite file to record the analysis in (in-memory if not specified)")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "Image file to classify")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	_ = fs.Parse(args)
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	// Register CLI runner
	if err := container.Provide(func(pipeline *core.DisposalService, logger *zap.Logger, flags *CLIFlags) *cli.Runner {
		return cli.NewRunner(pipeline, logger, os.Stdout, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("app.environment", flags.Environment)
	v.Set("metrics.enabled", false)

	// Set classifier provider
	v.Set("classifier.provider", flags.Provider)
	if flags.APIURL != "" {
		v.Set("classifier.api_url", flags.APIURL)
	}
	v.Set("classifier.api_token", flags.APIToken)

	// Set provider-specific configuration
	if flags.Provider == "openai" {
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		if flags.OpenAIModel != "" {
			v.Set("openai.model_name", flags.OpenAIModel)
		}
	}

	// Set storage
	if flags.DB != "" {
		v.Set("database.driver", "sqlite")
		v.Set("database.sqlite_path", flags.DB)
	} else {
		v.Set("database.driver", "memory")
	}

	return config.NewFromViper(v)
}
