package config

import (
	"fmt"
	"strings"
	"time"
)

// Deployment modes
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// AppConfig represents the deployment settings
type AppConfig struct {
	Environment string
}

// ClassifierConfig represents the configuration for the remote image classifier
type ClassifierConfig struct {
	Provider       string
	APIURL         string
	APIToken       string
	Timeout        time.Duration
	FallbackLabel  string
	FallbackScore  float64
	MaxLabelLength int
}

// OpenAIConfig represents the configuration for the OpenAI vision classifier
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
}

// DatabaseConfig represents the analysis store configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	DSN             string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxWaiting      int
	AcquireTimeout  time.Duration
	AutoMigrate     bool
}

// ServerConfig represents the HTTP ingress configuration
type ServerConfig struct {
	ListenAddress   string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DisposalConfig represents the disposal policy configuration
type DisposalConfig struct {
	ExtraKeywords []string
}

// MQTTConfig represents the bin action publisher configuration
type MQTTConfig struct {
	Enabled        bool
	Broker         string
	ClientID       string
	Topic          string
	Username       string
	Password       string
	PublishTimeout time.Duration
	QueueSize      int
}

// GetApp returns the deployment configuration
func (c *Config) GetApp() AppConfig {
	return AppConfig{
		Environment: strings.ToLower(strings.TrimSpace(c.GetString("app.environment"))),
	}
}

// IsProduction reports whether the service runs in production mode.
// Anything other than "production" is treated as non-production.
func (c *Config) IsProduction() bool {
	return c.GetApp().Environment == EnvProduction
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() (ClassifierConfig, error) {
	timeout, err := c.GetDuration("classifier.timeout")
	if err != nil {
		return ClassifierConfig{}, err
	}
	return ClassifierConfig{
		Provider:       strings.ToLower(c.GetString("classifier.provider")),
		APIURL:         c.GetString("classifier.api_url"),
		APIToken:       c.GetString("classifier.api_token"),
		Timeout:        timeout,
		FallbackLabel:  c.GetString("classifier.fallback_label"),
		FallbackScore:  c.GetFloat64("classifier.fallback_score"),
		MaxLabelLength: c.GetInt("classifier.max_label_length"),
	}, nil
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
	}
}

// GetDatabase returns the database configuration
func (c *Config) GetDatabase() (DatabaseConfig, error) {
	lifetime, err := c.GetDuration("database.conn_max_lifetime")
	if err != nil {
		return DatabaseConfig{}, err
	}
	acquire, err := c.GetDuration("database.acquire_timeout")
	if err != nil {
		return DatabaseConfig{}, err
	}
	return DatabaseConfig{
		Driver:          strings.ToLower(c.GetString("database.driver")),
		Host:            c.GetString("database.host"),
		Port:            c.GetInt("database.port"),
		User:            c.GetString("database.user"),
		Password:        c.GetString("database.password"),
		Name:            c.GetString("database.name"),
		DSN:             c.GetString("database.dsn"),
		SQLitePath:      c.GetString("database.sqlite_path"),
		MaxOpenConns:    c.GetInt("database.max_open_conns"),
		MaxIdleConns:    c.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: lifetime,
		MaxWaiting:      c.GetInt("database.max_waiting"),
		AcquireTimeout:  acquire,
		AutoMigrate:     c.GetBool("database.auto_migrate"),
	}, nil
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	read, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	write, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdown, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		MaxUploadBytes:  c.GetInt64("server.max_upload_bytes"),
		ReadTimeout:     read,
		WriteTimeout:    write,
		ShutdownTimeout: shutdown,
		CORSOrigins:     c.GetStringSlice("server.cors_origins"),
	}, nil
}

// GetDisposal returns the disposal policy configuration
func (c *Config) GetDisposal() DisposalConfig {
	return DisposalConfig{
		ExtraKeywords: c.GetStringSlice("disposal.extra_keywords"),
	}
}

// GetMQTT returns the MQTT configuration
func (c *Config) GetMQTT() (MQTTConfig, error) {
	timeout, err := c.GetDuration("mqtt.publish_timeout")
	if err != nil {
		return MQTTConfig{}, err
	}
	return MQTTConfig{
		Enabled:        c.GetBool("mqtt.enabled"),
		Broker:         c.GetString("mqtt.broker"),
		ClientID:       c.GetString("mqtt.client_id"),
		Topic:          c.GetString("mqtt.topic"),
		Username:       c.GetString("mqtt.username"),
		Password:       c.GetString("mqtt.password"),
		PublishTimeout: timeout,
		QueueSize:      c.GetInt("mqtt.queue_size"),
	}, nil
}

// MySQLDSN builds a go-sql-driver DSN from the discrete database settings
func (d DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// PostgresDSN builds a lib/pq connection string from the discrete database settings
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}
