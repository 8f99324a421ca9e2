package factory

import (
	"fmt"

	"github.com/campoos/backend-lixeira-app/internal/adapters/classifier"
	"github.com/campoos/backend-lixeira-app/internal/adapters/openai"
	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates image classifiers
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	recorder      classifier.FallbackRecorder
}

// NewClassifierFactory creates a new classifier factory. recorder may be nil.
func NewClassifierFactory(
	cfg *config.Config,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	recorder classifier.FallbackRecorder,
) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		recorder:      recorder,
	}
}

// CreateRemote creates the single-attempt provider client named in the configuration
func (f *ClassifierFactory) CreateRemote() (classifier.Remote, error) {
	classifierConfig, err := f.cfg.GetClassifier()
	if err != nil {
		return nil, fmt.Errorf("invalid classifier configuration: %w", err)
	}

	switch classifierConfig.Provider {
	case classifier.ProviderHuggingFace:
		return classifier.NewHuggingFaceClient(
			classifierConfig.APIURL,
			classifierConfig.APIToken,
			classifierConfig.Timeout,
			classifierConfig.MaxLabelLength,
			nil,
			f.logger.Named("huggingface"),
			f.textProcessor,
		), nil
	case openai.ProviderOpenAI:
		openaiConfig := f.cfg.GetOpenAI()
		return openai.NewVisionClassifier(
			openaiConfig.APIKey,
			openaiConfig.BaseURL,
			openaiConfig.ModelName,
			openaiConfig.MaxTokens,
			openaiConfig.Temperature,
			classifierConfig.Timeout,
			classifierConfig.MaxLabelLength,
			nil,
			f.logger.Named("openai"),
			f.textProcessor,
		), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", classifierConfig.Provider)
	}
}

// CreateClassifier wraps the remote client in the strategy for the current environment
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	remote, err := f.CreateRemote()
	if err != nil {
		return nil, err
	}
	classifierConfig, err := f.cfg.GetClassifier()
	if err != nil {
		return nil, fmt.Errorf("invalid classifier configuration: %w", err)
	}

	fallback := core.ClassificationResult{
		Label: classifierConfig.FallbackLabel,
		Score: classifierConfig.FallbackScore,
	}
	return classifier.NewForEnvironment(f.cfg.IsProduction(), remote, fallback, f.recorder, f.logger), nil
}
