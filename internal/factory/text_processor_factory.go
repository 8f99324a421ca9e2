package factory

import (
	"github.com/campoos/backend-lixeira-app/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory creates the label normaliser shared by the classifier clients
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		logger: logger.Named("labels"),
	}
}

// CreateTextProcessor creates the processor that sanitises and truncates
// classifier labels before they reach the disposal policy and the store
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}
