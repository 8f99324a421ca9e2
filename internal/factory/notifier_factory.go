package factory

import (
	"fmt"

	"github.com/campoos/backend-lixeira-app/internal/adapters/notifier"
	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

// Notifier is an action notifier holding a broker connection
type Notifier interface {
	core.ActionNotifier
	Close() error
}

// NotifierFactory creates bin action notifiers
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier connects to the MQTT broker when enabled and publishes from a
// bounded background queue, otherwise returns a no-op notifier
func (f *NotifierFactory) CreateNotifier() (Notifier, error) {
	mqttConfig, err := f.cfg.GetMQTT()
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT configuration: %w", err)
	}
	if !mqttConfig.Enabled {
		f.logger.Debug("MQTT notifications disabled")
		return notifier.NopNotifier{}, nil
	}
	n, err := notifier.NewMQTTNotifier(mqttConfig, f.logger.Named("mqtt"))
	if err != nil {
		return nil, err
	}
	return notifier.NewAsyncNotifier(n, mqttConfig.QueueSize, f.logger.Named("mqtt")), nil
}
