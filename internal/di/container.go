package di

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/campoos/backend-lixeira-app/internal/adapters/classifier"
	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/disposal"
	"github.com/campoos/backend-lixeira-app/internal/factory"
	"github.com/campoos/backend-lixeira-app/internal/logging"
	"github.com/campoos/backend-lixeira-app/internal/metrics"
	"github.com/campoos/backend-lixeira-app/internal/ports"
	"github.com/campoos/backend-lixeira-app/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	// Register ingress
	if err := container.Provide(factory.NewIngressFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IngressFactory) (ports.Ingress, error) {
		return f.CreateIngress()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// providePipeline registers everything between the configuration and the
// pipeline services. The container must already provide *config.Config
// and *zap.Logger.
func providePipeline(container *dig.Container) error {
	// Register metrics
	if err := container.Provide(func() *prometheus.Registry {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return registry
	}); err != nil {
		return err
	}
	if err := container.Provide(metrics.NewPipelineMetrics); err != nil {
		return err
	}
	if err := container.Provide(func(m *metrics.PipelineMetrics) core.Recorder { return m }); err != nil {
		return err
	}
	if err := container.Provide(func(m *metrics.PipelineMetrics) classifier.FallbackRecorder { return m }); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return err
	}

	// Register store
	if err := container.Provide(func(f *factory.StoreFactory) (core.Store, error) {
		return f.CreateStore(context.Background())
	}); err != nil {
		return err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (factory.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return err
	}

	// Register disposal policy
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.DisposalPolicy {
		return disposal.NewPolicy(cfg.GetDisposal().ExtraKeywords, logger.Named("policy"))
	}); err != nil {
		return err
	}

	// Register pipeline services
	if err := container.Provide(func(
		c core.Classifier,
		policy core.DisposalPolicy,
		store core.Store,
		notifier factory.Notifier,
		recorder core.Recorder,
		logger *zap.Logger,
	) *core.DisposalService {
		return core.NewDisposalService(c, policy, store, notifier, recorder, logger.Named("pipeline"))
	}); err != nil {
		return err
	}
	if err := container.Provide(func(store core.Store, logger *zap.Logger) *core.DeviceService {
		return core.NewDeviceService(store, store, logger.Named("device"))
	}); err != nil {
		return err
	}

	return nil
}
