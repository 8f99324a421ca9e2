package factory

import (
	"fmt"
	"net/http"

	"github.com/campoos/backend-lixeira-app/internal/adapters/httpapi"
	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/metrics"
	"github.com/campoos/backend-lixeira-app/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// IngressFactory creates the entry points that feed the pipeline
type IngressFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline *core.DisposalService
	devices  *core.DeviceService
	store    core.Store
	metrics  *metrics.PipelineMetrics
	registry *prometheus.Registry
}

// NewIngressFactory creates a new ingress factory
func NewIngressFactory(
	cfg *config.Config,
	logger *zap.Logger,
	pipeline *core.DisposalService,
	devices *core.DeviceService,
	store core.Store,
	pipelineMetrics *metrics.PipelineMetrics,
	registry *prometheus.Registry,
) *IngressFactory {
	return &IngressFactory{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		devices:  devices,
		store:    store,
		metrics:  pipelineMetrics,
		registry: registry,
	}
}

// CreateIngress creates the HTTP server
func (f *IngressFactory) CreateIngress() (ports.Ingress, error) {
	serverConfig, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	var metricsHandler http.Handler
	if f.cfg.GetBool("metrics.enabled") {
		metricsHandler = promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{Registry: f.registry})
	}

	return httpapi.NewServer(
		f.pipeline,
		f.devices,
		f.store,
		f.metrics,
		metricsHandler,
		serverConfig,
		f.cfg.GetApp().Environment,
		f.logger.Named("http"),
	), nil
}
