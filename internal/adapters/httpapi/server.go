package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Pipeline runs the classification-and-disposal pipeline
type Pipeline interface {
	Process(ctx context.Context, req *core.AnalysisRequest) (*core.Decision, error)
	History(ctx context.Context, limit int) ([]core.HistoryEntry, error)
}

// Devices serves the bin status endpoints
type Devices interface {
	Ping(ctx context.Context, req *core.PingRequest) (*core.DeviceStatus, error)
	Status(ctx context.Context) (*core.DeviceStatus, error)
	LastAction(ctx context.Context) (*core.TrashActionRecord, error)
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RequestRecorder receives per-request measurements
type RequestRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Server is the HTTP ingress of the smart bin
type Server struct {
	pipeline       Pipeline
	devices        Devices
	health         HealthChecker
	recorder       RequestRecorder
	metricsHandler http.Handler
	cfg            config.ServerConfig
	environment    string
	production     bool
	logger         *zap.Logger
	httpServer     *http.Server
	now            func() time.Time
}

// NewServer creates a new HTTP server. recorder and metricsHandler may be nil.
func NewServer(
	pipeline Pipeline,
	devices Devices,
	health HealthChecker,
	recorder RequestRecorder,
	metricsHandler http.Handler,
	cfg config.ServerConfig,
	environment string,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:       pipeline,
		devices:        devices,
		health:         health,
		recorder:       recorder,
		metricsHandler: metricsHandler,
		cfg:            cfg,
		environment:    environment,
		production:     environment == config.EnvProduction,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", headerUserID, headerRequestID},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/analyze", s.handleAnalyze)
		api.Get("/history", s.handleHistory)

		api.Route("/device", func(dev chi.Router) {
			dev.Get("/status", s.handleDeviceStatus)
			dev.Post("/ping", s.handleDevicePing)
			dev.Get("/last-action", s.handleLastAction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Success: false, Error: "endpoint not found"})
	})

	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server",
		zap.String("listen_address", ln.Addr().String()),
		zap.String("environment", s.environment))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop drains in-flight requests within the shutdown timeout
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Stopping HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
