package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"jitu/internal/config"
	apierrors "jitu/internal/errors"
	"jitu/internal/infrastructure"
	"jitu/internal/mapping"
	customMiddleware "jitu/internal/middleware"
	"jitu/internal/services"
	handlers "jitu/internal/transport/http"
	"jitu/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService
	MappingStore    *mapping.Store
	Metrics         *infrastructure.BusinessMetrics
	OTelProviders   *infrastructure.OTelProviders
	ErrorHandler    *apierrors.ErrorHandler
	Logger          *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	serveErr chan error
}

// NewApplication wires the application from cfg. A nil logger is built from
// cfg.Logging.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("app: configuration is required")
	}
	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("addr", cfg.Server.Addr()))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()
	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	a.MappingStore = mapping.NewStore(a.Logger)

	analysis, err := services.NewAnalysisService(a.Config, a.MappingStore, metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis service: %w", err)
	}
	a.AnalysisService = analysis

	a.HealthService = services.NewHealthService(contracts.Version, contracts.BuildTime, analysis, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware order: RequestID → RealIP → OTel → Recoverer → SecurityHeaders → CORS → RateLimit.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return err
	}
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		Logger:         a.Logger,
	}))
	if rl := a.Config.Security.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Route("/api/v1", a.setupAPIRoutes)

	// Scrapes are logged by the structured logger rather than the error middleware
	r.With(customMiddleware.StructuredLogger(a.Logger)).
		Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout))

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/health/ready", healthHandler.ReadinessCheck)
	r.Get("/health/live", healthHandler.LivenessCheck)
	r.Get("/version", healthHandler.Version)

	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, 0)
	query := customMiddleware.NewQueryParamValidator(a.Logger, a.ErrorHandler)
	maxUpload := a.Config.Ingest.MaxUploadBytes

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.ContentTypeValidator("application/json", "multipart/form-data"))
		r.Use(validation.ValidateRequest)

		mappingHandler := handlers.NewMappingHandler(a.AnalysisService, validation, a.ErrorHandler, maxUpload, a.Logger)
		r.Mount("/mapping", mappingHandler.Routes())

		analysisHandler := handlers.NewAnalysisHandler(a.AnalysisService, query, a.ErrorHandler, maxUpload, a.Logger)
		r.Post("/analyze", analysisHandler.Analyze)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start binds the listen address and serves in the background
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Server.Addr, err)
	}
	serveErr := make(chan error, 1)
	a.mu.Lock()
	a.listener = ln
	a.serveErr = serveErr
	a.mu.Unlock()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			serveErr <- err
		}
		close(serveErr)
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", ln.Addr().String()),
		slog.Bool("rate_limit", a.Config.Security.RateLimit.Enabled),
		slog.Bool("metrics", a.OTelProviders.PrometheusHTTP != nil))
	return nil
}

// Addr returns the bound address once Start has succeeded
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete",
		slog.Int("confirmed_mappings", a.MappingStore.Len()))
	return errors.Join(errs...)
}

// Run runs the application until ctx ends or SIGINT/SIGTERM arrives
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	errCh := a.serveErr
	a.mu.Unlock()

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("received shutdown signal")
	case serveErr = <-errCh:
	}

	// the signal context is done; shut down on a fresh one
	return errors.Join(serveErr, a.Stop(context.Background()))
}
