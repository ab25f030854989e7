package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"whodash/internal/config"
	"whodash/internal/dataset"
	"whodash/internal/infrastructure"
	customMiddleware "whodash/internal/middleware"
	"whodash/internal/services"
	handlers "whodash/internal/transport/http"
)

// Application is the dependency container for the dashboard service.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Cache         *dataset.Cache
	ReportService *services.ReportService
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("service", infrastructure.ServiceName),
		slog.String("version", infrastructure.ServiceVersion))

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.EnableTracing = cfg.Telemetry.EnableTracing
	otelCfg.EnableMetrics = cfg.Telemetry.EnableMetrics
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	var metrics *infrastructure.DashboardMetrics
	cache := dataset.NewCache(dataset.NewLoader(logger), logger)
	if providers.Meter != nil {
		metrics, err = infrastructure.NewDashboardMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		if err := infrastructure.RegisterCacheStats(providers.Meter, metrics, cache.Stats); err != nil {
			return nil, fmt.Errorf("failed to register cache metrics: %w", err)
		}
	}

	reportService := services.NewReportService(cfg, cache, logger, metrics)

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		Cache:         cache,
		ReportService: reportService,
		OTelProviders: providers,
		Metrics:       metrics,
	}
	a.setupRouter()
	a.setupServer()

	return a, nil
}

// setupRouter builds the middleware chain and routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(middleware.Compress(5))

	if a.Metrics != nil {
		r.Use(customMiddleware.HTTPMetrics(a.Metrics))
	}

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	reportHandler := handlers.NewReportHandler(a.ReportService, a.Logger)
	r.Mount("/api", reportHandler.Routes())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"status":  "healthy",
			"version": infrastructure.ServiceVersion,
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupServer configures the HTTP server.
func (a *Application) setupServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the server and blocks until shutdown.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown stops the server and flushes telemetry.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	a.Logger.Info("shutdown complete")
	return nil
}
