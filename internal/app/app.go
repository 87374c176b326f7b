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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"sustainers/internal/config"
	"sustainers/internal/dataprocessing"
	apierrors "sustainers/internal/errors"
	"sustainers/internal/exporter"
	"sustainers/internal/infrastructure"
	customMiddleware "sustainers/internal/middleware"
	"sustainers/internal/services"
	handlers "sustainers/internal/transport/http"
	"sustainers/pkg/contracts"
)

// minSweepInterval bounds how often the download janitor runs
const minSweepInterval = time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics

	stopOnce sync.Once
	stopErr  error
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Donor     *services.DonorService
	Downloads *services.ResultCache
	Health    *services.HealthService
}

// NewApplication initializes the global logger from cfg and builds the
// application
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New wires services, router and server around an existing logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.Metrics = metrics

	writer := exporter.NewCSVWriter(a.Paths, a.Config.Export.BOM, a.Logger)
	loadOpts := dataprocessing.LoadOptions{
		Encoding: a.Config.Import.Encoding,
		Sheet:    a.Config.Import.Sheet,
	}
	donor := services.NewDonorService(writer, loadOpts, a.Logger,
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMetrics(metrics))

	downloads := services.NewResultCache(a.Config.Downloads.TTL, a.Config.Downloads.MaxEntries)

	a.Services = &ServiceContainer{
		Donor:     donor,
		Downloads: downloads,
		Health:    services.NewHealthService(a.Paths, downloads, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID, RealIP, OTel, Logger, Recovery, SecurityHeaders, CORS, Timeout.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

	validator := customMiddleware.NewValidator(a.Logger)
	upload := a.uploadMiddleware(errorHandler)

	form := handlers.NewFormHandler(a.Services.Donor, a.Services.Downloads, validator, errorHandler, a.Metrics, a.Logger)
	donorAPI := handlers.NewAPIHandler(a.Services.Donor, a.Services.Downloads, validator, errorHandler, a.Metrics, a.Logger)
	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Get("/", form.Index)
	r.With(upload...).Post("/process", form.Process)
	r.Get(handlers.DownloadPath+"{id}", form.Download)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", health.HealthCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)
		r.Get("/months", donorAPI.Months)

		r.With(customMiddleware.ContentTypeValidator(errorHandler, "multipart/form-data")).
			With(upload...).
			Post("/process", donorAPI.Process)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// uploadMiddleware rate limits uploads and caps their body size
func (a *Application) uploadMiddleware(errorHandler *apierrors.ErrorHandler) []func(http.Handler) http.Handler {
	var mw []func(http.Handler) http.Handler
	if rl := a.Config.Security.RateLimit; rl.Enabled {
		mw = append(mw, customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, errorHandler).Handler)
	}
	return append(mw, customMiddleware.MaxBodySize(a.Config.Import.MaxUploadBytes))
}

// getCORSConfig builds the CORS policy from the security section
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			customMiddleware.RequestIDHeader,
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Serve runs the HTTP server on ln and the download janitor until ctx is
// done or either fails, then shuts everything down
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", "http://"+ln.Addr().String()),
		slog.String("output_dir", a.Paths.OutputDir))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.Services.Downloads.Run(gctx, sweepInterval(a.Config.Downloads.TTL))
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application. Later calls return the first result.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.Logger.InfoContext(ctx, "Shutting down application")

		shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			a.stopErr = fmt.Errorf("server shutdown error: %w", err)
		}

		if a.OTelProviders != nil {
			if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
				a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			}
		}

		a.Logger.InfoContext(ctx, "Application shutdown complete")
	})
	return a.stopErr
}

// Run listens on the configured address and serves until interrupted
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

func sweepInterval(ttl time.Duration) time.Duration {
	if interval := ttl / 2; interval > minSweepInterval {
		return interval
	}
	return minSweepInterval
}
