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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"routecleaner/internal/config"
	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/infrastructure"
	customMiddleware "routecleaner/internal/middleware"
	"routecleaner/internal/services"
	handlers "routecleaner/internal/transport/http"
	"routecleaner/pkg/contracts"
)

const defaultShutdownTimeout = 15 * time.Second

// Application holds every component of the HTTP server
type Application struct {
	Config          *config.Config
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.PipelineMetrics
	ErrorHandler    *apperrors.ErrorHandler
	CleaningService *services.CleaningService
	HealthService   *services.HealthService
	Router          chi.Router
	Server          *http.Server

	startTime time.Time
}

// NewApplication validates cfg and wires telemetry, services, routes and
// the server. A nil cfg means config.Default().
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		startTime: time.Now(),
	}

	if err := a.initializeTelemetry(); err != nil {
		return nil, err
	}
	if err := a.initializeServices(); err != nil {
		return nil, err
	}
	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) initializeTelemetry() error {
	providers, err := infrastructure.InitializeOTel(a.Config.Telemetry, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.OTelProviders = providers

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.Metrics = metrics

	if err := infrastructure.RegisterSystemMetrics(providers.Meter, a.startTime); err != nil {
		a.Logger.Warn("System metrics unavailable", slog.String("error", err.Error()))
	}
	return nil
}

func (a *Application) initializeServices() error {
	a.ErrorHandler = apperrors.NewErrorHandler(a.Logger, a.Config.Server.IncludeStack)

	cleaning, err := services.NewCleaningService(a.Config,
		services.WithLogger(a.Logger),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMetrics(a.Metrics))
	if err != nil {
		return fmt.Errorf("failed to create cleaning service: %w", err)
	}
	a.CleaningService = cleaning
	a.HealthService = services.NewHealthService(a.Config, a.Logger)
	return nil
}

// setupRouter mounts the API behind the middleware chain
// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(nil, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// Scraped often, so kept out of the request log
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		health := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", health.Routes())
		r.Get("/version", health.Version)

		r.Route("/v1", func(r chi.Router) {
			clean := handlers.NewCleanHandler(a.CleaningService, a.ErrorHandler,
				a.Config.Server.MaxUploadBytes, a.Logger)

			r.Group(func(r chi.Router) {
				if limit := a.Config.Server.RateLimit; limit.Enabled {
					r.Use(customMiddleware.NewRateLimiter(limit.RPS, limit.Burst,
						a.Logger, a.ErrorHandler).Handler)
				}
				r.Mount("/clean", clean.Routes())
			})
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run listens on the configured port and serves until ctx is done or the
// process receives SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(gctx, "Server error", slog.String("error", err.Error()))
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// The parent context is already done; shutdown gets a fresh one
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("uptime", time.Since(a.startTime)))
	return nil
}
