package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/envelope/internal/api"
	apiMiddleware "github.com/phrazzld/envelope/internal/api/middleware"
	"github.com/phrazzld/envelope/internal/config"
	"github.com/phrazzld/envelope/internal/hooks"
	"github.com/phrazzld/envelope/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds all the shared application dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger

	// metricsRegistry backs the /metrics endpoint.
	metricsRegistry *prometheus.Registry
	dispatcher      *api.Dispatcher

	// auth is nil when no JWT secret is configured; protected routes are
	// then not mounted.
	auth *apiMiddleware.JWTAuthenticator

	items *itemStore
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		items:  newItemStore(),
	}

	registry := hooks.NewRegistry()
	if err := hooks.RegisterBuiltins(registry); err != nil {
		return nil, fmt.Errorf("failed to register builtin hooks: %w", err)
	}
	resolved, err := registry.Resolve(cfg.Response.Monitor, cfg.Response.PasteToRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hooks: %w", err)
	}
	logger.Info("Hooks resolved",
		"monitor", len(resolved.Monitor),
		"pre_request", len(resolved.PreRequest))

	app.metricsRegistry = prometheus.NewRegistry()
	app.metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusRecorder(app.metricsRegistry)

	app.dispatcher = api.NewDispatcher(cfg.Response, resolved, recorder, logger,
		api.WithMediaURL(cfg.Server.MediaURL))

	if cfg.Auth.JWTSecret != "" {
		app.auth, err = apiMiddleware.NewJWTAuthenticator(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT authenticator: %w", err)
		}
		logger.Info("JWT authentication initialized", "realm", cfg.Auth.Realm)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server and blocks until it stops.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
