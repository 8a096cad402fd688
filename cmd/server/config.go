package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/envelope/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logAppConfig logs the non-secret parts of cfg.
func logAppConfig(l *slog.Logger, cfg *config.Config) {
	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	l.Debug("Response configuration",
		"debug", cfg.Response.Debug,
		"development_state", cfg.Response.DevelopmentState,
		"exception_handling", cfg.Response.ExceptionHandling,
		"monitor_hooks", len(cfg.Response.Monitor),
		"pre_request_hooks", len(cfg.Response.PasteToRequest))
	if cfg.Auth.JWTSecret != "" {
		l.Debug("Auth configuration", "jwt_secret_present", true, "realm", cfg.Auth.Realm)
	}
}
