// Package main runs an HTTP server whose views answer with response
// envelopes. It exists to exercise the envelope, classifier and dispatcher
// packages end to end.
package main

import (
	"context"
	"fmt"
	"log"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// run loads configuration, sets up logging, wires the application and
// serves until the process is signalled.
func run(ctx context.Context) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	l, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	logAppConfig(l, cfg)

	app, err := newApplication(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
