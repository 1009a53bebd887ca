package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/sidebar/config"
	"github.com/jpalmerr/sidebar/internal/host"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// serveCmd starts the sidebar panel server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sidebar panel",
	Long: `Serve the sidebar panel over HTTP.

The server will:
  - Load configuration from the specified YAML file
  - Seed the configured title and items
  - Serve the panel UI and command API on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM, then removes
the sidebar.

Example:
  sidebar serve -c sidebar.yaml
  sidebar serve --config /etc/sidebar/sidebar.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"objective", cfg.Objective,
		"items", len(cfg.Items),
		"integer_mode", cfg.IntegerMode,
	)
	logger.Info("starting server", "port", cfg.Port)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- host.Run(ctx, cfg, logger)
	}()

	shutdownTimeout := cfg.ShutdownTimeout.Duration()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
