package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/command"
	"github.com/jpalmerr/sidebar/config"
	"github.com/jpalmerr/sidebar/dashboard"
	"github.com/jpalmerr/sidebar/internal/server"
	"github.com/jpalmerr/sidebar/internal/surface"
)

// Seed puts the configured title and items on the sidebar by running them
// through d as ordinary commands.
//
// A seed command the adapter rejects is logged and skipped; only a
// dispatcher error stops seeding.
func Seed(ctx context.Context, d *Dispatcher, cfg *config.Config, logger *slog.Logger) error {
	for _, args := range config.SeedCommands(cfg) {
		res, err := d.Execute(ctx, args)
		if err != nil {
			return fmt.Errorf("seed %q: %w", args, err)
		}
		if !res.OK {
			logger.Warn("seed command rejected", "args", args, "message", res.Message)
		}
	}
	return nil
}

// Stack is a fully wired sidebar: scoreboard, table, adapter and dispatcher.
type Stack struct {
	Surface    *surface.Memory
	Table      *sidebar.Table
	Adapter    *command.Adapter
	Dispatcher *Dispatcher
}

// NewStack wires a sidebar from cfg. The scoreboard starts not ready and
// the dispatcher is not started.
func NewStack(cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	surf := surface.NewMemory()

	table, err := sidebar.New(surf, config.TableOptions(cfg, logger)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sidebar: %w", err)
	}

	adapter, err := command.New(table, config.AdapterOptions(cfg, logger)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create command adapter: %w", err)
	}

	return &Stack{
		Surface:    surf,
		Table:      table,
		Adapter:    adapter,
		Dispatcher: NewDispatcher(adapter, table, logger),
	}, nil
}

// Run serves the sidebar panel until ctx is cancelled.
//
// The scoreboard is marked ready only after the panel server is listening,
// so the sidebar initializes lazily on the first seeded or received command.
// On return the sidebar has been torn down.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := NewStack(cfg, logger)
	if err != nil {
		return err
	}

	st.Dispatcher.Start(ctx)
	defer st.Dispatcher.Stop()

	srvCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := server.NewServer(st.Surface, st.Dispatcher, cfg.Port, dashboard.Assets, "", logger)
	srv.SetShutdownTimeout(cfg.ShutdownTimeout.Duration())
	if err := srv.Start(srvCtx); err != nil {
		return fmt.Errorf("failed to start panel server: %w", err)
	}

	st.Surface.SetReady(true)

	if err := Seed(ctx, st.Dispatcher, cfg, logger); err != nil {
		// a cancelled context during seeding is a normal shutdown
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	logger.Info("sidebar ready", "objective", cfg.Objective, "items", len(cfg.Items))

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
