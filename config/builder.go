package config

import (
	"log/slog"
	"strconv"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/command"
)

// TableOptions converts parsed configuration into [sidebar.Option] values.
func TableOptions(cfg *Config, logger *slog.Logger) []sidebar.Option {
	opts := []sidebar.Option{
		sidebar.WithObjectiveName(cfg.Objective),
	}
	if logger != nil {
		opts = append(opts, sidebar.WithLogger(logger))
	}
	return opts
}

// AdapterOptions converts parsed configuration into [command.Option] values.
func AdapterOptions(cfg *Config, logger *slog.Logger) []command.Option {
	opts := []command.Option{
		command.WithIntegerMode(command.IntegerMode(cfg.IntegerMode)),
		command.WithColorMarker(cfg.Marker()),
	}
	if logger != nil {
		opts = append(opts, command.WithLogger(logger))
	}
	return opts
}

// SeedCommands returns the commands that put the configured title and items
// on the sidebar, in order. Running them through the command adapter applies
// the same color substitution and validation as user input.
func SeedCommands(cfg *Config) [][]string {
	var cmds [][]string
	if cfg.Title != "" {
		cmds = append(cmds, []string{"title", cfg.Title})
	}
	for _, it := range cfg.Items {
		cmds = append(cmds, []string{"set", it.Name, strconv.FormatInt(int64(it.Score), 10)})
	}
	return cmds
}
