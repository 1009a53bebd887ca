package command

import (
	"errors"
	"fmt"
	"log/slog"
)

// adapterConfig holds mutable state during Adapter construction.
type adapterConfig struct {
	mode   IntegerMode
	marker rune
	escape rune
	logger *slog.Logger
}

// Option configures an [Adapter] during construction.
type Option func(*adapterConfig) error

// WithIntegerMode selects how malformed integers are handled. Defaults to
// [IntegerLenient].
func WithIntegerMode(mode IntegerMode) Option {
	return func(cfg *adapterConfig) error {
		switch mode {
		case IntegerLenient, IntegerStrict:
			cfg.mode = mode
			return nil
		default:
			return fmt.Errorf("unknown integer mode %q (expected %q or %q)", mode, IntegerLenient, IntegerStrict)
		}
	}
}

// WithColorMarker sets the character that introduces a color code in user
// input. Defaults to '&'.
func WithColorMarker(marker rune) Option {
	return func(cfg *adapterConfig) error {
		if !validMarker(marker) {
			return fmt.Errorf("invalid color marker %q", marker)
		}
		cfg.marker = marker
		return nil
	}
}

// WithStyleEscape sets the host's formatting escape character. Defaults to '§'.
func WithStyleEscape(escape rune) Option {
	return func(cfg *adapterConfig) error {
		if !validMarker(escape) {
			return fmt.Errorf("invalid style escape %q", escape)
		}
		cfg.escape = escape
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default] is used.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *adapterConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
