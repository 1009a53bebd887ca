package sidebar

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// maxObjectiveNameLength is the longest objective identifier hosts accept.
const maxObjectiveNameLength = 16

// tableConfig holds mutable state during Table construction.
type tableConfig struct {
	objectiveID string
	criteria    string
	logger      *slog.Logger
}

// Option is a function that configures a [Table] during construction.
//
// Option implements the functional options pattern. Options return an error
// if validation fails, which [New] passes back to the caller.
//
// Built-in options: [WithObjectiveName], [WithCriteria], [WithLogger].
type Option func(*tableConfig) error

// WithObjectiveName sets the identifier the sidebar objective is registered
// under. Defaults to [DefaultObjectiveName].
//
// Any objective already registered under this name is unregistered when the
// table initializes, so pick a name no other component uses.
//
// Returns an error if the name is empty or longer than 16 characters.
func WithObjectiveName(name string) Option {
	return func(cfg *tableConfig) error {
		if name == "" {
			return errors.New("objective name cannot be empty")
		}
		if n := utf8.RuneCountInString(name); n > maxObjectiveNameLength {
			return fmt.Errorf("objective name must be at most %d characters, got %d", maxObjectiveNameLength, n)
		}
		cfg.objectiveID = name
		return nil
	}
}

// WithCriteria sets the render criteria passed to the host when registering
// the objective. Defaults to "", which hosts treat as a manually updated
// objective.
func WithCriteria(criteria string) Option {
	return func(cfg *tableConfig) error {
		cfg.criteria = criteria
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the table. If not specified,
// [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *tableConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
