// Package config provides YAML configuration parsing for the sidebar binary.
//
// The configuration seeds the sidebar at startup and tunes the command
// adapter. Example configuration:
//
//	title: "&6Stats"
//	objective: simplesidebar
//	port: 8080
//	integer_mode: lenient
//	color_marker: "&"
//	shutdown_timeout: 10s
//
//	items:
//	  - name: Alice
//	    score: 5
//	  - name: ${SECOND_PLAYER:-Bob}
//	    score: 2
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/command"
)

const (
	defaultPort            = 8080
	defaultShutdownTimeout = 10 * time.Second
	maxObjectiveLength     = 16

	// maxSeedScore keeps seeded scores within what the command adapter parses.
	maxSeedScore = 999_999_999
)

// Config is the root configuration structure for the sidebar binary.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the initial sidebar title. Color codes are allowed and count
	// as one character each after substitution. At most 32 characters.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Title string `yaml:"title"`

	// Objective is the identifier the sidebar objective is registered under.
	// Defaults to "simplesidebar".
	Objective string `yaml:"objective"`

	// Port is the HTTP port of the panel server. Defaults to 8080.
	Port int `yaml:"port"`

	// IntegerMode is "lenient" (malformed numbers become 0) or "strict"
	// (malformed numbers are rejected). Defaults to "lenient".
	IntegerMode string `yaml:"integer_mode"`

	// ColorMarker is the single character that introduces a color code.
	// Defaults to "&".
	ColorMarker string `yaml:"color_marker"`

	// ShutdownTimeout bounds how long the server waits for a clean shutdown.
	// Defaults to 10s.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// Items are the rows placed on the sidebar at startup, in order.
	Items []ItemConfig `yaml:"items"`
}

// ItemConfig is a single seeded sidebar row.
type ItemConfig struct {
	// Name is the row label. At most 16 characters after color substitution.
	// Supports environment variable substitution.
	Name string `yaml:"name"`

	// Score is the initial score.
	Score int32 `yaml:"score"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the title and item names are expanded.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Objective == "" {
		c.Objective = sidebar.DefaultObjectiveName
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.IntegerMode == "" {
		c.IntegerMode = string(command.IntegerLenient)
	}
	if c.ColorMarker == "" {
		c.ColorMarker = string(command.DefaultColorMarker)
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = Duration(defaultShutdownTimeout)
	}
}

// Marker returns the color marker as a rune. Only meaningful on a validated
// config.
func (c *Config) Marker() rune {
	r, _ := utf8.DecodeRuneInString(c.ColorMarker)
	return r
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if n := utf8.RuneCountInString(c.Objective); n > maxObjectiveLength {
		return fmt.Errorf("objective must be at most %d characters, got %d", maxObjectiveLength, n)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	switch command.IntegerMode(c.IntegerMode) {
	case command.IntegerLenient, command.IntegerStrict:
	default:
		return fmt.Errorf("integer_mode must be %q or %q, got %q",
			command.IntegerLenient, command.IntegerStrict, c.IntegerMode)
	}

	if utf8.RuneCountInString(c.ColorMarker) != 1 || c.ColorMarker == " " {
		return fmt.Errorf("color_marker must be a single non-space character, got %q", c.ColorMarker)
	}

	if c.ShutdownTimeout.Duration() < 0 {
		return fmt.Errorf("shutdown_timeout cannot be negative, got %s", c.ShutdownTimeout.Duration())
	}

	marker := c.Marker()

	title, err := expandEnvVars(c.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	c.Title = title
	if !sidebar.ValidTitle(command.SubstituteColorCodes(c.Title, marker, command.DefaultStyleEscape)) {
		return fmt.Errorf("title must be at most %d characters after color substitution, got %q",
			sidebar.MaxTitleLength, c.Title)
	}

	seen := make(map[string]struct{}, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]

		name, err := expandEnvVars(it.Name)
		if err != nil {
			return fmt.Errorf("items[%d]: name: %w", i, err)
		}
		it.Name = name

		if it.Name == "" {
			return fmt.Errorf("items[%d]: name is required", i)
		}
		substituted := command.SubstituteColorCodes(it.Name, marker, command.DefaultStyleEscape)
		if !sidebar.ValidName(substituted) {
			return fmt.Errorf("items[%d] (%s): name must be at most %d characters after color substitution",
				i, it.Name, sidebar.MaxNameLength)
		}
		if _, dup := seen[substituted]; dup {
			return fmt.Errorf("items[%d] (%s): duplicate item name", i, it.Name)
		}
		seen[substituted] = struct{}{}

		if it.Score > maxSeedScore || it.Score < -maxSeedScore {
			return fmt.Errorf("items[%d] (%s): score must be between %d and %d, got %d",
				i, it.Name, -maxSeedScore, maxSeedScore, it.Score)
		}
	}

	return nil
}
