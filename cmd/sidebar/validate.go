package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/sidebar/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a sidebar configuration file without starting anything.

This command parses the YAML, expands environment variables, and checks
every field, including title and item name lengths after color codes are
substituted. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  sidebar validate -c sidebar.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = "(none)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Objective:     %s\n", cfg.Objective)
	fmt.Fprintf(out, "  Title:         %s\n", title)
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Integer mode:  %s\n", cfg.IntegerMode)
	fmt.Fprintf(out, "  Items:         %d\n", len(cfg.Items))

	return nil
}
