// Package main is the entry point for the sidebar CLI.
//
// The sidebar library is meant to be embedded in a game host. This CLI bundles
// an in-memory host so the sidebar can be driven and watched on its own.
//
// Usage:
//
//	sidebar serve -c config.yaml      # Serve the sidebar panel over HTTP
//	sidebar console [-c config.yaml]  # Drive the sidebar from stdin
//	sidebar validate -c config.yaml   # Validate configuration
//	sidebar version                   # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "sidebar",
	Short: "A scoreboard sidebar with a tiny command language",
	Long: `sidebar manages a titled scoreboard sidebar of named rows.

Rows are changed with short commands (title, set, add, remove, removeall,
clear, list). The bundled host renders the sidebar in a web panel that
updates live over Server-Sent Events.

Quick start:
  1. Create a config file (sidebar.yaml)
  2. Run: sidebar serve -c sidebar.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  title: "&6Stats"
  port: 8080
  items:
    - name: Alice
      score: 5`,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this sidebar binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sidebar %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
