package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/sidebar/command"
	"github.com/jpalmerr/sidebar/config"
	"github.com/jpalmerr/sidebar/internal/host"
)

// consoleCmd drives the sidebar from standard input.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Drive the sidebar from the terminal",
	Long: `Read sidebar commands from standard input, one per line.

Each line is split with shell quoting rules, so names containing spaces can
be quoted:
  set "Two Words" 5

Type "quit" or send EOF (Ctrl+D) to stop; the sidebar is removed on exit.

Example:
  sidebar console
  sidebar console -c sidebar.yaml --verbose`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
	consoleCmd.Flags().BoolP("verbose", "v", false, "log every applied command")
}

func runConsole(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := host.NewStack(cfg, logger)
	if err != nil {
		return err
	}
	st.Surface.SetReady(true)
	st.Dispatcher.Start(ctx)
	defer st.Dispatcher.Stop()

	if err := host.Seed(ctx, st.Dispatcher, cfg, logger); err != nil {
		return err
	}

	return repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), st.Dispatcher, isTerminal(cmd.InOrStdin()))
}

// repl executes one command per input line until EOF, "quit" or ctx is done.
func repl(ctx context.Context, in io.Reader, out io.Writer, d *host.Dispatcher, prompt bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var scanErr error
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}

		var line string
		select {
		case l, ok := <-lines:
			if !ok {
				return scanErr
			}
			line = strings.TrimSpace(l)
		case <-ctx.Done():
			return nil
		}

		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		args, err := command.SplitLine(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		res, err := d.Execute(ctx, args)
		if err != nil {
			if errors.Is(err, host.ErrStopped) || ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, err)
			continue
		}

		if !res.Handled {
			for _, u := range command.Usage() {
				fmt.Fprintln(out, u)
			}
			continue
		}
		fmt.Fprintln(out, res.Message)
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
