// Package cmd provides the CLI commands for archlens.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/guilhermegouw/archlens/internal/config"
	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/tui"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archlens",
		Short: "Explore a repository's architecture from the terminal",
		Long: `archlens asks an analysis service for the architecture diagram of a
GitHub repository and lets you explore it:

  - Paste a repository link to get the overview diagram
  - Ask follow-up questions about the architecture
  - Drill into modules from the local viewer or with /drill <module>`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().Bool("debug", false, "Enable debug logging to the data directory")
	cmd.Flags().String("backend", "", "Analysis service URL (overrides config)")
	cmd.Flags().Bool("no-viewer", false, "Show diagrams in the terminal instead of a browser viewer")

	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Enable debug logging if requested.
	debugMode, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("getting debug flag: %w", err)
	}
	if debugMode || cfg.Debug() {
		logPath := cfg.DebugLogPath()
		if debugErr := debug.Enable(logPath); debugErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to enable debug logging: %v\n", debugErr)
		} else {
			defer debug.Disable()
			fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
		}
	}

	if created, ensureErr := config.EnsureGlobalConfig(); ensureErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to write default config: %v\n", ensureErr)
	} else if created {
		debug.Event("cmd", "FirstRun", config.GlobalConfigPath())
	}

	noViewer, err := cmd.Flags().GetBool("no-viewer")
	if err != nil {
		return fmt.Errorf("getting no-viewer flag: %w", err)
	}

	a, err := newApp(cfg, cfg.ViewerEnabled() && !noViewer)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if a.surface != nil {
		g.Go(func() error {
			return a.surface.Run(gctx)
		})
	}
	g.Go(func() error {
		// Leaving the TUI stops the viewer.
		defer cancel()
		return tui.Run(gctx, a.tuiOptions())
	})
	return g.Wait()
}

// loadConfig loads configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		cfg.Backend.URL = f.Value.String()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
