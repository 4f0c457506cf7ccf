package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/archlens/internal/analyze"
	"github.com/guilhermegouw/archlens/internal/config"
)

const pingTimeout = 5 * time.Second

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the resolved configuration and backend reachability",
		Long: `Display the archlens status including:
  - Configuration files in effect
  - Analysis service URL and whether it answers
  - Viewer settings`,
		RunE: runStatus,
	}
	cmd.Flags().String("backend", "", "Analysis service URL (overrides config)")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}

	client := analyze.NewClient(cfg.Backend.URL)
	ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
	defer cancel()
	printStatus(cmd.OutOrStdout(), cfg, timeout, client.Ping(ctx))
	return nil
}

func printStatus(w io.Writer, cfg *config.Config, timeout time.Duration, pingErr error) {
	fmt.Fprintln(w, "archlens Status")
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintln(w)

	if cwd, err := os.Getwd(); err == nil {
		fmt.Fprintf(w, "Working Directory: %s\n", cwd)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Backend:")
	fmt.Fprintf(w, "  URL: %s\n", cfg.Backend.URL)
	fmt.Fprintf(w, "  Timeout: %s\n", formatTimeout(timeout))
	if pingErr != nil {
		fmt.Fprintf(w, "  Reachable: no (%v)\n", pingErr)
	} else {
		fmt.Fprintln(w, "  Reachable: yes")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Viewer:")
	if cfg.ViewerEnabled() {
		fmt.Fprintf(w, "  Enabled: yes (%s)\n", cfg.Viewer.Addr)
	} else {
		fmt.Fprintln(w, "  Enabled: no (diagrams shown in the terminal)")
	}
	if cfg.Viewer.OpenCommand != "" {
		fmt.Fprintf(w, "  Open command: %s\n", cfg.Viewer.OpenCommand)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config Files:")
	sources := cfg.Sources()
	if len(sources) == 0 {
		fmt.Fprintf(w, "  none (defaults; global file is %s)\n", config.GlobalConfigPath())
	}
	for _, s := range sources {
		fmt.Fprintf(w, "  %s\n", s)
	}
	fmt.Fprintf(w, "Data Directory: %s\n", cfg.DataDir())
}

func formatTimeout(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return d.String()
}
