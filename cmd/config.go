package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/archlens/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the global configuration",
	}
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	keys := config.Keys()
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one configuration value",
		Long: `Set one value in the global config file, leaving the rest of the file as is.

Keys:
  ` + strings.Join(keys, "\n  "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := config.ParseValue(args[0], args[1])
			if err != nil {
				return err
			}
			if err := config.SetConfigField(args[0], value); err != nil {
				return fmt.Errorf("saving %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], config.GlobalConfigPath())
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the global config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.GlobalConfigPath())
		},
	}
}
