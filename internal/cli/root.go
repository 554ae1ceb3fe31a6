// Package cli implements the filling-line command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigDir string
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "filling-line",
		Short: "Beverage filling machine simulator",
		Long: `Simulates a beverage filling machine and exposes its state as a typed
tag address space with callable methods over HTTP and websockets.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigDir, "config", "c", "configs", "directory containing config.yml")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTagsCommand())
	cmd.AddCommand(NewMethodsCommand())

	return cmd
}
