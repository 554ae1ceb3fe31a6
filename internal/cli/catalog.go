package cli

import (
	"filling_line/internal/tags"

	"github.com/spf13/cobra"
)

// NewTagsCommand prints the tag table, one "name<TAB>kind" line per tag.
func NewTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags of the address space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tags.WriteTable(cmd.OutOrStdout())
		},
	}
}

// NewMethodsCommand prints the signature of every callable method.
func NewMethodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the callable machine methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tags.WriteMethods(cmd.OutOrStdout())
		},
	}
}
