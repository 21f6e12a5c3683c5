package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	glob "github.com/Sriram-PR/go-glob"
)

// NewEscapeCommand creates the escape subcommand, which prints each
// argument as a pattern matching only that literal path.
func NewEscapeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "escape PATH...",
		Short: "Escape literal paths for use as patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), glob.EscapePath(p)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewDynamicCommand creates the dynamic subcommand, which reports for each
// argument whether it contains wildcard syntax.
func NewDynamicCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dynamic PATTERN...",
		Short: "Report whether patterns contain wildcards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", p, glob.IsDynamicPattern(p)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
