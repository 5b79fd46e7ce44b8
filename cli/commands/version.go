package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/version"
)

func newVersionCommand(tool string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get(tool)
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.FullString())
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print a single line")
	return cmd
}
