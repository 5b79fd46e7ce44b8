package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/ui"
	"github.com/satishbabariya/mika-go/support"
)

func newRuntimeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Manage the Mika runtime support library",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install [directory]",
		Short: "Install mika_std.h and mika_std.c",
		Long: `Install the runtime header and library source.

Translated programs include mika_std.h by absolute path, so the header must
live in runtime.dir (default /usr/local/include/mika). When mika_std.c is
installed next to it, builds compile it instead of the embedded fallback.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Runtime.Dir
			if len(args) > 0 {
				dir = args[0]
			}

			written, err := support.Install(a.fs, dir)
			if err != nil {
				return fmt.Errorf("failed to install runtime: %w", err)
			}
			ui.PrintSuccess("Installed Mika runtime into %s", dir)
			ui.PrintList(written)
			if dir != a.cfg.Runtime.Dir {
				ui.PrintInfo("Set runtime.dir: %s in .mika.yaml to build against it", dir)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "header",
		Short: "Print the runtime header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(support.Header())
			return err
		},
	})

	return cmd
}
