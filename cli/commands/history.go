package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/mika-go/cli/internal/ui"
	"github.com/satishbabariya/mika-go/history"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded builds",
		Long: `List the builds recorded in the history database.

Recording is off by default; enable it with history.enabled: true in
.mika.yaml or MIKA_HISTORY_ENABLED=true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(cmd.Context(), a.cfg.History.Driver, a.cfg.History.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			if clearAll {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				ui.PrintSuccess("Removed %d build(s) from history", n)
				return nil
			}

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				ui.PrintInfo("No builds recorded")
				if !a.cfg.History.Enabled {
					ui.PrintDetail("history.enabled is false")
				}
				return nil
			}
			return ui.PrintTable(historyHeaders, historyRows(records))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most `n` builds (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded builds")
	return cmd
}

var historyHeaders = []string{"ID", "Started", "Input", "Output", "State", "Duration", "Size"}

func historyRows(records []history.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		state := r.State
		if !r.Success {
			state += " ✗"
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(time.DateTime),
			r.Input,
			r.Output,
			state,
			r.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%d B", r.Size),
		})
	}
	return rows
}
