package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			if store == nil {
				return errLedgerDisabled
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if runID == "" {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				tbl := newLabelTable(textCol("Run"), textCol("Command"), textCol("Status"),
					textCol("Started"), numCol("Songs"), numCol("Segments"))
				for _, r := range runs {
					tbl.add(r.ID, r.Command, string(r.Status), timeCell(r.StartedAt),
						countCell(r.Songs), countCell(r.Segments))
				}
				fmt.Fprintln(out, tbl)
				return nil
			}

			summary, err := store.Summarize(cmd.Context(), runID)
			if err != nil {
				return err
			}
			r := summary.Run
			fmt.Fprintf(out, "Run %s (%s): %s\n", r.ID, r.Command, r.Status)
			fmt.Fprintf(out, "Out dir: %s\n", r.OutDir)
			fmt.Fprintf(out, "Started: %s  Finished: %s\n", timeCell(r.StartedAt), timeCell(r.FinishedAt))
			fmt.Fprintf(out, "Songs: %d  Segments: %d\n", r.Songs, summary.SegmentCount)
			if r.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", r.Error)
			}

			if len(summary.FindingsByCheck) > 0 {
				checks := make([]string, 0, len(summary.FindingsByCheck))
				for check := range summary.FindingsByCheck {
					checks = append(checks, check)
				}
				sort.Strings(checks)
				tbl := newLabelTable(textCol("Check"), numCol("Findings"))
				for _, check := range checks {
					tbl.add(check, countCell(summary.FindingsByCheck[check]))
				}
				fmt.Fprintln(out, tbl)
			}
			if len(summary.Failures) > 0 {
				tbl := newLabelTable(textCol("Song"), textCol("Stage"), textCol("Error"))
				for _, f := range summary.Failures {
					tbl.add(f.Song, f.Stage, f.Message)
				}
				fmt.Fprintln(out, tbl)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Show details for one run id")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list")
	return cmd
}
