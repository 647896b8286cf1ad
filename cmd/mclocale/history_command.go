package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mclocale/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var edition string
	var failedOnly bool
	var limit int
	var pruneDays int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if pruneDays > 0 {
				removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -pruneDays))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d run(s) older than %d day(s)\n", removed, pruneDays)
			}

			filter := history.Filter{Edition: strings.ToLower(strings.TrimSpace(edition)), Limit: limit}
			if failedOnly {
				filter.Status = history.StatusFailed
			}
			runs, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := ""
				if run.Status == history.StatusFailed {
					detail = run.ErrorClass
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Edition,
					displayVersion(run.Version),
					string(run.Status),
					yesNo(run.Changed),
					humanize.Comma(int64(run.Files)),
					fmt.Sprintf("%d", run.Attempts),
					run.Duration().Round(time.Second).String(),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					numCol("ID"), col("Started"), col("Edition"), col("Version"), col("Status"),
					col("Changed"), numCol("Files"), numCol("Attempts"), numCol("Took"), wideCol("Error", 40),
				},
				rows,
				"No runs recorded",
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&edition, "edition", "", "Only show runs of this edition")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed runs")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete runs older than this many days before listing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func displayVersion(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
