package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mclocale/internal/java"
	"mclocale/internal/logging"
	"mclocale/internal/state"
)

type statusRow struct {
	Edition    string `json:"edition"`
	Version    string `json:"version"`
	UpdateTime string `json:"update_time"`
	Files      int    `json:"files"`
	AssetIndex string `json:"asset_index,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted version state of each edition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := state.NewStore(afero.NewOsFs(), cfg.Paths.StateFile, logging.NewNop())
			doc, err := store.Load()
			if err != nil {
				return err
			}

			var rows []statusRow
			for _, edition := range doc.Editions() {
				entry, ok, err := doc.Entry(edition)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				row := statusRow{
					Edition:    edition,
					Version:    entry.Version,
					UpdateTime: entry.UpdateTime,
					Files:      len(entry.SHA1),
				}
				if len(entry.AssetIndex) > 0 {
					row.AssetIndex = assetIndexID(entry)
				}
				rows = append(rows, row)
			}

			if jsonOutput {
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State file: %s\n", store.Path())
			cells := make([][]string, 0, len(rows))
			for _, row := range rows {
				cells = append(cells, []string{
					row.Edition,
					row.Version,
					formatUpdated(row.UpdateTime),
					humanize.Comma(int64(row.Files)),
					row.AssetIndex,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{col("Edition"), col("Version"), col("Updated"), numCol("Files"), wideCol("Asset index", 48)},
				cells,
				"No editions recorded yet",
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func assetIndexID(entry state.Entry) string {
	var ref java.AssetIndexRef
	if err := json.Unmarshal(entry.AssetIndex, &ref); err != nil || ref.ID == "" {
		return "?"
	}
	return ref.ID
}

func formatUpdated(value string) string {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%s (%s)", ts.Local().Format("2006-01-02 15:04"), humanize.Time(ts))
}
