package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mclocale/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, disk space, tools, and catalog endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if !offline {
				results = append(results, preflight.RunNetwork(cmd.Context(), cfg)...)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				switch {
				case !r.Passed && r.Optional:
					status = "skipped"
				case !r.Passed:
					status = "FAILED"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			fmt.Fprintln(out, renderTable([]column{col("Check"), col("Status"), wideCol("Detail", 72)}, rows, ""))
			return preflight.Err(results)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the network checks")
	return cmd
}
