package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mclocale/internal/bedrock"
	"mclocale/internal/java"
	"mclocale/internal/workflow"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var limit int

	cmd := &cobra.Command{
		Use:       "backfill <bedrock|java>",
		Short:     "Process every eligible version, oldest first",
		Long:      "Run the pipeline for each version of an edition in release order. Versions the run\nhistory already records as successful are skipped unless --force is set.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{bedrock.Name, java.Name},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var (
				ed       workflow.Edition
				versions []string
				doc      []byte
				after    func(context.Context, workflow.Result) error
			)
			switch strings.ToLower(args[0]) {
			case bedrock.Name:
				edition := s.bedrockEdition()
				raw, c, err := edition.FetchCatalog(cmd.Context())
				if err != nil {
					return err
				}
				ed, doc, versions = edition, raw, edition.BackfillVersions(c)
				after = func(ctx context.Context, _ workflow.Result) error {
					_, err := s.merge(ctx)
					return err
				}
			case java.Name:
				edition := s.javaEdition()
				raw, m, err := edition.FetchManifest(cmd.Context())
				if err != nil {
					return err
				}
				ed, doc, versions = edition, raw, edition.BackfillVersions(m)
			default:
				return fmt.Errorf("unknown edition %q (want bedrock or java)", args[0])
			}
			if limit > 0 && len(versions) > limit {
				versions = versions[:limit]
			}

			opts := workflow.BackfillOptions{Force: force, Catalog: doc, AfterChange: after}
			if s.history != nil {
				opts.Done = s.history
			}
			report, runErr := s.runner.Backfill(cmd.Context(), ed, versions, opts)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s backfill: %d processed, %d changed, %d skipped, %d failed\n",
				ed.Name(), report.Processed, report.Changed, report.Skipped, len(report.Failed))
			if len(report.Failed) > 0 {
				fmt.Fprintf(out, "Failed versions: %s\n", strings.Join(report.Failed, ", "))
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Reprocess versions already recorded as successful")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most this many versions (0 for all)")
	return cmd
}
