package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mclocale/internal/merge"
	"mclocale/internal/workflow"
)

func newBedrockCommand(ctx *commandContext) *cobra.Command {
	var catalogPath string
	var mergeAfter bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "bedrock [VERSION]",
		Short: "Extract Bedrock edition language files",
		Long: "Resolve a Bedrock version (the newest when VERSION is omitted), download its package,\n" +
			"extract the language files, and update the state file when they changed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			doc, err := readCatalogFile(s.fs, catalogPath)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			req := workflow.Request{Version: firstArg(args), Catalog: doc}
			res, err := s.runner.Run(cmd.Context(), s.bedrockEdition(), req)
			if err != nil {
				return err
			}

			var summary *merge.Summary
			if mergeAfter && res.Changed {
				merged, err := s.merge(cmd.Context())
				if err != nil {
					return err
				}
				summary = &merged
			}
			if jsonOutput {
				return writeJSON(cmd, runOutput{Result: res, Merge: summary})
			}
			printResult(cmd.OutOrStdout(), res)
			if summary != nil {
				printMergeSummary(cmd.OutOrStdout(), *summary)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Read the version catalog from a local file instead of fetching it")
	cmd.Flags().BoolVar(&mergeAfter, "merge", false, "Merge the extracted packs when the run changed them")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newJavaCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "java [VERSION]",
		Short: "Extract Java edition language files",
		Long: "Resolve a Java version (the latest of java.channel when VERSION is omitted), download\n" +
			"client.jar and missing languages from the asset store, and update the state file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			doc, err := readCatalogFile(s.fs, manifestPath)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			res, err := s.runner.Run(cmd.Context(), s.javaEdition(), workflow.Request{Version: firstArg(args), Catalog: doc})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runOutput{Result: res})
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Read the version manifest from a local file instead of fetching it")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge extracted Bedrock packs into one file per locale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			summary, err := s.merge(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			printMergeSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type runOutput struct {
	Result workflow.Result `json:"result"`
	Merge  *merge.Summary  `json:"merge,omitempty"`
}

func printResult(out io.Writer, res workflow.Result) {
	verdict := "unchanged"
	if res.Changed {
		verdict = "changed"
	}
	fmt.Fprintf(out, "%s %s: %s (%s files, %s, %d attempt(s))\n",
		res.Edition, res.Version, verdict, humanize.Comma(int64(res.Files)), res.Duration.Round(time.Millisecond), res.Attempts)
}

func printMergeSummary(out io.Writer, summary merge.Summary) {
	fmt.Fprintf(out, "Merge order: %v\n", summary.Order)
	rows := make([][]string, 0, len(summary.Locales))
	for _, loc := range summary.Locales {
		rows = append(rows, []string{
			loc.File,
			humanize.Comma(int64(len(loc.Sources))),
			humanize.Comma(int64(len(loc.Skipped))),
			humanize.Comma(int64(loc.Keys)),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]column{col("Locale file"), numCol("Sources"), numCol("Skipped"), numCol("Keys")},
		rows,
		"No locale files merged",
	))
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
