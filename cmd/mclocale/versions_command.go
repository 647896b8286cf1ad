package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mclocale/internal/bedrock"
	"mclocale/internal/catalog"
	"mclocale/internal/java"
)

type versionRow struct {
	ID       string `json:"id"`
	Channel  string `json:"channel"`
	Build    string `json:"build,omitempty"`
	Release  string `json:"release"`
	Eligible bool   `json:"eligible"`
}

func newVersionsCommand(ctx *commandContext) *cobra.Command {
	var catalogPath string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:       "versions <bedrock|java>",
		Short:     "List the versions published in an edition's catalog",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{bedrock.Name, java.Name},
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

			var rows []versionRow
			switch strings.ToLower(args[0]) {
			case bedrock.Name:
				c, err := bedrockCatalog(cmd, s, doc)
				if err != nil {
					return err
				}
				for _, desc := range c.All() {
					_, selErr := catalog.SelectVariant(desc, s.cfg.Bedrock.Arch, s.cfg.Bedrock.MinArchivalStatus)
					rows = append(rows, versionRow{
						ID:       desc.ID,
						Channel:  desc.Channel,
						Build:    string(desc.Build),
						Release:  desc.ReleaseKey,
						Eligible: selErr == nil,
					})
				}
			case java.Name:
				m, err := javaManifest(cmd, s, doc)
				if err != nil {
					return err
				}
				for _, desc := range m.Catalog.All() {
					rows = append(rows, versionRow{
						ID:       desc.ID,
						Channel:  desc.Channel,
						Release:  desc.ReleaseKey,
						Eligible: true,
					})
				}
			default:
				return fmt.Errorf("unknown edition %q (want bedrock or java)", args[0])
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[len(rows)-limit:]
			}

			if jsonOutput {
				return writeJSON(cmd, rows)
			}
			cells := make([][]string, 0, len(rows))
			for _, row := range rows {
				cells = append(cells, []string{row.ID, row.Channel, row.Build, row.Release, yesNo(row.Eligible)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{col("Version"), col("Channel"), col("Build"), col("Released"), col("Eligible")},
				cells,
				"No versions match",
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Read the catalog from a local file instead of fetching it")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last N catalog entries (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func bedrockCatalog(cmd *cobra.Command, s *session, doc []byte) (*catalog.Catalog, error) {
	if len(doc) > 0 {
		return catalog.ParseBedrock(doc, s.cfg.Bedrock.CatalogKey)
	}
	_, c, err := s.bedrockEdition().FetchCatalog(cmd.Context())
	return c, err
}

func javaManifest(cmd *cobra.Command, s *session, doc []byte) (*catalog.JavaManifest, error) {
	if len(doc) > 0 {
		return catalog.ParseJavaManifest(doc)
	}
	_, m, err := s.javaEdition().FetchManifest(cmd.Context())
	return m, err
}
