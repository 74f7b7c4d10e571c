package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kerbaras/fengshen/pkg/analysis"
	"github.com/kerbaras/fengshen/pkg/app/components"
	"github.com/kerbaras/fengshen/pkg/data"
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Rank place names by how often the text mentions them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		cfg := ctrl.Config()

		dict := analysis.DefaultDictionary()
		if path, _ := cmd.Flags().GetString("dict"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open dictionary: %w", err)
			}
			dict, err = analysis.ParseDictionary(f)
			f.Close()
			if err != nil {
				return err
			}
		}

		repo, err := ctrl.OpenCorpus(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()

		texts, err := repo.ParagraphTexts(cmd.Context())
		if err != nil {
			return err
		}
		stats := analysis.CountPlaces(dict, texts)

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = filepath.Join(cfg.OutDir, cfg.FilePrefix+"_place_statistics.csv")
		}
		if err := data.WriteTable(out, analysis.PlaceHeader, analysis.PlaceRecords(stats)); err != nil {
			return err
		}
		logger.Info("Wrote place statistics", "path", out, "places", len(stats), "dictionary", dict.Len())

		top, _ := cmd.Flags().GetInt("top")
		top = max(0, min(top, len(stats)))
		columns := make([]components.Column, len(analysis.PlaceHeader))
		for i, h := range analysis.PlaceHeader {
			columns[i] = components.Column{Title: h, Width: 8}
		}
		fmt.Println(components.RenderTable(columns, analysis.PlaceRecords(stats[:top])))
		fmt.Printf("%d places -> %s\n", len(stats), out)
		return nil
	},
}

func init() {
	flags := placesCmd.Flags()
	flags.String("dict", "", `place dictionary, one "name [freq] [tag]" per line (default: built in)`)
	flags.StringP("output", "o", "", "output CSV (default <outdir>/fengshen_place_statistics.csv)")
	flags.Int("top", 10, "number of places to print")
}
