package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kerbaras/fengshen/pkg/analysis"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build a character co-occurrence network for Gephi",
	Long: `Count, for every pair of names in the whitelist, the sentences that mention
both, and write Gephi node (Id,Label) and edge (Source,Target,Weight) tables.`,
	Example: `  fengshen network --whitelist characters.csv`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		cfg := ctrl.Config()

		whitelist, _ := cmd.Flags().GetString("whitelist")
		f, err := os.Open(whitelist)
		if err != nil {
			return fmt.Errorf("failed to open whitelist: %w", err)
		}
		names, err := analysis.LoadWhitelist(f)
		f.Close()
		if err != nil {
			return err
		}

		repo, err := ctrl.OpenCorpus(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()

		sentences, err := repo.SentenceTexts(cmd.Context())
		if err != nil {
			return err
		}

		nodesPath, _ := cmd.Flags().GetString("nodes")
		edgesPath, _ := cmd.Flags().GetString("edges")
		if nodesPath == "" {
			nodesPath = filepath.Join(cfg.OutDir, cfg.FilePrefix+"_nodes.csv")
		}
		if edgesPath == "" {
			edgesPath = filepath.Join(cfg.OutDir, cfg.FilePrefix+"_edges.csv")
		}

		network := analysis.BuildNetwork(names, sentences)
		if err := network.Write(nodesPath, edgesPath); err != nil {
			return err
		}
		logger.Info("Wrote network", "nodes", len(network.Nodes), "edges", len(network.Edges),
			"sentences", len(sentences))
		fmt.Printf("%d nodes -> %s\n%d edges -> %s\n", len(network.Nodes), nodesPath, len(network.Edges), edgesPath)
		return nil
	},
}

func init() {
	flags := networkCmd.Flags()
	flags.String("whitelist", "", "CSV file whose first column lists the names (header row skipped)")
	flags.String("nodes", "", "node table path (default <outdir>/fengshen_nodes.csv)")
	flags.String("edges", "", "edge table path (default <outdir>/fengshen_edges.csv)")
	_ = networkCmd.MarkFlagRequired("whitelist")
}
