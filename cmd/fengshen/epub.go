package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kerbaras/fengshen/pkg/integrations"
)

var epubCmd = &cobra.Command{
	Use:   "epub",
	Short: "Compile the fetched chapters into an EPUB",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		cfg := ctrl.Config()

		repo, err := ctrl.OpenCorpus(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()

		chapters, err := repo.Chapters(cmd.Context())
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.OutDir
		}

		path, err := integrations.NewEPubBuilder(cfg.Book, cfg.Author).CreateEPub(chapters, output)
		if err != nil {
			return err
		}
		logger.Info("Wrote EPUB", "path", path, "chapters", len(chapters))
		fmt.Printf("EPUB created: %s\n", path)
		return nil
	},
}

func init() {
	epubCmd.Flags().StringP("output", "o", "", "output file or directory (default <outdir>)")
}
