package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kerbaras/fengshen/pkg/app"
	"github.com/kerbaras/fengshen/pkg/app/screens"
	"github.com/kerbaras/fengshen/pkg/logging"
	"github.com/kerbaras/fengshen/pkg/services"
	"github.com/kerbaras/fengshen/pkg/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch chapters into the paragraph and sentence tables",
	Long: `Fetch the requested chapters that are not in the manifest yet. Each fetched
chapter is appended to both CSV tables and recorded in manifest.json, so an
interrupted or rate limited run continues where it stopped.`,
	Example: `  fengshen fetch --chapters 1-10
  fengshen fetch --chapters 1-5,12 --delay 1.5 --remap gb
  fengshen fetch --tui`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		cfg := ctrl.Config()

		requested, err := ctrl.Requested(cfg.Chapters)
		if err != nil {
			return err
		}

		tui, _ := cmd.Flags().GetBool("tui")
		if tui {
			// The screen owns the terminal; logs go next to the tables.
			if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(filepath.Join(cfg.OutDir, "fetch.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			if logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, f); err != nil {
				return err
			}
		}

		logger, runID := logging.WithRun(logger)
		downloader := ctrl.NewDownloader(logger)

		var summary *services.Summary
		if tui {
			summary, err = app.NewApp(downloader, cfg.Book, requested).Run(cmd.Context())
		} else {
			fmt.Printf("Fetching chapters %s into %s (run %s)\n", utils.CompactRanges(requested), cfg.OutDir, runID)
			summary, err = downloader.Run(cmd.Context(), requested)
			downloader.Close()
		}
		if err != nil {
			return err
		}
		if summary == nil {
			fmt.Println("Stopped before the run finished. Progress up to the last chapter is saved.")
			return nil
		}

		fmt.Println(screens.SummaryView(summary, nil))
		return nil
	},
}

func init() {
	flags := fetchCmd.Flags()
	flags.StringP("chapters", "c", "", `chapter spec, e.g. "1-10", "1,3,5", "1-5,10-12" (default 1-100)`)
	flags.Float64("delay", 0.8, "seconds to wait after each request")
	flags.String("remap", "", `character remap passed to the API ("gb" for simplified)`)
	flags.Int("retries", 1, "extra attempts per chapter on transient errors")
	flags.Bool("tui", false, "show an interactive progress screen")
}
