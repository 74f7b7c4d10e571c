package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kerbaras/fengshen/pkg/config"
	"github.com/kerbaras/fengshen/pkg/logging"
	"github.com/kerbaras/fengshen/pkg/services"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fengshen",
	Short: "Resumable ctext.org scraper for 封神演義",
	Long: `Fetch 封神演義 chapter by chapter from the ctext.org API into paragraph and
sentence CSV tables, resuming where the last run stopped, and explore the
resulting corpus.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./fengshen.yaml or $HOME/.fengshen/config.yaml)")
	flags.String("outdir", "./out", "output directory for tables and manifest")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(placesCmd)
	rootCmd.AddCommand(epubCmd)
	rootCmd.AddCommand(configCmd)
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setup loads the configuration for cmd and builds a logger writing to
// stderr.
func setup(cmd *cobra.Command) (*services.Controller, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return services.NewController(cfg, logger), logger, nil
}
