package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kerbaras/fengshen/pkg/app/components"
	"github.com/kerbaras/fengshen/pkg/app/styles"
	"github.com/kerbaras/fengshen/pkg/utils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which chapters are fetched and which are pending",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, _, err := setup(cmd)
		if err != nil {
			return err
		}
		cfg := ctrl.Config()

		requested, err := ctrl.Requested(cfg.Chapters)
		if err != nil {
			return err
		}
		store := ctrl.Manifests()
		m, err := store.Load()
		if err != nil {
			return err
		}

		fetched := m.Fetched()
		pending := m.Pending(requested)
		orNone := func(s string) string {
			if s == "" {
				return "none"
			}
			return s
		}

		rows := [][]string{
			{"manifest", store.Path()},
			{"fetched chapters", strconv.Itoa(len(fetched))},
			{"fetched", orNone(utils.CompactRanges(fetched))},
			{"requested", utils.CompactRanges(requested)},
			{"pending", orNone(utils.CompactRanges(pending))},
			{"paragraph rows", strconv.Itoa(m.ParaRows)},
			{"sentence rows", strconv.Itoa(m.SentRows)},
		}

		fmt.Println(styles.TitleStyle.Render(cfg.Book))
		fmt.Println(components.RenderTable(
			[]components.Column{{Title: "", Width: 18}, {Title: "", Width: 48}},
			rows,
		))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringP("chapters", "c", "", "chapter spec to compare against (default 1-100)")
}
