package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kerbaras/fengshen/pkg/app/styles"
	"github.com/kerbaras/fengshen/pkg/data"
)

var statsHeader = []string{"chapter", "title", "paragraphs", "sentences", "characters"}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-chapter paragraph, sentence and character counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		repo, err := ctrl.OpenCorpus(cmd.Context())
		if err != nil {
			return err
		}
		defer repo.Close()

		stats, err := repo.ChapterStats(cmd.Context())
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("No chapters fetched yet. Run 'fengshen fetch' first.")
			return nil
		}

		records := make([][]string, 0, len(stats))
		var paras, sents, chars int
		for _, s := range stats {
			records = append(records, []string{
				strconv.Itoa(s.Number),
				s.Title,
				strconv.Itoa(s.Paragraphs),
				strconv.Itoa(s.Sentences),
				strconv.Itoa(s.Characters),
			})
			paras += s.Paragraphs
			sents += s.Sentences
			chars += s.Characters
		}

		if out, _ := cmd.Flags().GetString("output"); out != "" {
			if err := data.WriteTable(out, statsHeader, records); err != nil {
				return err
			}
			logger.Info("Wrote chapter statistics", "path", out, "chapters", len(records))
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(styles.Muted)).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return styles.HeaderStyle
				}
				if col == 1 {
					return styles.CellStyle
				}
				return styles.CellStyle.Align(lipgloss.Right)
			}).
			Headers(statsHeader...).
			Rows(records...)

		fmt.Println(t.String())
		fmt.Println(styles.MutedStyle.Render(fmt.Sprintf("%d chapters, %d paragraphs, %d sentences, %d characters",
			len(stats), paras, sents, chars)))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("output", "o", "", "also write the table to this CSV file")
}
