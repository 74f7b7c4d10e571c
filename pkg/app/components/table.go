package components

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/kerbaras/fengshen/pkg/app/styles"
)

// Column describes one column of a static table.
type Column struct {
	Title string
	Width int
}

// RenderTable draws rows as a bordered table without focus or cursor.
func RenderTable(columns []Column, rows [][]string) string {
	cols := make([]table.Column, len(columns))
	total := 0
	for i, c := range columns {
		width := max(c.Width, lipgloss.Width(c.Title))
		cols[i] = table.Column{Title: c.Title, Width: width}
		total += width + 2 // cell padding
	}

	trs := make([]table.Row, len(rows))
	for i, r := range rows {
		trs[i] = table.Row(r)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(trs),
		table.WithWidth(total),
		// header row plus its border
		table.WithHeight(len(trs)+2),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Foreground(styles.Primary).
		Bold(true)
	s.Selected = s.Cell
	t.SetStyles(s)

	return styles.CardStyle.Render(t.View())
}
