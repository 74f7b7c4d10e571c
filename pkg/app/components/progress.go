package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/fengshen/pkg/app/styles"
	"github.com/kerbaras/fengshen/pkg/services"
)

// maxRecent is how many finished chapters the tracker lists.
const maxRecent = 8

type ProgressTracker struct {
	current  *services.ChapterProgress
	recent   []services.ChapterProgress
	done     int
	skipped  int
	paraRows int
	sentRows int
	width    int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{width: width}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Update(progress services.ChapterProgress) {
	if progress.Status == services.StatusFetching {
		prog := progress // Copy
		p.current = &prog
		return
	}

	switch progress.Status {
	case services.StatusComplete:
		p.done++
		p.paraRows += progress.ParaRows
		p.sentRows += progress.SentRows
	case services.StatusSkipped:
		p.skipped++
	}
	if p.current != nil && p.current.Chapter == progress.Chapter {
		p.current = nil
	}
	p.recent = append(p.recent, progress)
	if len(p.recent) > maxRecent {
		p.recent = p.recent[len(p.recent)-maxRecent:]
	}
}

// Processed counts chapters that reached an outcome.
func (p *ProgressTracker) Processed() int {
	return p.done + p.skipped
}

func (p *ProgressTracker) View() string {
	var b strings.Builder

	if p.current != nil {
		b.WriteString(styles.TextStyle.Render(fmt.Sprintf("Chapter %d", p.current.Chapter)))
		b.WriteString(" ")
		b.WriteString(styles.StatusStyle(p.current.Status).Render(p.current.Status))
		b.WriteString("\n")
		if p.current.Total > 0 {
			b.WriteString(renderProgressBar(p.current.Index-1, p.current.Total, p.width-4))
			b.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" %d/%d", p.current.Index-1, p.current.Total)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, prog := range p.recent {
		line := fmt.Sprintf("%4d  %s", prog.Chapter, prog.Title)
		if prog.Status == services.StatusComplete {
			line += styles.MutedStyle.Render(fmt.Sprintf("  %d paragraphs, %d sentences", prog.ParaRows, prog.SentRows))
		}
		b.WriteString(styles.StatusStyle(prog.Status).Render(fmt.Sprintf("%-12s", prog.Status)))
		b.WriteString(line)
		b.WriteString("\n")
		if prog.Error != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("      Error: %s", prog.Error)))
			b.WriteString("\n")
		}
	}

	if p.Processed() > 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d fetched, %d skipped, %d paragraph rows, %d sentence rows",
			p.done, p.skipped, p.paraRows, p.sentRows)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}
