package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/fengshen/pkg/app/components"
	"github.com/kerbaras/fengshen/pkg/app/styles"
	"github.com/kerbaras/fengshen/pkg/services"
	"github.com/kerbaras/fengshen/pkg/utils"
)

// Runner is satisfied by *services.Downloader.
type Runner interface {
	Run(ctx context.Context, requested []int) (*services.Summary, error)
	Progress() <-chan services.ChapterProgress
	Close()
}

type progressMsg services.ChapterProgress

type doneMsg struct {
	summary *services.Summary
	err     error
}

// FetchScreen shows a scrape while it runs. ctrl+c cancels the run; the
// screen quits once Run has returned and the manifest is saved.
type FetchScreen struct {
	runner    Runner
	book      string
	requested []int
	ctx       context.Context
	cancel    context.CancelFunc

	spinner  spinner.Model
	tracker  *components.ProgressTracker
	stopping bool

	Summary *services.Summary
	Err     error
	done    bool

	width int
}

func NewFetchScreen(ctx context.Context, runner Runner, book string, requested []int) *FetchScreen {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.StatusFetching

	return &FetchScreen{
		runner:    runner,
		book:      book,
		requested: requested,
		ctx:       ctx,
		cancel:    cancel,
		spinner:   s,
		tracker:   components.NewProgressTracker(60),
		width:     64,
	}
}

func (f *FetchScreen) Init() tea.Cmd {
	return tea.Batch(f.spinner.Tick, f.run(), f.listen())
}

func (f *FetchScreen) run() tea.Cmd {
	return func() tea.Msg {
		summary, err := f.runner.Run(f.ctx, f.requested)
		f.runner.Close()
		return doneMsg{summary: summary, err: err}
	}
}

func (f *FetchScreen) listen() tea.Cmd {
	ch := f.runner.Progress()
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg(p)
	}
}

func (f *FetchScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		f.tracker.SetWidth(min(msg.Width, 80))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if f.done {
				return f, tea.Quit
			}
			// Further presses keep waiting for doneMsg.
			f.stopping = true
			f.cancel()
			return f, nil
		}

	case progressMsg:
		f.tracker.Update(services.ChapterProgress(msg))
		return f, f.listen()

	case doneMsg:
		f.done = true
		f.Summary = msg.summary
		f.Err = msg.err
		f.cancel()
		return f, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return f, cmd
	}

	return f, nil
}

func (f *FetchScreen) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(f.book))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("chapters %s", utils.CompactRanges(f.requested))))
	b.WriteString("\n\n")

	if !f.done {
		b.WriteString(f.spinner.View())
		if f.stopping {
			b.WriteString(styles.StatusWarning.Render(" stopping, saving progress..."))
		} else {
			b.WriteString(styles.MutedStyle.Render(" fetching"))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(f.tracker.View())

	if f.done {
		b.WriteString("\n")
		b.WriteString(SummaryView(f.Summary, f.Err))
	} else {
		b.WriteString(styles.HelpStyle.Render("ctrl+c: stop and save progress"))
	}
	b.WriteString("\n")

	return b.String()
}

// SummaryView renders how a run ended.
func SummaryView(summary *services.Summary, err error) string {
	switch {
	case err != nil:
		return styles.StatusError.Render(fmt.Sprintf("Error: %s", err))
	case summary == nil:
		return ""
	}

	var b strings.Builder
	switch {
	case summary.RateLimited:
		b.WriteString(styles.StatusWarning.Render("Request limit reached. Progress is saved; rerun later to continue."))
	case summary.Interrupted:
		b.WriteString(styles.StatusWarning.Render("Interrupted. Progress is saved; rerun to continue."))
	default:
		b.WriteString(styles.StatusCompleted.Render("Done."))
	}
	b.WriteString("\n")

	m := summary.Manifest
	fmt.Fprintf(&b, "fetched this run: %d, skipped: %d, fetched in total: %d\n",
		len(summary.Fetched), len(summary.Failed), len(m.Fetched()))
	fmt.Fprintf(&b, "paragraph rows: %d, sentence rows: %d\n", m.ParaRows, m.SentRows)
	if rest := summary.Remaining(); len(rest) > 0 {
		fmt.Fprintf(&b, "still pending: %s\n", utils.CompactRanges(rest))
	}
	return b.String()
}
