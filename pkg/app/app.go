package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/fengshen/pkg/app/screens"
	"github.com/kerbaras/fengshen/pkg/services"
)

type App struct {
	runner    screens.Runner
	book      string
	requested []int
}

func NewApp(runner screens.Runner, book string, requested []int) *App {
	return &App{runner: runner, book: book, requested: requested}
}

// Run shows the fetch screen until the run ends and returns its outcome.
func (a *App) Run(ctx context.Context) (*services.Summary, error) {
	model := screens.NewFetchScreen(ctx, a.runner, a.book, a.requested)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	screen := final.(*screens.FetchScreen)
	return screen.Summary, screen.Err
}
