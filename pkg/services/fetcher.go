package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/kerbaras/fengshen/pkg/data"
	"github.com/kerbaras/fengshen/pkg/sources"
	"github.com/kerbaras/fengshen/pkg/utils"
)

// URNResolver maps a chapter page URL to a text URN.
type URNResolver interface {
	Resolve(ctx context.Context, pageURL string) (string, error)
}

// FetcherConfig holds the knobs of a Fetcher.
type FetcherConfig struct {
	// ChapterURL renders the page URL of a chapter.
	ChapterURL func(n int) string
	// DefaultTitle names a chapter the API returned untitled.
	DefaultTitle func(n int) string
	// Delay is slept after each successful fetch and scales the retry backoff.
	Delay            time.Duration
	Retries          int
	RateLimitMarkers []string
	Logger           *slog.Logger
}

// Fetcher downloads one chapter at a time from a Source.
type Fetcher struct {
	source   sources.Source
	resolver URNResolver
	cfg      FetcherConfig
}

func NewFetcher(source sources.Source, resolver URNResolver, cfg FetcherConfig) *Fetcher {
	if cfg.DefaultTitle == nil {
		cfg.DefaultTitle = func(n int) string { return fmt.Sprintf("第%d回", n) }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Fetcher{source: source, resolver: resolver, cfg: cfg}
}

// Fetch resolves and downloads chapter n. Failed attempts are retried with a
// linearly growing delay, except for rate limits which are returned at once.
func (f *Fetcher) Fetch(ctx context.Context, n int) (*data.Chapter, error) {
	pageURL := f.cfg.ChapterURL(n)

	chapter, err := retry.DoWithData(
		func() (*data.Chapter, error) {
			return f.fetchOnce(ctx, n, pageURL)
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.cfg.Retries)+1),
		// The delay is only asked for when another attempt follows, with
		// attempt counting from 1, so the waits are Delay, 2*Delay, ...
		retry.DelayType(func(attempt uint, err error, _ *retry.Config) time.Duration {
			wait := f.cfg.Delay * time.Duration(attempt)
			f.cfg.Logger.Warn("Retrying chapter", "chapter", n, "retry", attempt, "wait", wait, "error", err)
			return wait
		}),
		retry.RetryIf(func(err error) bool {
			return !sources.IsRateLimit(err, f.cfg.RateLimitMarkers) && !errors.Is(err, context.Canceled)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch chapter %d: %w", n, err)
	}

	// A cancelled pause still hands back the chapter; the caller checks ctx.
	_ = utils.Sleep(ctx, f.cfg.Delay)
	return chapter, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, n int, pageURL string) (*data.Chapter, error) {
	urn, err := f.resolver.Resolve(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var title string
	var paragraphs []string

	text, err := f.source.GetText(ctx, urn)
	switch {
	case err != nil && sources.IsRateLimit(err, f.cfg.RateLimitMarkers):
		return nil, err
	case err != nil:
		f.cfg.Logger.Debug("gettext failed, walking subsections", "chapter", n, "urn", urn, "error", err)
	case text != nil:
		title = text.Title
		paragraphs = text.Fulltext
	}

	if len(paragraphs) == 0 {
		paragraphs, err = f.source.GetParagraphs(ctx, urn)
		if err != nil {
			return nil, err
		}
	}

	paragraphs = cleanParagraphs(paragraphs)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("%w: %s", sources.ErrNoContent, urn)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = f.cfg.DefaultTitle(n)
	}

	return &data.Chapter{
		Number:     n,
		Title:      title,
		URN:        urn,
		Paragraphs: paragraphs,
		SourceURL:  pageURL,
	}, nil
}

func cleanParagraphs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
