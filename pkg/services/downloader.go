package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kerbaras/fengshen/pkg/data"
	"github.com/kerbaras/fengshen/pkg/sources"
)

// Chapter statuses reported on the progress channel.
const (
	StatusFetching    = "fetching"
	StatusComplete    = "complete"
	StatusSkipped     = "skipped"
	StatusRateLimited = "rate_limited"
)

// ChapterProgress represents the progress of one chapter in a run
type ChapterProgress struct {
	Chapter  int
	Title    string
	Index    int // 1-based position among the pending chapters
	Total    int
	Status   string
	ParaRows int
	SentRows int
	Error    error
}

// ChapterFetcher is satisfied by *Fetcher.
type ChapterFetcher interface {
	Fetch(ctx context.Context, n int) (*data.Chapter, error)
}

// RowSink is satisfied by *data.CSVSink.
type RowSink interface {
	Append(rows []data.Row) error
}

// ManifestRepository is satisfied by *data.ManifestStore.
type ManifestRepository interface {
	Load() (*data.Manifest, error)
	Save(m *data.Manifest) error
}

// Summary describes how a run ended.
type Summary struct {
	Requested   []int
	Pending     []int
	Fetched     []int
	Failed      []int
	RateLimited bool
	Interrupted bool
	Manifest    *data.Manifest
}

// Remaining lists the pending chapters the run did not fetch.
func (s *Summary) Remaining() []int {
	var out []int
	for _, n := range s.Pending {
		if !s.Manifest.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Downloader drives a resumable scrape: it fetches pending chapters one by
// one, appends their rows to the sinks and records them in the manifest.
type Downloader struct {
	fetcher      ChapterFetcher
	paragraphs   RowSink
	sentences    RowSink
	manifests    ManifestRepository
	split        func(string) []string
	book         string
	markers      []string
	logger       *slog.Logger
	progressChan chan ChapterProgress
}

// DownloaderConfig wires a Downloader.
type DownloaderConfig struct {
	Fetcher          ChapterFetcher
	Paragraphs       RowSink
	Sentences        RowSink
	Manifests        ManifestRepository
	Split            func(string) []string
	Book             string
	RateLimitMarkers []string
	Logger           *slog.Logger
}

func NewDownloader(cfg DownloaderConfig) *Downloader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		fetcher:      cfg.Fetcher,
		paragraphs:   cfg.Paragraphs,
		sentences:    cfg.Sentences,
		manifests:    cfg.Manifests,
		split:        cfg.Split,
		book:         cfg.Book,
		markers:      cfg.RateLimitMarkers,
		logger:       logger,
		progressChan: make(chan ChapterProgress, 100),
	}
}

// Progress returns the channel for receiving chapter progress updates
func (d *Downloader) Progress() <-chan ChapterProgress {
	return d.progressChan
}

// Run fetches every requested chapter the manifest does not list yet. A rate
// limit or a cancelled context stops the run early without an error; the
// Summary says which. The manifest is saved after every chapter outcome.
func (d *Downloader) Run(ctx context.Context, requested []int) (*Summary, error) {
	manifest, err := d.manifests.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	summary := &Summary{
		Requested: requested,
		Pending:   manifest.Pending(requested),
		Manifest:  manifest,
	}
	d.logger.Info("Starting run",
		"requested", len(requested),
		"already_fetched", len(requested)-len(summary.Pending),
		"pending", len(summary.Pending))

	for i, n := range summary.Pending {
		if ctx.Err() != nil {
			summary.Interrupted = true
			return summary, d.save(manifest)
		}

		progress := ChapterProgress{Chapter: n, Index: i + 1, Total: len(summary.Pending)}
		progress.Status = StatusFetching
		d.sendProgress(progress)

		paraRows, sentRows, err := d.chapter(ctx, n, &progress)
		switch {
		case err == nil:
			manifest.MarkFetched(n, paraRows, sentRows)
			summary.Fetched = append(summary.Fetched, n)
			if err := d.save(manifest); err != nil {
				return summary, err
			}
			progress.Status = StatusComplete
			progress.ParaRows, progress.SentRows = paraRows, sentRows
			d.sendProgress(progress)
			d.logger.Info("Chapter saved", "chapter", n, "title", progress.Title,
				"paragraphs", paraRows, "sentences", sentRows)

		case ctx.Err() != nil:
			summary.Interrupted = true
			return summary, d.save(manifest)

		case sources.IsRateLimit(err, d.markers):
			summary.RateLimited = true
			progress.Status = StatusRateLimited
			progress.Error = err
			d.sendProgress(progress)
			d.logger.Warn("Rate limited, stopping run", "chapter", n, "error", err)
			return summary, d.save(manifest)

		default:
			summary.Failed = append(summary.Failed, n)
			progress.Status = StatusSkipped
			progress.Error = err
			d.sendProgress(progress)
			d.logger.Warn("Skipping chapter", "chapter", n, "error", err)
			if err := d.save(manifest); err != nil {
				return summary, err
			}
		}
	}

	d.logger.Info("Run complete",
		"fetched", len(summary.Fetched),
		"failed", len(summary.Failed),
		"total_fetched", len(manifest.Fetched()),
		"para_rows", manifest.ParaRows,
		"sent_rows", manifest.SentRows)
	return summary, nil
}

// chapter fetches chapter n and appends its rows to both sinks.
func (d *Downloader) chapter(ctx context.Context, n int, progress *ChapterProgress) (int, int, error) {
	ch, err := d.fetcher.Fetch(ctx, n)
	if err != nil {
		return 0, 0, err
	}
	progress.Title = ch.Title

	paraRows := data.ParagraphRows(d.book, ch)
	sentRows := data.SentenceRows(d.book, ch, d.split)

	if err := d.paragraphs.Append(paraRows); err != nil {
		return 0, 0, fmt.Errorf("append paragraphs of chapter %d: %w", n, err)
	}
	if err := d.sentences.Append(sentRows); err != nil {
		return 0, 0, fmt.Errorf("append sentences of chapter %d: %w", n, err)
	}
	return len(paraRows), len(sentRows), nil
}

func (d *Downloader) save(m *data.Manifest) error {
	if err := d.manifests.Save(m); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

// sendProgress sends a progress update (non-blocking)
func (d *Downloader) sendProgress(progress ChapterProgress) {
	select {
	case d.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close closes the progress channel. Run must not be called afterwards.
func (d *Downloader) Close() {
	close(d.progressChan)
}
