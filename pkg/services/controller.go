package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kerbaras/fengshen/pkg/config"
	"github.com/kerbaras/fengshen/pkg/data"
	"github.com/kerbaras/fengshen/pkg/sources"
	"github.com/kerbaras/fengshen/pkg/text"
	"github.com/kerbaras/fengshen/pkg/utils"
)

// Controller builds the scraper and the corpus tools from a Config.
type Controller struct {
	cfg    *config.Config
	logger *slog.Logger
	client *http.Client
}

func NewController(cfg *config.Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: cfg.CText.Timeout},
	}
}

func (c *Controller) Config() *config.Config {
	return c.cfg
}

// Requested parses the chapter range spec, falling back to the configured one.
func (c *Controller) Requested(spec string) ([]int, error) {
	if spec == "" {
		spec = c.cfg.Chapters
	}
	return utils.ParseChapterRange(spec)
}

// NewDownloader wires the ctext client, resolver, fetcher, sinks and
// manifest store for one run.
func (c *Controller) NewDownloader(logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = c.logger
	}
	cfg := c.cfg
	markers := cfg.CText.RateLimitMarkers

	source := sources.NewCText(cfg.CText.APIURL,
		sources.WithHTTPClient(c.client),
		sources.WithLanguage(cfg.CText.Language),
		sources.WithRemap(cfg.Remap),
	)
	resolver := sources.NewResolver(source, sources.ResolverConfig{
		ReadLinkURL: cfg.CText.ReadLinkURL,
		Extraction:  sources.Extraction{Keys: cfg.CText.URNKeys, Prefix: cfg.CText.URNPrefix},
		Delay:       cfg.DelayDuration(),
		Client:      c.client,
		Logger:      logger,
	})
	fetcher := NewFetcher(source, resolver, FetcherConfig{
		ChapterURL:       cfg.ChapterURL,
		DefaultTitle:     cfg.DefaultTitle,
		Delay:            cfg.DelayDuration(),
		Retries:          cfg.Retries,
		RateLimitMarkers: markers,
		Logger:           logger,
	})

	return NewDownloader(DownloaderConfig{
		Fetcher:          fetcher,
		Paragraphs:       data.NewCSVSink(cfg.ParagraphsPath()),
		Sentences:        data.NewCSVSink(cfg.SentencesPath()),
		Manifests:        c.Manifests(),
		Split:            text.NewSplitter(cfg.Text.Terminators).Split,
		Book:             cfg.Book,
		RateLimitMarkers: markers,
		Logger:           logger,
	})
}

func (c *Controller) Manifests() *data.ManifestStore {
	return data.NewManifestStore(c.cfg.ManifestPath())
}

// OpenCorpus loads the fetched tables into an in-memory DuckDB.
func (c *Controller) OpenCorpus(ctx context.Context) (*data.Repository, error) {
	repo, err := data.OpenCorpus(ctx, c.cfg.ParagraphsPath(), c.cfg.SentencesPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus in %s: %w", c.cfg.OutDir, err)
	}
	return repo, nil
}
