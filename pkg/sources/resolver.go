package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/kerbaras/fengshen/pkg/utils"
)

// Resolver maps a chapter URL to its URN. It asks the Source first and falls
// back to a direct call of the readlink endpoint.
type Resolver struct {
	source   Source
	fallback *utils.API
	extract  Extraction
	delay    time.Duration
	logger   *slog.Logger
}

// ResolverConfig configures a Resolver. Zero values take the defaults.
type ResolverConfig struct {
	ReadLinkURL string
	Extraction  Extraction
	// Delay follows every call to the fallback endpoint.
	Delay  time.Duration
	Client *http.Client
	Logger *slog.Logger
}

func NewResolver(source Source, cfg ResolverConfig) *Resolver {
	if cfg.ReadLinkURL == "" {
		cfg.ReadLinkURL = DefaultReadLinkURL
	}
	if len(cfg.Extraction.Keys) == 0 && cfg.Extraction.Prefix == "" {
		cfg.Extraction = DefaultExtraction()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		source:   source,
		fallback: utils.NewAPI(cfg.ReadLinkURL, cfg.Client),
		extract:  cfg.Extraction,
		delay:    cfg.Delay,
		logger:   cfg.Logger,
	}
}

// Resolve returns the URN for pageURL. When both lookups fail the error is a
// *ResolutionError holding both causes.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	urn, primaryErr := r.primary(ctx, pageURL)
	if primaryErr == nil {
		return urn, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	r.logger.Debug("readlink failed, trying api endpoint", "url", pageURL, "error", primaryErr)

	urn, secondaryErr := r.secondary(ctx, pageURL)
	if err := utils.Sleep(ctx, r.delay); err != nil {
		return "", err
	}
	if secondaryErr == nil {
		return urn, nil
	}
	return "", &ResolutionError{URL: pageURL, Primary: primaryErr, Secondary: secondaryErr}
}

func (r *Resolver) primary(ctx context.Context, pageURL string) (string, error) {
	res, err := r.source.ReadLink(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", ErrNoIdentifier
	}
	urn, ok := res.Identifier(r.extract)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrNoIdentifier, res)
	}
	return urn, nil
}

func (r *Resolver) secondary(ctx context.Context, pageURL string) (string, error) {
	resp, err := r.fallback.GetRaw(ctx, "", url.Values{"url": {pageURL}})
	if err != nil {
		return "", err
	}
	if err := checkAPIError(resp); err != nil {
		return "", err
	}

	// The endpoint does not always label its JSON, so the body is decoded
	// whatever the content type says.
	var obj StructuredResult
	if err := json.Unmarshal(resp.Body, &obj); err != nil {
		return "", fmt.Errorf("unexpected readlink answer (%s): %w", resp.ContentType, err)
	}
	urn, ok := obj.Identifier(r.extract)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrNoIdentifier, map[string]any(obj))
	}
	return urn, nil
}
