package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kerbaras/fengshen/pkg/utils"
)

const (
	DefaultAPIURL      = "https://api.ctext.org"
	DefaultReadLinkURL = "https://api.ctext.org/readlink"

	// maxDepth bounds the walk through nested subsections.
	maxDepth = 4
)

// CText is a client for the ctext.org API.
type CText struct {
	api      *utils.API
	language string
	remap    string
}

type CTextOption func(*ctextOptions)

type ctextOptions struct {
	client   *http.Client
	language string
	remap    string
}

// WithHTTPClient sets the HTTP client (default: http.DefaultClient).
func WithHTTPClient(c *http.Client) CTextOption {
	return func(o *ctextOptions) {
		if c != nil {
			o.client = c
		}
	}
}

// WithLanguage sets the interface language sent as "if" (default: zh).
func WithLanguage(lang string) CTextOption {
	return func(o *ctextOptions) {
		o.language = lang
	}
}

// WithRemap asks the API to remap characters, "gb" for simplified script.
// Empty keeps the traditional text.
func WithRemap(remap string) CTextOption {
	return func(o *ctextOptions) {
		o.remap = remap
	}
}

func NewCText(apiURL string, opts ...CTextOption) *CText {
	o := ctextOptions{language: "zh"}
	for _, opt := range opts {
		opt(&o)
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &CText{
		api:      utils.NewAPI(apiURL, o.client),
		language: o.language,
		remap:    o.remap,
	}
}

// ReadLink maps a ctext.org page URL to its URN.
func (c *CText) ReadLink(ctx context.Context, pageURL string) (LinkResult, error) {
	resp, err := c.call(ctx, "readlink", url.Values{"url": {pageURL}})
	if err != nil {
		return nil, err
	}
	return ParseLinkResult(resp.Body), nil
}

// GetText fetches the structured text behind a URN.
func (c *CText) GetText(ctx context.Context, urn string) (*Text, error) {
	resp, err := c.call(ctx, "gettext", url.Values{"urn": {urn}})
	if err != nil {
		return nil, err
	}
	var text Text
	if err := json.Unmarshal(resp.Body, &text); err != nil {
		return nil, fmt.Errorf("failed to decode gettext for %s: %w", urn, err)
	}
	return &text, nil
}

// GetParagraphs returns the paragraphs of a URN, descending into
// subsections when the URN is not a leaf.
func (c *CText) GetParagraphs(ctx context.Context, urn string) ([]string, error) {
	return c.paragraphs(ctx, urn, 0)
}

func (c *CText) paragraphs(ctx context.Context, urn string, depth int) ([]string, error) {
	text, err := c.GetText(ctx, urn)
	if err != nil {
		return nil, err
	}
	if len(text.Fulltext) > 0 || depth >= maxDepth {
		return text.Fulltext, nil
	}

	var out []string
	for _, sub := range text.Subsections {
		paras, err := c.paragraphs(ctx, sub, depth+1)
		if err != nil {
			return nil, fmt.Errorf("subsection %s: %w", sub, err)
		}
		out = append(out, paras...)
	}
	return out, nil
}

func (c *CText) call(ctx context.Context, fn string, params url.Values) (*utils.Response, error) {
	if c.language != "" {
		params.Set("if", c.language)
	}
	if c.remap != "" {
		params.Set("remap", c.remap)
	}
	resp, err := c.api.GetRaw(ctx, "/"+fn, params)
	if err != nil {
		return nil, fmt.Errorf("ctext %s: %w", fn, err)
	}
	if err := checkAPIError(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// checkAPIError turns an error envelope or a failing status into an APIError.
func checkAPIError(resp *utils.Response) error {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && len(envelope.Error) > 0 && string(envelope.Error) != "null" {
		apiErr := &APIError{Status: resp.Status}
		var detail struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(envelope.Error, &detail); err == nil {
			apiErr.Code, apiErr.Description = detail.Code, detail.Description
		} else {
			var msg string
			_ = json.Unmarshal(envelope.Error, &msg)
			apiErr.Code, apiErr.Description = "ERR_UNKNOWN", msg
		}
		return apiErr
	}

	if resp.Status >= http.StatusBadRequest {
		return &APIError{
			Status:      resp.Status,
			Code:        fmt.Sprintf("HTTP_%d", resp.Status),
			Description: http.StatusText(resp.Status),
		}
	}
	return nil
}
