package sources

import "context"

// Source is a text corpus service that maps web URLs to URNs and serves
// the text behind a URN.
type Source interface {
	ReadLink(ctx context.Context, url string) (LinkResult, error)
	GetText(ctx context.Context, urn string) (*Text, error)
	GetParagraphs(ctx context.Context, urn string) ([]string, error)
}

// Text is a structured text document.
type Text struct {
	Title       string   `json:"title"`
	Fulltext    []string `json:"fulltext"`
	Subsections []string `json:"subsections"`
}
