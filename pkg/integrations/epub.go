package integrations

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/fengshen/pkg/data"
)

type EPubBuilder struct {
	title  string
	author string
	lang   string
}

func NewEPubBuilder(title, author string) *EPubBuilder {
	return &EPubBuilder{title: title, author: author, lang: "zh"}
}

// CreateEPub compiles the chapters into a single EPub file. outputPath may
// name a file or an existing directory; in the latter case the file is named
// after the book.
func (p *EPubBuilder) CreateEPub(chapters []data.ChapterText, outputPath string) (string, error) {
	if len(chapters) == 0 {
		return "", fmt.Errorf("no chapters to compile")
	}

	sorted := make([]data.ChapterText, len(chapters))
	copy(sorted, chapters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	e, err := epub.NewEpub(p.title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	if p.author != "" {
		e.SetAuthor(p.author)
	}
	e.SetLang(p.lang)
	e.SetDescription(fmt.Sprintf("%s, %d chapters", p.title, len(sorted)))

	for _, chapter := range sorted {
		if err := p.addChapterToEPub(e, chapter); err != nil {
			return "", fmt.Errorf("failed to add chapter %d: %w", chapter.Number, err)
		}
	}

	outputPath = p.resolveOutput(outputPath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

// addChapterToEPub adds one chapter as an XHTML section
func (p *EPubBuilder) addChapterToEPub(e *epub.Epub, chapter data.ChapterText) error {
	title := chapter.Title
	if title == "" {
		title = fmt.Sprintf("%d", chapter.Number)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<h1>%s</h1>\n", html.EscapeString(title))
	for _, para := range chapter.Paragraphs {
		fmt.Fprintf(&body, "<p>%s</p>\n", html.EscapeString(para))
	}

	filename := fmt.Sprintf("chapter%04d.xhtml", chapter.Number)
	if _, err := e.AddSection(body.String(), title, filename, ""); err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}
	return nil
}

func (p *EPubBuilder) resolveOutput(outputPath string) string {
	name := sanitizeFilename(p.title) + ".epub"
	if outputPath == "" {
		return name
	}
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		return filepath.Join(outputPath, name)
	}
	return outputPath
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		result = "book"
	}
	return result
}
