package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSink appends rows to a growing CSV table. A new table starts with a
// UTF-8 byte-order mark and the header; existing tables are only appended to.
type CSVSink struct {
	path   string
	header []string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path, header: Header}
}

func (s *CSVSink) Path() string {
	return s.path
}

// Append writes rows at the end of the table.
func (s *CSVSink) Append(rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	fresh := info.Size() == 0
	var out io.Writer = f
	var bom *transform.Writer
	if fresh {
		// The BOM encoder emits the mark once, at the start of the stream.
		bom = transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
		out = bom
	}

	w := csv.NewWriter(out)
	if fresh {
		if err := w.Write(s.header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	if bom != nil {
		return bom.Close()
	}
	return nil
}

// NewBOMReader strips a leading UTF-8 byte-order mark, if any.
func NewBOMReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// WriteTable writes a complete CSV table (with BOM) to path, replacing it.
func WriteTable(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	tw := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(tw)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return tw.Close()
}
