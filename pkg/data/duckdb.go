package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// Table names one of the two corpus tables.
type Table string

const (
	Paragraphs Table = "paragraphs"
	Sentences  Table = "sentences"
)

const schema = `
CREATE TABLE IF NOT EXISTS %s (
	book VARCHAR,
	chapter_no INTEGER,
	chapter_title VARCHAR,
	para_index INTEGER,
	sentence_index INTEGER,
	source_url VARCHAR,
	urn VARCHAR,
	text VARCHAR
)`

// InitDuckDB opens a DuckDB database and creates the corpus tables.
// An empty path opens an in-memory database.
func InitDuckDB(path string) (*sql.DB, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	for _, table := range []Table{Paragraphs, Sentences} {
		if _, err := db.Exec(fmt.Sprintf(schema, table)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return db, nil
}

// Repository answers read queries over the scraped corpus.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// OpenCorpus loads the paragraph and sentence tables into an in-memory
// database. A table whose file does not exist stays empty.
func OpenCorpus(ctx context.Context, paragraphsPath, sentencesPath string) (*Repository, error) {
	db, err := InitDuckDB("")
	if err != nil {
		return nil, err
	}
	repo := NewRepository(db)

	for table, path := range map[Table]string{Paragraphs: paragraphsPath, Sentences: sentencesPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if _, err := repo.ImportCSV(ctx, table, path); err != nil {
			repo.Close()
			return nil, err
		}
	}
	return repo, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// ImportCSV loads a table written by CSVSink. Identical rows, which a retried
// chapter can leave behind, are only loaded once.
func (r *Repository) ImportCSV(ctx context.Context, table Table, path string) (int64, error) {
	query := fmt.Sprintf(`
INSERT INTO %s
SELECT DISTINCT * FROM read_csv(%s,
	header = true,
	delim = ',',
	quote = '"',
	escape = '"',
	columns = {
		'book': 'VARCHAR',
		'chapter_no': 'INTEGER',
		'chapter_title': 'VARCHAR',
		'para_index': 'INTEGER',
		'sentence_index': 'INTEGER',
		'source_url': 'VARCHAR',
		'urn': 'VARCHAR',
		'text': 'VARCHAR'
	})`, table, quoteLiteral(path))

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to import %s into %s: %w", path, table, err)
	}
	return res.RowsAffected()
}

// ChapterStats returns per-chapter counts, ordered by chapter.
func (r *Repository) ChapterStats(ctx context.Context) ([]ChapterStat, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.chapter_no,
	COALESCE(any_value(p.chapter_title), ''),
	COUNT(*),
	COALESCE(any_value(s.n), 0),
	CAST(COALESCE(SUM(length(p.text)), 0) AS BIGINT)
FROM paragraphs p
LEFT JOIN (
	SELECT chapter_no, COUNT(*) AS n FROM sentences GROUP BY chapter_no
) s ON s.chapter_no = p.chapter_no
GROUP BY p.chapter_no
ORDER BY p.chapter_no`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapter stats: %w", err)
	}
	defer rows.Close()

	var stats []ChapterStat
	for rows.Next() {
		var st ChapterStat
		if err := rows.Scan(&st.Number, &st.Title, &st.Paragraphs, &st.Sentences, &st.Characters); err != nil {
			return nil, fmt.Errorf("failed to scan chapter stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// SentenceTexts returns every sentence in reading order.
func (r *Repository) SentenceTexts(ctx context.Context) ([]string, error) {
	return r.texts(ctx, `SELECT text FROM sentences ORDER BY chapter_no, sentence_index`)
}

// ParagraphTexts returns every paragraph in reading order.
func (r *Repository) ParagraphTexts(ctx context.Context) ([]string, error) {
	return r.texts(ctx, `SELECT text FROM paragraphs ORDER BY chapter_no, para_index`)
}

// Chapters groups the paragraph table back into chapters.
func (r *Repository) Chapters(ctx context.Context) ([]ChapterText, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT chapter_no, COALESCE(chapter_title, ''), COALESCE(text, '')
FROM paragraphs
ORDER BY chapter_no, para_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	var chapters []ChapterText
	for rows.Next() {
		var (
			number int
			title  string
			text   string
		)
		if err := rows.Scan(&number, &title, &text); err != nil {
			return nil, fmt.Errorf("failed to scan paragraph: %w", err)
		}
		if n := len(chapters); n == 0 || chapters[n-1].Number != number {
			chapters = append(chapters, ChapterText{Number: number, Title: title})
		}
		last := &chapters[len(chapters)-1]
		last.Paragraphs = append(last.Paragraphs, text)
	}
	return chapters, rows.Err()
}

func (r *Repository) texts(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query texts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan text: %w", err)
		}
		if s.Valid {
			out = append(out, s.String)
		}
	}
	return out, rows.Err()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
