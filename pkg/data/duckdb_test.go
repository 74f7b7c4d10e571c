package data

import (
	"context"
	"path/filepath"
	"testing"
)

func writeCorpus(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	paraPath := filepath.Join(dir, "fengshen_paragraphs.csv")
	sentPath := filepath.Join(dir, "fengshen_sentences.csv")

	chapters := []*Chapter{
		{Number: 1, Title: "第一回", URN: "ctp:1", Paragraphs: []string{"紂王女媧宮進香。", "女媧娘娘降福。"}},
		{Number: 2, Title: "第二回", URN: "ctp:2", Paragraphs: []string{"冀州侯蘇護反商。崇侯虎征伐。"}},
	}
	paraSink, sentSink := NewCSVSink(paraPath), NewCSVSink(sentPath)
	for _, ch := range chapters {
		if err := paraSink.Append(ParagraphRows("封神演義", ch)); err != nil {
			t.Fatalf("Failed to append paragraphs: %v", err)
		}
		if err := sentSink.Append(SentenceRows("封神演義", ch, splitOnFullStop)); err != nil {
			t.Fatalf("Failed to append sentences: %v", err)
		}
	}
	// Chapter 1 written twice, as after a crash between append and manifest save.
	if err := paraSink.Append(ParagraphRows("封神演義", chapters[0])); err != nil {
		t.Fatalf("Failed to append paragraphs: %v", err)
	}
	return paraPath, sentPath
}

func TestInitDuckDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "corpus.db")

	db, err := InitDuckDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize DB: %v", err)
	}
	defer db.Close()

	var tableCount int
	err = db.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_name IN ('paragraphs', 'sentences')`).Scan(&tableCount)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if tableCount != 2 {
		t.Errorf("Expected 2 tables, got %d", tableCount)
	}
}

func TestOpenCorpus(t *testing.T) {
	ctx := context.Background()
	paraPath, sentPath := writeCorpus(t)

	repo, err := OpenCorpus(ctx, paraPath, sentPath)
	if err != nil {
		t.Fatalf("Failed to open corpus: %v", err)
	}
	defer repo.Close()

	paragraphs, err := repo.ParagraphTexts(ctx)
	if err != nil {
		t.Fatalf("Failed to read paragraphs: %v", err)
	}
	if len(paragraphs) != 3 {
		t.Errorf("Expected 3 distinct paragraphs, got %d", len(paragraphs))
	}

	sentences, err := repo.SentenceTexts(ctx)
	if err != nil {
		t.Fatalf("Failed to read sentences: %v", err)
	}
	want := []string{"紂王女媧宮進香。", "女媧娘娘降福。", "冀州侯蘇護反商。", "崇侯虎征伐。"}
	if len(sentences) != len(want) {
		t.Fatalf("Expected %d sentences, got %d: %v", len(want), len(sentences), sentences)
	}
	for i := range want {
		if sentences[i] != want[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, want[i], sentences[i])
		}
	}
}

func TestOpenCorpusMissingFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := OpenCorpus(ctx, filepath.Join(dir, "p.csv"), filepath.Join(dir, "s.csv"))
	if err != nil {
		t.Fatalf("Failed to open empty corpus: %v", err)
	}
	defer repo.Close()

	stats, err := repo.ChapterStats(ctx)
	if err != nil {
		t.Fatalf("Failed to query stats: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("Expected no stats, got %d", len(stats))
	}
}

func TestChapterStats(t *testing.T) {
	ctx := context.Background()
	paraPath, sentPath := writeCorpus(t)

	repo, err := OpenCorpus(ctx, paraPath, sentPath)
	if err != nil {
		t.Fatalf("Failed to open corpus: %v", err)
	}
	defer repo.Close()

	stats, err := repo.ChapterStats(ctx)
	if err != nil {
		t.Fatalf("Failed to query stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(stats))
	}

	first := stats[0]
	if first.Number != 1 || first.Title != "第一回" {
		t.Errorf("Unexpected first chapter: %+v", first)
	}
	if first.Paragraphs != 2 || first.Sentences != 2 {
		t.Errorf("Expected 2 paragraphs and 2 sentences, got %+v", first)
	}
	if first.Characters != 15 {
		t.Errorf("Expected 15 characters, got %d", first.Characters)
	}
	if stats[1].Sentences != 2 {
		t.Errorf("Expected 2 sentences in chapter 2, got %d", stats[1].Sentences)
	}
}

func TestChapters(t *testing.T) {
	ctx := context.Background()
	paraPath, sentPath := writeCorpus(t)

	repo, err := OpenCorpus(ctx, paraPath, sentPath)
	if err != nil {
		t.Fatalf("Failed to open corpus: %v", err)
	}
	defer repo.Close()

	chapters, err := repo.Chapters(ctx)
	if err != nil {
		t.Fatalf("Failed to read chapters: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(chapters))
	}
	if len(chapters[0].Paragraphs) != 2 || chapters[0].Paragraphs[1] != "女媧娘娘降福。" {
		t.Errorf("Unexpected paragraphs: %v", chapters[0].Paragraphs)
	}
}
