package data

import (
	"strings"
	"testing"
)

func splitOnFullStop(s string) []string {
	var out []string
	for _, part := range strings.SplitAfter(s, "。") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func testChapter() *Chapter {
	return &Chapter{
		Number:     3,
		Title:      "第三回　姬昌解圍進妲己",
		URN:        "ctp:fengshen-yanyi/3",
		Paragraphs: []string{"甲一。甲二。", "乙一。", "丙一。丙二。丙三。"},
		SourceURL:  "https://ctext.org/fengshen-yanyi/3/zh",
	}
}

func TestParagraphRows(t *testing.T) {
	ch := testChapter()
	rows := ParagraphRows("封神演義", ch)

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.ParaIndex != i+1 {
			t.Errorf("row %d: expected para_index %d, got %d", i, i+1, row.ParaIndex)
		}
		if row.SentenceIndex != 0 {
			t.Errorf("row %d: expected sentence_index 0, got %d", i, row.SentenceIndex)
		}
		if row.Book != "封神演義" || row.ChapterNo != 3 || row.URN != ch.URN || row.SourceURL != ch.SourceURL {
			t.Errorf("row %d: chapter fields not copied: %+v", i, row)
		}
		if row.Text != ch.Paragraphs[i] {
			t.Errorf("row %d: expected text %q, got %q", i, ch.Paragraphs[i], row.Text)
		}
	}
}

func TestSentenceRowsIndexRunsAcrossChapter(t *testing.T) {
	rows := SentenceRows("封神演義", testChapter(), splitOnFullStop)

	if len(rows) != 6 {
		t.Fatalf("Expected 6 rows, got %d", len(rows))
	}

	wantPara := []int{1, 1, 2, 3, 3, 3}
	for i, row := range rows {
		if row.SentenceIndex != i+1 {
			t.Errorf("row %d: expected sentence_index %d, got %d", i, i+1, row.SentenceIndex)
		}
		if row.ParaIndex != wantPara[i] {
			t.Errorf("row %d: expected para_index %d, got %d", i, wantPara[i], row.ParaIndex)
		}
	}
	if rows[3].Text != "丙一。" {
		t.Errorf("Expected fourth sentence %q, got %q", "丙一。", rows[3].Text)
	}
}

func TestRowRecord(t *testing.T) {
	row := Row{
		Book: "封神演義", ChapterNo: 1, ChapterTitle: "第一回", ParaIndex: 2,
		SentenceIndex: 5, SourceURL: "u", URN: "ctp:x", Text: "紂王",
	}
	got := row.Record()
	want := []string{"封神演義", "1", "第一回", "2", "5", "u", "ctp:x", "紂王"}

	if len(got) != len(Header) {
		t.Fatalf("Record has %d fields, header has %d", len(got), len(Header))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %s: expected %q, got %q", Header[i], want[i], got[i])
		}
	}
}
