package data

import "strconv"

// Chapter is one fetched chapter, held in memory only while it is turned into rows.
type Chapter struct {
	Number     int
	Title      string
	URN        string
	Paragraphs []string
	SourceURL  string
}

// Row is one persisted record. Paragraph rows carry SentenceIndex 0.
type Row struct {
	Book          string
	ChapterNo     int
	ChapterTitle  string
	ParaIndex     int
	SentenceIndex int
	SourceURL     string
	URN           string
	Text          string
}

// Header is the column layout shared by the paragraph and sentence tables.
var Header = []string{
	"book", "chapter_no", "chapter_title", "para_index",
	"sentence_index", "source_url", "urn", "text",
}

// Record renders the row in Header order.
func (r Row) Record() []string {
	return []string{
		r.Book,
		strconv.Itoa(r.ChapterNo),
		r.ChapterTitle,
		strconv.Itoa(r.ParaIndex),
		strconv.Itoa(r.SentenceIndex),
		r.SourceURL,
		r.URN,
		r.Text,
	}
}

// ChapterText is a chapter read back from the corpus tables.
type ChapterText struct {
	Number     int
	Title      string
	Paragraphs []string
}

// ChapterStat summarizes one chapter of the corpus tables.
type ChapterStat struct {
	Number     int
	Title      string
	Paragraphs int
	Sentences  int
	Characters int
}
