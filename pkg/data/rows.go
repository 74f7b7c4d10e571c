package data

// ParagraphRows emits one row per paragraph, numbered from 1.
func ParagraphRows(book string, ch *Chapter) []Row {
	rows := make([]Row, 0, len(ch.Paragraphs))
	for i, para := range ch.Paragraphs {
		rows = append(rows, newRow(book, ch, i+1, 0, para))
	}
	return rows
}

// SentenceRows emits one row per sentence. The sentence index runs across
// the whole chapter starting at 1; the paragraph index points back at the
// paragraph the sentence came from.
func SentenceRows(book string, ch *Chapter, split func(string) []string) []Row {
	var rows []Row
	sentence := 1
	for i, para := range ch.Paragraphs {
		for _, s := range split(para) {
			rows = append(rows, newRow(book, ch, i+1, sentence, s))
			sentence++
		}
	}
	return rows
}

func newRow(book string, ch *Chapter, para, sentence int, text string) Row {
	return Row{
		Book:          book,
		ChapterNo:     ch.Number,
		ChapterTitle:  ch.Title,
		ParaIndex:     para,
		SentenceIndex: sentence,
		SourceURL:     ch.SourceURL,
		URN:           ch.URN,
		Text:          text,
	}
}
