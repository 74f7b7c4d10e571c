// Package text holds the pure text helpers used when turning chapters into rows.
package text

import (
	"strings"
	"unicode/utf8"
)

// DefaultTerminators are the marks that close a sentence, in both Chinese
// and Western forms.
const DefaultTerminators = "。！？!?；;"

// Splitter cuts paragraphs into sentences after any terminator rune.
type Splitter struct {
	terminators map[rune]struct{}
}

func NewSplitter(terminators string) *Splitter {
	if terminators == "" {
		terminators = DefaultTerminators
	}
	set := make(map[rune]struct{}, utf8.RuneCountInString(terminators))
	for _, r := range terminators {
		set[r] = struct{}{}
	}
	return &Splitter{terminators: set}
}

// Split returns the trimmed, non-empty sentences of s. Each terminator stays
// at the end of the sentence it closes.
func (s *Splitter) Split(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if _, ok := s.terminators[r]; !ok {
			continue
		}
		end := i + utf8.RuneLen(r)
		out = appendTrimmed(out, text[start:end])
		start = end
	}
	return appendTrimmed(out, text[start:])
}

func appendTrimmed(out []string, fragment string) []string {
	if fragment = strings.TrimSpace(fragment); fragment != "" {
		out = append(out, fragment)
	}
	return out
}
