package analysis

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

//go:embed places.txt
var defaultPlaces string

// Place levels by rank.
const (
	LevelPrimary   = "primary"
	LevelImportant = "important"
	LevelMinor     = "minor"
)

var PlaceHeader = []string{"rank", "place", "count", "frequency_pct", "cumulative_pct", "level"}

// Dictionary is a set of place names matched longest first.
type Dictionary struct {
	words  map[string]struct{}
	maxLen int
}

// ParseDictionary reads one entry per line as "name [freq] [tag]". Only the
// name is used. Blank lines and lines starting with # are skipped.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{words: make(map[string]struct{})}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d.Add(strings.Fields(line)[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("dictionary has no entries")
	}
	return d, nil
}

// DefaultDictionary holds the places of 封神演義.
func DefaultDictionary() *Dictionary {
	d, err := ParseDictionary(strings.NewReader(defaultPlaces))
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dictionary) Add(word string) {
	d.words[word] = struct{}{}
	if n := utf8.RuneCountInString(word); n > d.maxLen {
		d.maxLen = n
	}
}

func (d *Dictionary) Len() int {
	return len(d.words)
}

// Match scans text left to right and returns every dictionary word found,
// always taking the longest entry that starts at the current position.
func (d *Dictionary) Match(text string) []string {
	runes := []rune(text)
	var found []string
	for i := 0; i < len(runes); {
		step := 1
		for n := min(d.maxLen, len(runes)-i); n > 1; n-- {
			w := string(runes[i : i+n])
			if _, ok := d.words[w]; ok {
				found = append(found, w)
				step = n
				break
			}
		}
		if step == 1 {
			if _, ok := d.words[string(runes[i])]; ok {
				found = append(found, string(runes[i]))
			}
		}
		i += step
	}
	return found
}

// HanOnly drops everything outside the CJK Unified Ideographs block.
func HanOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PlaceStat is one row of the place frequency table.
type PlaceStat struct {
	Rank       int
	Place      string
	Count      int
	Share      float64 // percent of all place mentions
	Cumulative float64 // percent, running
	Level      string
}

func (s PlaceStat) Record() []string {
	return []string{
		strconv.Itoa(s.Rank),
		s.Place,
		strconv.Itoa(s.Count),
		strconv.FormatFloat(s.Share, 'f', 2, 64),
		strconv.FormatFloat(s.Cumulative, 'f', 2, 64),
		s.Level,
	}
}

// CountPlaces counts dictionary places across texts and ranks them by count,
// ties broken by name.
func CountPlaces(d *Dictionary, texts []string) []PlaceStat {
	counts := make(map[string]int)
	total := 0
	for _, w := range d.Match(HanOnly(strings.Join(texts, "\n"))) {
		counts[w]++
		total++
	}

	stats := make([]PlaceStat, 0, len(counts))
	for place, count := range counts {
		stats = append(stats, PlaceStat{Place: place, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Place < stats[j].Place
	})

	running := 0
	for i := range stats {
		s := &stats[i]
		running += s.Count
		s.Rank = i + 1
		s.Share = percent(s.Count, total)
		s.Cumulative = percent(running, total)
		s.Level = level(s.Rank)
	}
	return stats
}

func PlaceRecords(stats []PlaceStat) [][]string {
	records := make([][]string, 0, len(stats))
	for _, s := range stats {
		records = append(records, s.Record())
	}
	return records
}

func level(rank int) string {
	switch {
	case rank <= 10:
		return LevelPrimary
	case rank <= 20:
		return LevelImportant
	default:
		return LevelMinor
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
