package utils

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned for chapter selections that cannot be parsed.
var ErrInvalidRange = errors.New("invalid chapter range")

const (
	DefaultFirstChapter = 1
	DefaultLastChapter  = 100
)

// ParseChapterRange turns a selection like "1-20,59,72-74" into a sorted
// list of unique chapter numbers. Spans may run backwards ("3-1"). An empty
// selection means chapters 1 to 100. A single bad token rejects the whole
// selection.
func ParseChapterRange(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return Span(DefaultFirstChapter, DefaultLastChapter), nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			a, err := parseChapterNumber(from)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRange, part, err)
			}
			b, err := parseChapterNumber(to)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRange, part, err)
			}
			for _, n := range Span(a, b) {
				seen[n] = struct{}{}
			}
			continue
		}

		n, err := parseChapterNumber(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRange, part, err)
		}
		seen[n] = struct{}{}
	}

	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// Span returns a..b inclusive, stepping down when b < a.
func Span(a, b int) []int {
	step := 1
	if b < a {
		step = -1
	}
	out := make([]int, 0, abs(b-a)+1)
	for n := a; ; n += step {
		out = append(out, n)
		if n == b {
			break
		}
	}
	return out
}

// CompactRanges renders sorted numbers back into the "1-3,7" form.
func CompactRanges(nums []int) string {
	if len(nums) == 0 {
		return ""
	}
	sorted := append([]int(nil), nums...)
	sort.Ints(sorted)

	var b strings.Builder
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		if start == prev {
			b.WriteString(strconv.Itoa(start))
		} else {
			fmt.Fprintf(&b, "%d-%d", start, prev)
		}
	}
	for _, n := range sorted[1:] {
		if n == prev || n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return b.String()
}

func parseChapterNumber(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
