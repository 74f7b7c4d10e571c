package sources

import (
	"encoding/json"
	"sort"
	"strings"
)

// DefaultURNKeys are the fields a structured readlink answer may keep its URN in.
var DefaultURNKeys = []string{"urn", "textRef", "link"}

// DefaultURNPrefix marks a ctext URN.
const DefaultURNPrefix = "ctp:"

// Extraction holds the rules for finding a URN in a lookup answer.
type Extraction struct {
	Keys   []string
	Prefix string
}

func DefaultExtraction() Extraction {
	return Extraction{Keys: DefaultURNKeys, Prefix: DefaultURNPrefix}
}

// LinkResult is the answer of a readlink lookup: either a StructuredResult
// or a PlainIdentifier.
type LinkResult interface {
	Identifier(x Extraction) (string, bool)
}

// StructuredResult is a JSON object answer.
type StructuredResult map[string]any

// Identifier tries the known keys first, then any string value that looks
// like a URN. Values are scanned in key order so the pick is stable.
func (r StructuredResult) Identifier(x Extraction) (string, bool) {
	for _, key := range x.Keys {
		if s, ok := r[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}

	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := r[k].(string); ok && x.Prefix != "" && strings.HasPrefix(s, x.Prefix) {
			return s, true
		}
	}
	return "", false
}

// PlainIdentifier is a bare string answer, taken as the URN itself.
type PlainIdentifier string

func (p PlainIdentifier) Identifier(Extraction) (string, bool) {
	s := strings.TrimSpace(string(p))
	return s, s != ""
}

// ParseLinkResult decodes a readlink body. Objects become StructuredResult;
// JSON strings and non-JSON text become PlainIdentifier.
func ParseLinkResult(body []byte) LinkResult {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return PlainIdentifier(body)
	}
	switch t := v.(type) {
	case map[string]any:
		return StructuredResult(t)
	case string:
		return PlainIdentifier(t)
	default:
		return PlainIdentifier("")
	}
}
