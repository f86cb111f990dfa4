package htmlmeta

import (
	"fmt"
	"strings"

	"github.com/benedict2310/ngxer/pkg/model"
)

// Pair is a start/end delimiter pair locating a value in minified HTML.
type Pair struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Valid reports whether both delimiters are set.
func (p Pair) Valid() bool {
	return p.Start != "" && p.End != ""
}

// PairFrom converts a two-element slice (the config file form) into a Pair.
func PairFrom(values []string) (Pair, error) {
	if len(values) != 2 || values[0] == "" || values[1] == "" {
		return Pair{}, fmt.Errorf("delimiter pair must have exactly two non-empty values, got %q", values)
	}
	return Pair{Start: values[0], End: values[1]}, nil
}

var (
	ScriptPair       = Pair{Start: `<script src="`, End: `"`}
	StylePair        = Pair{Start: `<link rel="stylesheet" href="`, End: `"`}
	DefaultContent   = Pair{Start: `</router-outlet>`, End: `</main>`}
	defaultFieldPair = map[model.Field]Pair{
		model.FieldURL:         {Start: `<link rel="canonical" href="`, End: `"`},
		model.FieldTitle:       {Start: `<title>`, End: `</title>`},
		model.FieldDescription: {Start: `<meta name="description" content="`, End: `"`},
		model.FieldImage:       {Start: `<meta itemprop="image" content="`, End: `"`},
		model.FieldLocale:      {Start: `<meta itemprop="inLanguage" content="`, End: `"`},
		model.FieldLang:        {Start: `<html lang="`, End: `"`},
		model.FieldAuthorName:  {Start: `<meta itemprop="author" content="`, End: `"`},
		model.FieldAuthorURL:   {Start: `<link rel="author" href="`, End: `"`},
		model.FieldCreatedAt:   {Start: `<meta itemprop="dateCreated" content="`, End: `"`},
		model.FieldUpdatedAt:   {Start: `<meta itemprop="dateModified" content="`, End: `"`},
	}
)

// DefaultPairs returns the delimiter pair for every field. content, when
// valid, overrides the default content pair.
func DefaultPairs(content Pair) map[model.Field]Pair {
	out := make(map[model.Field]Pair, len(defaultFieldPair)+1)
	for f, p := range defaultFieldPair {
		out[f] = p
	}
	if content.Valid() {
		out[model.FieldContent] = content
	} else {
		out[model.FieldContent] = DefaultContent
	}
	return out
}

// Between returns the first non-empty value enclosed by start and end.
func Between(text, start, end string) (string, bool) {
	offset := 0
	for {
		i := strings.Index(text[offset:], start)
		if i < 0 {
			return "", false
		}
		from := offset + i + len(start)
		j := strings.Index(text[from:], end)
		if j < 0 {
			return "", false
		}
		if j > 0 {
			return text[from : from+j], true
		}
		offset = from
	}
}

// AllBetween returns every non-empty value enclosed by start and end, in
// document order, keeping those accepted by filter (all when nil).
func AllBetween(text, start, end string, filter func(string) bool) []string {
	var out []string
	offset := 0
	for offset < len(text) {
		i := strings.Index(text[offset:], start)
		if i < 0 {
			break
		}
		from := offset + i + len(start)
		j := strings.Index(text[from:], end)
		if j < 0 {
			break
		}
		value := text[from : from+j]
		offset = from + j + len(end)
		if value == "" {
			continue
		}
		if filter == nil || filter(value) {
			out = append(out, value)
		}
	}
	return out
}

// isBundleRef keeps only relative bundle references, which need rewriting
// when a page is served from a nested path.
func isBundleRef(ref string) bool {
	return !strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "http:") &&
		!strings.HasPrefix(ref, "https:") && !strings.HasPrefix(ref, "data:")
}
