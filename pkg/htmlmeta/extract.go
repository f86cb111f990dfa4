package htmlmeta

import (
	"fmt"
	"strings"

	"github.com/benedict2310/ngxer/pkg/model"
)

const (
	ExtractorText = "text"
	ExtractorDOM  = "dom"
)

// Extractor pulls a metadata record out of a rendered page. Missing values
// are left blank; extraction never fails.
type Extractor interface {
	Extract(renderedHTML string) model.Metadata
}

// NewExtractor returns the extractor named by kind ("text" when empty).
func NewExtractor(kind string, content Pair, mount string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", ExtractorText:
		return TextExtractor{Pairs: DefaultPairs(content)}, nil
	case ExtractorDOM:
		return DOMExtractor{Mount: mount}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q (expected text or dom)", kind)
	}
}

// TextExtractor locates values between delimiter pairs in minified HTML.
type TextExtractor struct {
	Pairs map[model.Field]Pair
}

func (e TextExtractor) Extract(renderedHTML string) model.Metadata {
	pairs := e.Pairs
	if pairs == nil {
		pairs = DefaultPairs(Pair{})
	}
	return extractFields(minifyOrRaw(renderedHTML), pairs)
}

func extractFields(minified string, pairs map[model.Field]Pair) model.Metadata {
	var m model.Metadata
	for _, f := range model.Fields {
		p, ok := pairs[f]
		if !ok {
			continue
		}
		if v, found := Between(minified, p.Start, p.End); found {
			m.Set(f, v)
		}
	}
	return m
}
