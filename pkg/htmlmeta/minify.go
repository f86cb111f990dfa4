package htmlmeta

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

const htmlMimeType = "text/html"

// Minifiers keep quotes, end tags and document tags so the delimiter pairs
// still match after minification.
var (
	pageMinifier    = newMinifier(false)
	contentMinifier = newMinifier(true)
)

func newMinifier(dropComments bool) *minify.M {
	m := minify.New()
	m.Add(htmlMimeType, &html.Minifier{
		KeepComments:        !dropComments,
		KeepDefaultAttrVals: true,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
	})
	return m
}

// Minify collapses a full HTML document.
func Minify(raw string) (string, error) {
	out, err := pageMinifier.String(htmlMimeType, raw)
	if err != nil {
		return "", fmt.Errorf("minify html: %w", err)
	}
	return out, nil
}

// MinifyFragment collapses a content fragment and drops its comments.
func MinifyFragment(raw string) (string, error) {
	out, err := contentMinifier.String(htmlMimeType, raw)
	if err != nil {
		return "", fmt.Errorf("minify html fragment: %w", err)
	}
	return out, nil
}

// minifyOrRaw never fails: extraction degrades to the raw input.
func minifyOrRaw(raw string) string {
	out, err := Minify(raw)
	if err != nil {
		return raw
	}
	return out
}
