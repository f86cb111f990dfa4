package docsource

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/benedict2310/ngxer/pkg/model"
)

// DefaultMarkdownField holds Markdown source in exported documents.
const DefaultMarkdownField = "markdown"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// ContentFromMarkdown fills the content of documents that have none from
// their Markdown field, so they render without a browser. It returns the
// number of documents converted.
func ContentFromMarkdown(docs []model.Document, field string) (int, error) {
	if field == "" {
		return 0, nil
	}
	converted := 0
	for _, doc := range docs {
		if doc.String(string(model.FieldContent)) != "" {
			continue
		}
		src := doc.String(field)
		if strings.TrimSpace(src) == "" {
			continue
		}
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(src), &buf); err != nil {
			return converted, fmt.Errorf("convert markdown of %s: %w", doc.ID(), err)
		}
		doc[string(model.FieldContent)] = strings.TrimSpace(buf.String())
		converted++
	}
	return converted, nil
}
