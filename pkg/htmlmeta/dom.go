package htmlmeta

import (
	"strings"

	"github.com/benedict2310/ngxer/pkg/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DOMExtractor parses the page into a node tree instead of scanning for
// delimiters. Content is the inner HTML of the mount element.
type DOMExtractor struct {
	Mount string
}

func (e DOMExtractor) Extract(renderedHTML string) model.Metadata {
	var m model.Metadata
	doc, err := html.Parse(strings.NewReader(renderedHTML))
	if err != nil {
		return m
	}
	mount := strings.ToLower(strings.TrimSpace(e.Mount))
	if mount == "" {
		mount = "app-root"
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			e.visit(n, mount, &m)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return m
}

func (e DOMExtractor) visit(n *html.Node, mount string, m *model.Metadata) {
	setOnce := func(f model.Field, v string) {
		if m.Get(f) == "" && v != "" {
			m.Set(f, v)
		}
	}
	switch {
	case n.DataAtom == atom.Html:
		setOnce(model.FieldLang, attr(n, "lang"))
	case n.DataAtom == atom.Title:
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			setOnce(model.FieldTitle, n.FirstChild.Data)
		}
	case n.DataAtom == atom.Link:
		switch strings.ToLower(attr(n, "rel")) {
		case "canonical":
			setOnce(model.FieldURL, attr(n, "href"))
		case "author":
			setOnce(model.FieldAuthorURL, attr(n, "href"))
		}
	case n.DataAtom == atom.Meta:
		content := attr(n, "content")
		if strings.EqualFold(attr(n, "name"), "description") {
			setOnce(model.FieldDescription, content)
		}
		switch attr(n, "itemprop") {
		case "image":
			setOnce(model.FieldImage, content)
		case "inLanguage":
			setOnce(model.FieldLocale, content)
		case "author":
			setOnce(model.FieldAuthorName, content)
		case "dateCreated":
			setOnce(model.FieldCreatedAt, content)
		case "dateModified":
			setOnce(model.FieldUpdatedAt, content)
		}
	case n.Data == mount:
		setOnce(model.FieldContent, innerHTML(n))
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&b, child); err != nil {
			return ""
		}
	}
	return b.String()
}
