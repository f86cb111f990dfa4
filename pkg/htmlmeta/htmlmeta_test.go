package htmlmeta

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/benedict2310/ngxer/pkg/model"
)

const sampleIndex = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Acme App</title>
  <meta name="description" content="Acme builds things">
  <link rel="canonical" href="https://acme.test/">
  <meta itemprop="image" content="https://acme.test/cover.png">
  <meta itemprop="inLanguage" content="en-US">
  <meta itemprop="author" content="Acme Team">
  <link rel="author" href="https://acme.test/team">
  <link rel="stylesheet" href="styles.css">
  <link rel="stylesheet" href="https://cdn.test/reset.css">
</head>
<body>
  <app-root></app-root>
  <script src="runtime.js"></script>
  <script src="main.js"></script>
  <script src="/abs/vendor.js"></script>
</body>
</html>
`

func TestBetween(t *testing.T) {
	text := `<title></title><title>Second</title>`
	got, ok := Between(text, "<title>", "</title>")
	if !ok || got != "Second" {
		t.Fatalf("Between() = %q, %v; want Second", got, ok)
	}
	if _, ok := Between("<title>x", "<title>", "</title>"); ok {
		t.Fatalf("expected missing end delimiter to report not found")
	}
	if _, ok := Between("nothing", "<a>", "</a>"); ok {
		t.Fatalf("expected missing start delimiter to report not found")
	}
}

func TestAllBetweenFilter(t *testing.T) {
	text := `<script src="a.js"></script><script src="/b.js"></script><script src="c.js"></script>`
	got := AllBetween(text, ScriptPair.Start, ScriptPair.End, isBundleRef)
	if !reflect.DeepEqual(got, []string{"a.js", "c.js"}) {
		t.Fatalf("AllBetween() = %#v", got)
	}
}

func TestPairFrom(t *testing.T) {
	p, err := PairFrom([]string{"<main>", "</main>"})
	if err != nil || p.Start != "<main>" || p.End != "</main>" {
		t.Fatalf("PairFrom() = %#v, %v", p, err)
	}
	for _, bad := range [][]string{nil, {"a"}, {"a", ""}, {"a", "b", "c"}} {
		if _, err := PairFrom(bad); err == nil {
			t.Fatalf("PairFrom(%q) expected error", bad)
		}
	}
}

func TestParseTemplateExtractsDefaults(t *testing.T) {
	tpl, err := ParseTemplate(sampleIndex, Pair{})
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	want := model.Metadata{
		URL:         "https://acme.test/",
		Title:       "Acme App",
		Description: "Acme builds things",
		Image:       "https://acme.test/cover.png",
		Locale:      "en-US",
		Lang:        "en",
		AuthorName:  "Acme Team",
		AuthorURL:   "https://acme.test/team",
	}
	if tpl.Defaults != want {
		t.Fatalf("Defaults = %#v, want %#v", tpl.Defaults, want)
	}
	if !reflect.DeepEqual(tpl.Scripts, []string{"runtime.js", "main.js"}) {
		t.Fatalf("Scripts = %#v", tpl.Scripts)
	}
	if !reflect.DeepEqual(tpl.Styles, []string{"styles.css"}) {
		t.Fatalf("Styles = %#v", tpl.Styles)
	}
	if strings.Contains(tpl.Full, "\n  <") {
		t.Fatalf("expected minified template, got %q", tpl.Full)
	}
	if !strings.Contains(tpl.Full, "<app-root></app-root>") {
		t.Fatalf("expected mount element to survive minification, got %q", tpl.Full)
	}
}

func TestLoadTemplatePreservesOriginal(t *testing.T) {
	out := t.TempDir()
	if err := os.WriteFile(filepath.Join(out, IndexFile), []byte(sampleIndex), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if _, err := LoadTemplate(out, Pair{}); err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, OriginalIndexFile)); err != nil {
		t.Fatalf("expected %s to be created: %v", OriginalIndexFile, err)
	}

	// A composed index must not leak into the template on later runs.
	if err := os.WriteFile(filepath.Join(out, IndexFile), []byte("<html><title>Changed</title></html>"), 0o644); err != nil {
		t.Fatalf("overwrite index: %v", err)
	}
	tpl, err := LoadTemplate(out, Pair{})
	if err != nil {
		t.Fatalf("LoadTemplate() second error = %v", err)
	}
	if tpl.Defaults.Title != "Acme App" {
		t.Fatalf("expected original title, got %q", tpl.Defaults.Title)
	}
}

func TestLoadTemplateMissingIndex(t *testing.T) {
	if _, err := LoadTemplate(t.TempDir(), Pair{}); err == nil {
		t.Fatalf("expected error when index.html is missing")
	}
}

func TestTextExtractorUsesCustomContentPair(t *testing.T) {
	page := `<html lang="vi"><head><title>Bai viet</title></head><body><app-root><div id="page"><p>Xin chao</p></div><footer>f</footer></app-root></body></html>`
	e, err := NewExtractor("", Pair{Start: `<div id="page">`, End: `</div>`}, "app-root")
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	m := e.Extract(page)
	if m.Title != "Bai viet" || m.Lang != "vi" {
		t.Fatalf("unexpected metadata %#v", m)
	}
	if m.Content != "<p>Xin chao</p>" {
		t.Fatalf("Content = %q", m.Content)
	}
	if m.Description != "" || m.URL != "" {
		t.Fatalf("expected missing fields to stay blank, got %#v", m)
	}
}

func TestDOMExtractor(t *testing.T) {
	page := `<html lang="fr"><head><title>Bonjour</title>
<meta content="Une page" name="description">
<link href="https://acme.test/fr/" rel="canonical">
<meta itemprop="dateModified" content="2024-03-01"></head>
<body><app-root><h1>Salut</h1><p>texte</p></app-root></body></html>`
	e, err := NewExtractor(ExtractorDOM, Pair{}, "app-root")
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	m := e.Extract(page)
	want := model.Metadata{
		URL:         "https://acme.test/fr/",
		Title:       "Bonjour",
		Description: "Une page",
		Lang:        "fr",
		UpdatedAt:   "2024-03-01",
		Content:     "<h1>Salut</h1><p>texte</p>",
	}
	if m != want {
		t.Fatalf("Extract() = %#v, want %#v", m, want)
	}
}

func TestNewExtractorUnknownKind(t *testing.T) {
	if _, err := NewExtractor("xpath", Pair{}, ""); err == nil {
		t.Fatalf("expected unknown extractor error")
	}
}
