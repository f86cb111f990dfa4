package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/pkg/model"
	"github.com/benedict2310/ngxer/pkg/route"
)

var testDefaults = model.Metadata{
	URL:         "https://acme.test/",
	Title:       "Acme",
	Description: "Default description",
	Image:       "https://acme.test/cover.png",
	Locale:      "en-US",
	Lang:        "en",
	Content:     "Loading",
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	rc := filepath.Join(t.TempDir(), "ngxer")
	return New(rc, Options{
		BaseURL:  "https://acme.test/",
		Defaults: testDefaults,
		Renders: []config.DatabaseRender{
			{Collection: "posts", Path: "blog/:id", Locale: "en-US"},
			{Collection: "posts", Path: "vi/blog/:id", Locale: "vi-VN"},
		},
	}), rc
}

func TestKeyIsPureFunctionOfRoute(t *testing.T) {
	if got := Key(route.PathRoute("/blog/hello/")); got != "path_cached/blog/hello.json" {
		t.Fatalf("Key(path) = %q", got)
	}
	if got := Key(route.ItemRoute("posts", "abc123")); got != "database_cached/posts/abc123.json" {
		t.Fatalf("Key(item) = %q", got)
	}
}

func TestPathRoundTrip(t *testing.T) {
	s, rc := newTestStore(t)
	r := route.PathRoute("about")
	full := model.Metadata{
		URL:         "https://acme.test/about/",
		Title:       "About",
		Description: "About us",
		Image:       "https://acme.test/about.png",
		Locale:      "en-GB",
		Lang:        "en",
		AuthorName:  "Jane",
		AuthorURL:   "https://acme.test/jane",
		CreatedAt:   "2024-01-01",
		UpdatedAt:   "2024-02-01",
		Content:     `<p class="lead">About</p>`,
	}
	saved, err := s.Save(context.Background(), r, full.ToMap())
	if err != nil || saved == nil {
		t.Fatalf("Save() = %v, %v", saved, err)
	}
	if _, err := os.Stat(filepath.Join(rc, "path_cached", "about.json")); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}
	read, err := s.Read(r)
	if err != nil || read == nil {
		t.Fatalf("Read() = %v, %v", read, err)
	}
	if read.Metadata != full {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", read.Metadata, full)
	}
	raw, _ := os.ReadFile(filepath.Join(rc, "path_cached", "about.json"))
	if !strings.Contains(string(raw), `<p class=\"lead\">About</p>`) || !strings.Contains(string(raw), "\n  ") {
		t.Fatalf("expected pretty JSON without HTML escaping:\n%s", raw)
	}
}

func TestPathSaveNormalizes(t *testing.T) {
	s, _ := newTestStore(t)
	saved, err := s.Save(context.Background(), route.PathRoute("contact"), map[string]any{
		"url":   "https://acme.test/contact",
		"title": 42,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	m := saved.Metadata
	if m.URL != "https://acme.test/contact/" {
		t.Fatalf("expected trailing slash, got %q", m.URL)
	}
	if m.Title != "Acme" || m.Description != "Default description" || m.Content != "Loading" {
		t.Fatalf("expected defaults for missing or non-string fields, got %#v", m)
	}
}

func TestReadMissingReturnsNil(t *testing.T) {
	s, _ := newTestStore(t)
	entry, err := s.Read(route.PathRoute("nope"))
	if err != nil || entry != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", entry, err)
	}
}

func TestItemSaveDerivesMetadata(t *testing.T) {
	s, rc := newTestStore(t)
	doc := map[string]any{
		"id":      "xin-chao",
		"title":   `Say "hi"`,
		"excerpt": "Short",
		"image":   map[string]any{"url": "https://cdn.test/x.png"},
		"locale":  "vi-VN",
		"content": "<p>Body</p>",
	}
	r := route.ItemRoute("posts", "xin-chao")
	saved, err := s.Save(context.Background(), r, doc)
	if err != nil || saved == nil {
		t.Fatalf("Save() = %v, %v", saved, err)
	}
	want := model.Metadata{
		URL:         "https://acme.test/vi/blog/xin-chao/",
		Title:       "Say &quot;hi&quot;",
		Description: "Short",
		Image:       "https://cdn.test/x.png",
		Locale:      "vi-VN",
		Lang:        "en",
		Content:     "<p>Body</p>",
	}
	if saved.Metadata != want {
		t.Fatalf("Metadata = %#v, want %#v", saved.Metadata, want)
	}
	if _, err := os.Stat(filepath.Join(rc, "database_cached", "posts", "xin-chao.json")); err != nil {
		t.Fatalf("expected raw document cached: %v", err)
	}
	read, err := s.Read(r)
	if err != nil || read == nil || read.Metadata != want {
		t.Fatalf("Read() = %#v, %v", read, err)
	}
	if read.Raw["excerpt"] != "Short" {
		t.Fatalf("expected raw payload kept, got %#v", read.Raw)
	}
	if ok, _ := s.CollectionCached("posts"); !ok {
		t.Fatalf("expected CollectionCached(posts) after save")
	}
}

func TestDisallowedCollection(t *testing.T) {
	s, rc := newTestStore(t)
	r := route.ItemRoute("secrets", "1")
	entry, err := s.Save(context.Background(), r, map[string]any{"id": "1"})
	if err != nil || entry != nil {
		t.Fatalf("Save() = %v, %v; want nil, nil", entry, err)
	}
	if _, err := os.Stat(filepath.Join(rc, "database_cached", "secrets")); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written, stat err = %v", err)
	}
	if entry, err := s.Read(r); err != nil || entry != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", entry, err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	r := route.ItemRoute("posts", "abc123")
	if _, err := s.Save(context.Background(), r, map[string]any{"id": "abc123"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Remove(r); err != nil {
			t.Fatalf("Remove() #%d error = %v", i, err)
		}
	}
	if ok, _ := s.Exists(r); ok {
		t.Fatalf("expected entry removed")
	}
}

func TestDeriveItemMetadataFallbacks(t *testing.T) {
	render := config.DatabaseRender{Collection: "posts", Path: "/news/:id/", Locale: "fr-FR"}
	m := DeriveItemMetadata(render, "https://acme.test", "n1", model.Document{"description": "Desc", "excerpt": "Ignored", "createdAt": float64(1700000000000)}, testDefaults)
	if m.URL != "https://acme.test/news/n1/" {
		t.Fatalf("URL = %q", m.URL)
	}
	if m.Description != "Desc" || m.Title != "Acme" || m.Image != testDefaults.Image {
		t.Fatalf("unexpected fallbacks %#v", m)
	}
	if m.Locale != "fr-FR" {
		t.Fatalf("expected render locale fallback, got %q", m.Locale)
	}
	if m.CreatedAt != "1700000000000" || m.UpdatedAt != "1700000000000" {
		t.Fatalf("unexpected dates %q %q", m.CreatedAt, m.UpdatedAt)
	}
}
