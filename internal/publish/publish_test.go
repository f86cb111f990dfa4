package publish

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestBuildSitemap(t *testing.T) {
	now := time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)
	content, err := BuildSitemap("https://example.com/", []string{"", "about", "/blog/a/", "about"}, now)
	if err != nil {
		t.Fatalf("BuildSitemap() error = %v", err)
	}
	if !strings.HasPrefix(string(content), xml.Header) {
		t.Fatalf("expected xml header, got %q", content)
	}
	var parsed sitemapURLSet
	if err := xml.Unmarshal(content, &parsed); err != nil {
		t.Fatalf("unmarshal sitemap: %v", err)
	}
	if parsed.XMLNS != sitemapXMLNS {
		t.Fatalf("unexpected namespace %q", parsed.XMLNS)
	}
	var locs []string
	for _, u := range parsed.URLs {
		locs = append(locs, u.Loc)
		if u.LastMod != "2026-03-04" || u.ChangeFreq != "daily" || u.Priority != "1.0" {
			t.Fatalf("unexpected url entry %#v", u)
		}
	}
	want := []string{"https://example.com/", "https://example.com/about/", "https://example.com/blog/a/"}
	if !reflect.DeepEqual(locs, want) {
		t.Fatalf("locs = %#v, want %#v", locs, want)
	}
}

func TestBuildSitemapRequiresBaseURL(t *testing.T) {
	if _, err := BuildSitemap(" ", []string{"a"}, time.Now()); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestWriteSitemap(t *testing.T) {
	out := t.TempDir()
	path, err := WriteSitemap(context.Background(), out, "https://example.com", []string{"about"}, time.Now())
	if err != nil {
		t.Fatalf("WriteSitemap() error = %v", err)
	}
	if path != filepath.Join(out, SitemapFile) {
		t.Fatalf("unexpected path %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	if !strings.Contains(string(b), "<loc>https://example.com/about/</loc>") {
		t.Fatalf("sitemap missing route: %s", b)
	}
}

func TestReportStoreAddAndSubtract(t *testing.T) {
	ctx := context.Background()
	store := NewReportStore(t.TempDir())
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	empty, err := store.Read()
	if err != nil {
		t.Fatalf("Read() on missing report error = %v", err)
	}
	if len(empty.Routes()) != 0 {
		t.Fatalf("expected empty report, got %#v", empty)
	}

	if _, err := store.Write(ctx, Lists{Index: []string{""}, Path: []string{"about"}, Database: []string{"blog/a"}}, "run-1", now); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	added, err := store.Add(ctx, Lists{Path: []string{"contact", "about"}, Database: []string{"blog/b"}}, "run-2", now)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !reflect.DeepEqual(added.PathRendering, []string{"about", "contact"}) {
		t.Fatalf("unexpected path list %#v", added.PathRendering)
	}
	if !reflect.DeepEqual(added.DatabaseRendering, []string{"blog/a", "blog/b"}) {
		t.Fatalf("unexpected database list %#v", added.DatabaseRendering)
	}

	removed, err := store.Subtract(ctx, Lists{Database: []string{"blog/a"}, Path: []string{"missing"}}, "run-3", now)
	if err != nil {
		t.Fatalf("Subtract() error = %v", err)
	}
	if !reflect.DeepEqual(removed.DatabaseRendering, []string{"blog/b"}) {
		t.Fatalf("unexpected database list after subtract %#v", removed.DatabaseRendering)
	}

	persisted, err := store.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if persisted.RunID != "run-3" || persisted.Timestamp != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected stamp %#v", persisted)
	}
	if !reflect.DeepEqual(persisted.Routes(), []string{"", "about", "contact", "blog/b"}) {
		t.Fatalf("unexpected routes %#v", persisted.Routes())
	}
}

func TestReportFileUsesEmptyArrays(t *testing.T) {
	store := NewReportStore(t.TempDir())
	if _, err := store.Write(context.Background(), Lists{}, "", time.Now()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	b, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), `"pathRendering": []`) || strings.Contains(string(b), "runId") {
		t.Fatalf("unexpected report file %s", b)
	}
}

func TestNewRunIDUniqueAndSortedByTime(t *testing.T) {
	first, err := NewRunID(time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("NewRunID(first) error = %v", err)
	}
	second, err := NewRunID(time.Unix(1700000001, 0))
	if err != nil {
		t.Fatalf("NewRunID(second) error = %v", err)
	}
	if first == second {
		t.Fatalf("expected unique IDs, got identical %q", first)
	}
	ids := []string{second, first}
	sort.Strings(ids)
	if ids[0] != first || ids[1] != second {
		t.Fatalf("expected lexicographic time order, got %#v", ids)
	}
}
