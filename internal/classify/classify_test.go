package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/benedict2310/ngxer/internal/cache"
	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/pkg/route"
)

type fixture struct {
	out   string
	store *cache.Store
	c     *Classifier
}

func newFixture(t *testing.T, renders []config.DatabaseRender) fixture {
	t.Helper()
	root := t.TempDir()
	out := filepath.Join(root, "docs")
	cfg := config.Config{
		Out:            "docs",
		URL:            "https://acme.test",
		PathRender:     []string{"about", "contact", "pricing"},
		DatabaseRender: renders,
	}
	store := cache.New(filepath.Join(root, "ngxer"), cache.Options{BaseURL: cfg.URL, Renders: renders})
	return fixture{out: out, store: store, c: New(out, store, cfg)}
}

func writePage(t *testing.T, out, path string) {
	t.Helper()
	dir := filepath.Join(out, filepath.FromSlash(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexFile), []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
}

func keys(targets []Target) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.Route.Key())
	}
	return out
}

func TestClassifyThreeTiers(t *testing.T) {
	f := newFixture(t, nil)
	writePage(t, f.out, "about")
	if _, err := f.store.Save(context.Background(), route.PathRoute("contact"), map[string]any{"title": "Contact"}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	// A page on disk wins over a cache entry.
	if _, err := f.store.Save(context.Background(), route.PathRoute("about"), map[string]any{"title": "About"}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	in := f.c.SortInputs([]string{"/about/", "contact", "pricing", "about"}, false)
	if len(in.Invalid) != 0 || len(in.Paths) != 3 {
		t.Fatalf("unexpected inputs %#v", in)
	}
	res := f.c.Classify(context.Background(), PathTargets(in.Paths))
	if !reflect.DeepEqual(keys(res.Existing), []string{"about"}) ||
		!reflect.DeepEqual(keys(res.Cached), []string{"contact"}) ||
		!reflect.DeepEqual(keys(res.Live), []string{"pricing"}) {
		t.Fatalf("unexpected partition %#v", res)
	}
}

func TestClassifyIsIdempotentAndDisjoint(t *testing.T) {
	f := newFixture(t, []config.DatabaseRender{{Collection: "posts", Path: "blog/:id"}})
	writePage(t, f.out, "blog/a")
	if _, err := f.store.Save(context.Background(), route.ItemRoute("posts", "b"), map[string]any{"id": "b"}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	in := f.c.SortInputs([]string{"about", "posts:a", "posts:b", "posts:c", "contact"}, false)
	targets := append(PathTargets(in.Paths), f.c.ItemTargets(in.Items)...)

	first := f.c.Classify(context.Background(), targets)
	second := f.c.Classify(context.Background(), targets)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification not idempotent:\n%#v\n%#v", first, second)
	}
	if first.Len() != len(targets) {
		t.Fatalf("expected %d classified targets, got %d", len(targets), first.Len())
	}
	seen := map[string]int{}
	for _, list := range [][]Target{first.Existing, first.Cached, first.Live} {
		for _, k := range keys(list) {
			seen[k]++
		}
	}
	for k, n := range seen {
		if n != 1 {
			t.Fatalf("route %s appears in %d buckets", k, n)
		}
	}
	if !reflect.DeepEqual(keys(first.Existing), []string{"posts:a"}) || !reflect.DeepEqual(keys(first.Cached), []string{"posts:b"}) {
		t.Fatalf("unexpected item partition %#v", first)
	}
}

func TestSortInputsInvalid(t *testing.T) {
	f := newFixture(t, []config.DatabaseRender{{Collection: "posts", Path: "blog/:id"}})

	in := f.c.SortInputs([]string{"unknown", "secrets:1", "posts:", "posts:x"}, false)
	if len(in.Items) != 1 || in.Items[0].Key() != "posts:x" {
		t.Fatalf("unexpected items %#v", in.Items)
	}
	if len(in.Invalid) != 3 {
		t.Fatalf("expected 3 invalid inputs, got %#v", in.Invalid)
	}
	var disallowed bool
	for _, inv := range in.Invalid {
		if errors.Is(inv.Err, cache.ErrDisallowedCollection) {
			disallowed = true
		}
	}
	if !disallowed {
		t.Fatalf("expected disallowed collection error in %#v", in.Invalid)
	}

	in = f.c.SortInputs([]string{"unknown"}, true)
	if len(in.Added) != 1 || len(in.Invalid) != 0 {
		t.Fatalf("expected new path to be added, got %#v", in)
	}
}

func TestResolveItemPathProbesInConfigOrder(t *testing.T) {
	f := newFixture(t, []config.DatabaseRender{
		{Collection: "posts", Path: "en/blog/:id", Locale: "en-US"},
		{Collection: "posts", Path: "vi/blog/:id", Locale: "vi-VN"},
	})
	if _, _, ok := f.c.ResolveItemPath("posts", "hello"); ok {
		t.Fatalf("expected unresolved item when no candidate exists")
	}
	writePage(t, f.out, "vi/blog/hello")
	render, path, ok := f.c.ResolveItemPath("posts", "hello")
	if !ok || path != "vi/blog/hello" || render.Locale != "vi-VN" {
		t.Fatalf("ResolveItemPath() = %#v, %q, %v", render, path, ok)
	}
	writePage(t, f.out, "en/blog/hello")
	if _, path, _ := f.c.ResolveItemPath("posts", "hello"); path != "en/blog/hello" {
		t.Fatalf("expected first configured match, got %q", path)
	}

	targets := f.c.ItemTargets([]route.Route{route.ItemRoute("posts", "other")})
	if targets[0].Path != "" || targets[0].Render != nil {
		t.Fatalf("expected unresolved target, got %#v", targets[0])
	}
}

func TestResolveItemPathSingleRender(t *testing.T) {
	f := newFixture(t, []config.DatabaseRender{{Collection: "posts", Path: "/blog/:id/"}})
	_, path, ok := f.c.ResolveItemPath("posts", "x")
	if !ok || path != "blog/x" {
		t.Fatalf("ResolveItemPath() = %q, %v", path, ok)
	}
}
