// Package cache persists per-route metadata under the project's rc directory:
// path_cached/<path>.json for path routes and
// database_cached/<collection>/<id>.json for collection items.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/benedict2310/ngxer/internal/blob"
	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/pkg/model"
	"github.com/benedict2310/ngxer/pkg/route"
)

const (
	PathDir     = "path_cached"
	DatabaseDir = "database_cached"
)

// ErrDisallowedCollection marks a collection item whose collection has no
// database render configured. Read and Save return a nil entry for those;
// callers that must report the route use this error.
var ErrDisallowedCollection = errors.New("collection is not configured for database rendering")

// Entry is one cache file: the stored payload and the metadata derived from
// it.
type Entry struct {
	Key      string
	Metadata model.Metadata
	Raw      map[string]any
}

type Options struct {
	BaseURL  string
	Defaults model.Metadata
	Renders  []config.DatabaseRender
}

type Store struct {
	files    *blob.Store
	baseURL  string
	defaults model.Metadata
	renders  []config.DatabaseRender
}

func New(rcDir string, opts Options) *Store {
	return &Store{
		files:    blob.NewStore(rcDir),
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		defaults: opts.Defaults,
		renders:  opts.Renders,
	}
}

// Key is the cache file location relative to the rc directory. It depends on
// the route alone.
func Key(r route.Route) string {
	if r.IsItem() {
		return DatabaseDir + "/" + r.Collection + "/" + r.ID + ".json"
	}
	return PathDir + "/" + r.Path + ".json"
}

// Path is the absolute cache file location for r.
func (s *Store) Path(r route.Route) (string, error) {
	return s.files.Path(Key(r))
}

func (s *Store) Exists(r route.Route) (bool, error) {
	return s.files.Exists(Key(r))
}

// CollectionCached reports whether any item of collection has been cached,
// which separates a first run from an incremental one.
func (s *Store) CollectionCached(collection string) (bool, error) {
	return s.files.DirExists(DatabaseDir + "/" + collection)
}

// Allowed reports whether collection has at least one database render.
func (s *Store) Allowed(collection string) bool {
	return len(s.rendersFor(collection)) > 0
}

// Read loads the entry for r. A missing file or a disallowed collection
// yields a nil entry and no error.
func (s *Store) Read(r route.Route) (*Entry, error) {
	if r.IsItem() && !s.Allowed(r.Collection) {
		return nil, nil
	}
	key := Key(r)
	b, err := s.files.Get(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return &Entry{Key: key, Metadata: s.metadataFor(r, raw), Raw: raw}, nil
}

// Save overwrites the entry for r. Path routes store normalized metadata;
// collection items store the raw document. A disallowed collection yields a
// nil entry and writes nothing.
func (s *Store) Save(ctx context.Context, r route.Route, data map[string]any) (*Entry, error) {
	if r.IsItem() && !s.Allowed(r.Collection) {
		return nil, nil
	}
	raw := data
	if !r.IsItem() {
		raw = model.FromMap(data).WithDefaults(s.defaults).ToMap()
	}
	key := Key(r)
	b, err := encode(raw)
	if err != nil {
		return nil, fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := s.files.Put(ctx, key, b); err != nil {
		return nil, fmt.Errorf("save cache entry %s: %w", key, err)
	}
	return &Entry{Key: key, Metadata: s.metadataFor(r, raw), Raw: raw}, nil
}

// Remove deletes the entry for r; an absent entry is not an error.
func (s *Store) Remove(r route.Route) error {
	return s.files.Delete(Key(r))
}

func (s *Store) metadataFor(r route.Route, raw map[string]any) model.Metadata {
	if !r.IsItem() {
		return model.FromMap(raw).WithDefaults(s.defaults)
	}
	doc := model.Document(raw)
	render, _ := s.RenderFor(r.Collection, doc)
	return DeriveItemMetadata(render, s.baseURL, r.ID, doc, s.defaults)
}

func (s *Store) rendersFor(collection string) []config.DatabaseRender {
	var out []config.DatabaseRender
	for _, d := range s.renders {
		if d.Collection == collection {
			out = append(out, d)
		}
	}
	return out
}

// RenderFor picks the render whose locale matches the document, else the
// first configured one. It reports false for a disallowed collection.
func (s *Store) RenderFor(collection string, doc model.Document) (config.DatabaseRender, bool) {
	candidates := s.rendersFor(collection)
	if len(candidates) == 0 {
		return config.DatabaseRender{}, false
	}
	locale := doc.String("locale")
	for _, d := range candidates {
		if locale != "" && d.Locale == locale {
			return d, true
		}
	}
	return candidates[0], true
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
