package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/benedict2310/ngxer/internal/backend"
	"github.com/benedict2310/ngxer/internal/cache"
	"github.com/benedict2310/ngxer/internal/classify"
	"github.com/benedict2310/ngxer/pkg/model"
)

var errNoSource = errors.New("document source is not configured")

// run classifies targets (or takes them all as live) and materializes each
// one. docs holds already fetched documents by route key. The returned error
// is set only when the shared render session failed.
func (o *Orchestrator) run(ctx context.Context, kind Kind, targets []classify.Target, docs map[string]model.Document, allLive bool) (Outcome, error) {
	var res classify.Result
	if allLive {
		res.Live = targets
	} else {
		res = o.classifier.Classify(ctx, targets)
	}

	var out Outcome
	for _, f := range res.Failed {
		out.add(RouteResult{Route: f.Target.Route.Key(), Kind: kind, Path: f.Target.Path, Err: f.Err})
	}
	for _, t := range res.Existing {
		out.add(RouteResult{Route: t.Route.Key(), Kind: kind, Path: t.Path, State: StateExisting})
	}
	out.Merge(o.replay(ctx, kind, res.Cached))
	live, err := o.renderLive(ctx, kind, res.Live, docs)
	out.Merge(live)
	out.Print(o.out)
	return out, err
}

// replay rebuilds pages from their cache entries without the browser.
func (o *Orchestrator) replay(ctx context.Context, kind Kind, targets []classify.Target) Outcome {
	results := make([]RouteResult, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t classify.Target) {
			defer wg.Done()
			results[i] = o.replayOne(ctx, kind, t)
		}(i, t)
	}
	wg.Wait()

	var out Outcome
	for _, r := range results {
		out.add(r)
	}
	return out
}

func (o *Orchestrator) replayOne(ctx context.Context, kind Kind, t classify.Target) RouteResult {
	res := RouteResult{Route: t.Route.Key(), Kind: kind, Path: t.Path, State: StateCached}
	entry, err := o.cache.Read(t.Route)
	if err != nil {
		res.Err = err
		return res
	}
	if entry == nil {
		res.Err = fmt.Errorf("cache entry %s is missing", cache.Key(t.Route))
		return res
	}
	path, meta := t.Path, entry.Metadata
	if t.Route.IsItem() {
		if path, meta, err = o.itemPage(t, entry.Raw); err != nil {
			res.Err = err
			return res
		}
		res.Path = path
	}
	res.Err = o.writePage(ctx, path, meta, entry.Raw)
	return res
}

// liveJob is one live route on its way through the pipeline.
type liveJob struct {
	target classify.Target
	result RouteResult
	doc    model.Document
	// page indexes the browser result; -1 when the route needs none.
	page int
}

// renderLive renders targets through the shared session: every browser
// navigation of the batch runs in one Render call, then each route is
// extracted, cached, composed and written in that order.
func (o *Orchestrator) renderLive(ctx context.Context, kind Kind, targets []classify.Target, docs map[string]model.Document) (Outcome, error) {
	if len(targets) == 0 {
		return Outcome{}, nil
	}
	jobs := make([]*liveJob, len(targets))
	for i, t := range targets {
		jobs[i] = &liveJob{target: t, result: RouteResult{Route: t.Route.Key(), Kind: kind, Path: t.Path, State: StateLive}, page: -1}
	}
	o.loadDocuments(ctx, jobs, docs)

	var paths []string
	for _, j := range jobs {
		if j.result.Err != nil {
			continue
		}
		if j.target.Route.IsItem() && j.doc.String(string(model.FieldContent)) != "" {
			continue
		}
		j.page = len(paths)
		paths = append(paths, j.result.Path)
	}

	var pages []backend.Page
	if len(paths) > 0 {
		var err error
		pages, err = o.renderer.Render(ctx, paths)
		if err != nil {
			var out Outcome
			for _, j := range jobs {
				if j.result.Err == nil {
					j.result.Err = err
				}
				out.add(j.result)
			}
			o.logger.Error("render session failed", "routes", len(paths), "error", err)
			return out, err
		}
	}

	var wg sync.WaitGroup
	for _, j := range jobs {
		if j.result.Err != nil {
			continue
		}
		wg.Add(1)
		go func(j *liveJob) {
			defer wg.Done()
			var page *backend.Page
			if j.page >= 0 && j.page < len(pages) {
				page = &pages[j.page]
			}
			j.result.Err = o.finishLive(ctx, j, page)
		}(j)
	}
	wg.Wait()

	var out Outcome
	for _, j := range jobs {
		out.add(j.result)
	}
	return out, nil
}

// loadDocuments attaches the document of every collection item and resolves
// the output path of items whose template depends on it.
func (o *Orchestrator) loadDocuments(ctx context.Context, jobs []*liveJob, docs map[string]model.Document) {
	var wg sync.WaitGroup
	for _, j := range jobs {
		if !j.target.Route.IsItem() {
			continue
		}
		wg.Add(1)
		go func(j *liveJob) {
			defer wg.Done()
			doc, ok := docs[j.target.Route.Key()]
			if !ok {
				if o.source == nil {
					j.result.Err = errNoSource
					return
				}
				var err error
				if doc, err = o.source.Get(ctx, j.target.Route.Collection, j.target.Route.ID); err != nil {
					j.result.Err = err
					return
				}
			}
			j.doc = cloneDocument(doc)
			if j.doc.ID() == "" {
				j.doc["id"] = j.target.Route.ID
			}
			path, _, err := o.itemPage(j.target, j.doc)
			if err != nil {
				j.result.Err = err
				return
			}
			j.result.Path = path
		}(j)
	}
	wg.Wait()
}

func (o *Orchestrator) finishLive(ctx context.Context, j *liveJob, page *backend.Page) error {
	if page != nil && page.Err != nil {
		return page.Err
	}
	r := j.target.Route

	if !r.IsItem() {
		if page == nil {
			return fmt.Errorf("no rendered page for %s", r)
		}
		meta := o.extractor.Extract(page.HTML)
		meta.URL = o.pageURL(j.result.Path)
		entry, err := o.cache.Save(ctx, r, meta.ToMap())
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("cache refused %s", r)
		}
		return o.writePage(ctx, j.result.Path, entry.Metadata, entry.Raw)
	}

	if page != nil {
		j.doc[string(model.FieldContent)] = o.extractor.Extract(page.HTML).Content
	}
	entry, err := o.cache.Save(ctx, r, j.doc)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%s: %w", r.Collection, cache.ErrDisallowedCollection)
	}
	path, meta, err := o.itemPage(j.target, entry.Raw)
	if err != nil {
		return err
	}
	return o.writePage(ctx, path, meta, entry.Raw)
}

// itemPage resolves the output path and metadata of a collection item from
// its document.
func (o *Orchestrator) itemPage(t classify.Target, raw map[string]any) (string, model.Metadata, error) {
	doc := model.Document(raw)
	if t.Render != nil {
		render := *t.Render
		return cache.ItemPath(render, t.Route.ID), cache.DeriveItemMetadata(render, o.project.URL, t.Route.ID, doc, o.tpl.Defaults), nil
	}
	render, ok := o.cache.RenderFor(t.Route.Collection, doc)
	if !ok {
		return "", model.Metadata{}, fmt.Errorf("%s: %w", t.Route.Collection, cache.ErrDisallowedCollection)
	}
	return cache.ItemPath(render, t.Route.ID), cache.DeriveItemMetadata(render, o.project.URL, t.Route.ID, doc, o.tpl.Defaults), nil
}

// pageURL is the canonical, slash-terminated URL of an output path.
func (o *Orchestrator) pageURL(path string) string {
	return model.EnsureTrailingSlash(strings.TrimRight(o.project.URL, "/") + "/" + path)
}

func cloneDocument(doc model.Document) model.Document {
	out := make(model.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
