package render

import (
	"context"
	"fmt"

	"github.com/benedict2310/ngxer/internal/cache"
	"github.com/benedict2310/ngxer/internal/classify"
	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/internal/docsource"
	"github.com/benedict2310/ngxer/pkg/model"
	"github.com/benedict2310/ngxer/pkg/route"
)

// RenderCollections renders the documents of every database render. A
// collection with nothing cached yet is on its first run: up to limitFirst
// documents are fetched and all rendered live. Later runs fetch limitUpdate
// documents and classify them like any other route.
func (o *Orchestrator) RenderCollections(ctx context.Context) (Outcome, error) {
	if len(o.project.DatabaseRender) == 0 {
		return Outcome{}, nil
	}
	if o.source == nil {
		return Outcome{}, errNoSource
	}

	firstRun := map[string]bool{}
	for _, c := range o.project.Collections() {
		cached, err := o.cache.CollectionCached(c)
		if err != nil {
			return Outcome{}, err
		}
		firstRun[c] = !cached
	}

	var out Outcome
	for _, render := range o.project.DatabaseRender {
		limit := render.LimitUpdate
		if firstRun[render.Collection] {
			limit = render.LimitFirst
		}
		docs, err := o.source.Query(ctx, docsource.QueryFor(render, limit))
		if err != nil {
			return out, fmt.Errorf("query collection %s: %w", render.Collection, err)
		}
		o.logger.Info("database rendering started",
			"collection", render.Collection,
			"locale", render.Locale,
			"firstRun", firstRun[render.Collection],
			"limit", limit,
			"documents", len(docs))

		targets, byKey, invalid := collectionTargets(render, docs)
		out.Merge(o.reportInvalid(KindDatabase, invalid))
		batch, err := o.run(ctx, KindDatabase, targets, byKey, firstRun[render.Collection] || o.forceLive)
		out.Merge(batch)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// RenderItems materializes explicitly named collection items. Their
// documents are fetched only when a live render is needed.
func (o *Orchestrator) RenderItems(ctx context.Context, routes []route.Route) (Outcome, error) {
	if len(routes) == 0 {
		return Outcome{}, nil
	}
	o.logger.Info("item rendering started", "routes", len(routes), "forceLive", o.forceLive)
	out, err := o.run(ctx, KindDatabase, o.classifier.ItemTargets(routes), nil, o.forceLive)
	o.logger.Info("item rendering finished", "counts", out.Counts().String())
	return out, err
}

func collectionTargets(render config.DatabaseRender, docs []model.Document) ([]classify.Target, map[string]model.Document, []route.Invalid) {
	targets := make([]classify.Target, 0, len(docs))
	byKey := make(map[string]model.Document, len(docs))
	var invalid []route.Invalid
	for _, doc := range docs {
		input := render.Collection + ":" + doc.ID()
		r, err := route.Parse(input)
		if err != nil || !r.IsItem() {
			if err == nil {
				err = fmt.Errorf("document has no id")
			}
			invalid = append(invalid, route.Invalid{Input: input, Err: err})
			continue
		}
		if _, dup := byKey[r.Key()]; dup {
			continue
		}
		rr := render
		targets = append(targets, classify.Target{Route: r, Path: cache.ItemPath(rr, r.ID), Render: &rr})
		byKey[r.Key()] = doc
	}
	return targets, byKey, invalid
}
