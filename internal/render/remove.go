package render

import (
	"context"
	"fmt"

	"github.com/benedict2310/ngxer/internal/cache"
	"github.com/benedict2310/ngxer/pkg/route"
)

// Remove deletes the cache entry and the output directory of every route.
// A collection item with several renders is located by probing the output
// directory in config order.
func (o *Orchestrator) Remove(ctx context.Context, inputs []string) (Outcome, error) {
	routes, invalid := route.ParseAll(inputs)
	out := o.reportInvalid(KindPath, invalid)

	var removed Outcome
	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		removed.add(o.removeOne(r))
	}
	removed.Print(o.out)
	out.Merge(removed)
	return out, nil
}

func (o *Orchestrator) removeOne(r route.Route) RouteResult {
	if !r.IsItem() {
		res := RouteResult{Route: r.Key(), Kind: KindPath, Path: r.Path, State: StateRemoved}
		if err := o.cache.Remove(r); err != nil {
			res.Err = err
			return res
		}
		res.Err = o.pages.DeleteAll(r.Path)
		return res
	}

	res := RouteResult{Route: r.Key(), Kind: KindDatabase, State: StateRemoved}
	if !o.cache.Allowed(r.Collection) {
		res.Err = fmt.Errorf("%s: %w", r.Collection, cache.ErrDisallowedCollection)
		return res
	}
	if err := o.cache.Remove(r); err != nil {
		res.Err = err
		return res
	}
	_, path, ok := o.classifier.ResolveItemPath(r.Collection, r.ID)
	if !ok {
		res.Err = fmt.Errorf("no rendered page found for %s", r)
		return res
	}
	res.Path = path
	res.Err = o.pages.DeleteAll(path)
	return res
}
