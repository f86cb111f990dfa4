// Package classify decides, per route, whether its page already exists in the
// output directory, can be rebuilt from the cache, or needs a live render.
package classify

import (
	"context"
	"fmt"
	"sync"

	"github.com/benedict2310/ngxer/internal/blob"
	"github.com/benedict2310/ngxer/internal/cache"
	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/pkg/route"
)

const indexFile = "index.html"

type State int

const (
	StateExisting State = iota
	StateCached
	StateLive
)

func (s State) String() string {
	switch s {
	case StateExisting:
		return "existing"
	case StateCached:
		return "cached"
	case StateLive:
		return "live"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Target is a route with its output path resolved. Path is empty for a
// collection item whose path template could not be chosen yet; the document
// decides it later.
type Target struct {
	Route  route.Route
	Path   string
	Render *config.DatabaseRender
}

// Failure is a target whose checks failed with an I/O error.
type Failure struct {
	Target Target
	Err    error
}

// Result partitions a batch. Every target lands in exactly one list, in
// input order.
type Result struct {
	Existing []Target
	Cached   []Target
	Live     []Target
	Failed   []Failure
}

func (r Result) Len() int {
	return len(r.Existing) + len(r.Cached) + len(r.Live) + len(r.Failed)
}

// Inputs is the outcome of sorting raw route arguments.
type Inputs struct {
	Paths   []route.Route
	Added   []route.Route
	Items   []route.Route
	Invalid []route.Invalid
}

type Classifier struct {
	out   *blob.Store
	cache *cache.Store
	cfg   config.Config
}

func New(outDir string, store *cache.Store, cfg config.Config) *Classifier {
	return &Classifier{out: blob.NewStore(outDir), cache: store, cfg: cfg}
}

// SortInputs parses raw inputs. Paths not listed in pathRender are invalid
// unless allowNew, in which case they are returned as Added. Items of a
// collection without a database render are invalid.
func (c *Classifier) SortInputs(inputs []string, allowNew bool) Inputs {
	routes, invalid := route.ParseAll(inputs)
	out := Inputs{Invalid: invalid}
	for _, r := range routes {
		switch {
		case r.IsItem() && !c.cache.Allowed(r.Collection):
			out.Invalid = append(out.Invalid, route.Invalid{
				Input: r.Key(),
				Err:   fmt.Errorf("%s: %w", r.Collection, cache.ErrDisallowedCollection),
			})
		case r.IsItem():
			out.Items = append(out.Items, r)
		case c.cfg.HasPath(r.Path):
			out.Paths = append(out.Paths, r)
		case allowNew:
			out.Added = append(out.Added, r)
		default:
			out.Invalid = append(out.Invalid, route.Invalid{
				Input: r.Key(),
				Err:   fmt.Errorf("path %q is not listed in pathRender", r.Path),
			})
		}
	}
	return out
}

// PathTargets wraps path routes as targets.
func PathTargets(routes []route.Route) []Target {
	out := make([]Target, 0, len(routes))
	for _, r := range routes {
		out = append(out, Target{Route: r, Path: r.Path})
	}
	return out
}

// ItemTargets resolves the output path of each collection item.
func (c *Classifier) ItemTargets(routes []route.Route) []Target {
	out := make([]Target, 0, len(routes))
	for _, r := range routes {
		t := Target{Route: r}
		if render, path, ok := c.ResolveItemPath(r.Collection, r.ID); ok {
			t.Path = path
			t.Render = &render
		}
		out = append(out, t)
	}
	return out
}

// ResolveItemPath picks the database render for a collection item. A single
// render is used directly. With several, the first (in config order) whose
// output directory exists wins; none existing leaves the item unresolved.
func (c *Classifier) ResolveItemPath(collection, id string) (config.DatabaseRender, string, bool) {
	renders := c.cfg.RendersFor(collection)
	switch len(renders) {
	case 0:
		return config.DatabaseRender{}, "", false
	case 1:
		return renders[0], cache.ItemPath(renders[0], id), true
	}
	for _, render := range renders {
		path := cache.ItemPath(render, id)
		if ok, err := c.out.DirExists(path); err == nil && ok {
			return render, path, true
		}
	}
	return config.DatabaseRender{}, "", false
}

// Classify checks every target concurrently: the page on disk first, then the
// cache. The partition is a pure function of the filesystem state.
func (c *Classifier) Classify(ctx context.Context, targets []Target) Result {
	states := make([]State, len(targets))
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i], errs[i] = c.classifyOne(ctx, targets[i])
		}(i)
	}
	wg.Wait()

	var res Result
	for i, t := range targets {
		if errs[i] != nil {
			res.Failed = append(res.Failed, Failure{Target: t, Err: errs[i]})
			continue
		}
		switch states[i] {
		case StateExisting:
			res.Existing = append(res.Existing, t)
		case StateCached:
			res.Cached = append(res.Cached, t)
		default:
			res.Live = append(res.Live, t)
		}
	}
	return res
}

func (c *Classifier) classifyOne(ctx context.Context, t Target) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateLive, err
	}
	if t.Path != "" {
		ok, err := c.out.Exists(t.Path + "/" + indexFile)
		if err != nil {
			return StateLive, fmt.Errorf("check page %s: %w", t.Path, err)
		}
		if ok {
			return StateExisting, nil
		}
	}
	ok, err := c.cache.Exists(t.Route)
	if err != nil {
		return StateLive, fmt.Errorf("check cache %s: %w", t.Route, err)
	}
	if ok {
		return StateCached, nil
	}
	return StateLive, nil
}
