// Package render materializes routes as static pages. Each route is served
// from the page already on disk, rebuilt from its cache entry, or rendered
// live in the browser session and cached.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/benedict2310/ngxer/internal/backend"
	"github.com/benedict2310/ngxer/internal/blob"
	"github.com/benedict2310/ngxer/internal/cache"
	"github.com/benedict2310/ngxer/internal/classify"
	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/internal/docsource"
	"github.com/benedict2310/ngxer/pkg/composer"
	"github.com/benedict2310/ngxer/pkg/htmlmeta"
	"github.com/benedict2310/ngxer/pkg/route"
)

// ErrNoBuildOutput means the out directory holds no built index.html.
var ErrNoBuildOutput = errors.New("no build output found")

type Options struct {
	Project config.Project
	// ForceLive renders every requested route in the browser, ignoring
	// existing pages and cache entries.
	ForceLive bool

	// Optional collaborators; New builds the defaults from Project.
	Template   *htmlmeta.Template
	Extractor  htmlmeta.Extractor
	Cache      *cache.Store
	Classifier *classify.Classifier
	Renderer   backend.Renderer
	Source     docsource.Source

	Logger *slog.Logger
	Out    io.Writer
	Now    func() time.Time
}

// Orchestrator runs the render pipeline for one command. It owns the render
// backend and must be closed.
type Orchestrator struct {
	project    config.Project
	forceLive  bool
	tpl        *htmlmeta.Template
	extractor  htmlmeta.Extractor
	cache      *cache.Store
	classifier *classify.Classifier
	renderer   backend.Renderer
	source     docsource.Source
	pages      *blob.Store
	logger     *slog.Logger
	out        io.Writer
	now        func() time.Time
}

func New(opts Options) (*Orchestrator, error) {
	p := opts.Project
	o := &Orchestrator{
		project:    p,
		forceLive:  opts.ForceLive,
		tpl:        opts.Template,
		extractor:  opts.Extractor,
		cache:      opts.Cache,
		classifier: opts.Classifier,
		renderer:   opts.Renderer,
		source:     opts.Source,
		pages:      blob.NewStore(p.OutDir),
		logger:     opts.Logger,
		out:        opts.Out,
		now:        opts.Now,
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.out == nil {
		o.out = io.Discard
	}
	if o.now == nil {
		o.now = time.Now
	}

	if o.tpl == nil {
		tpl, err := LoadTemplate(p)
		if err != nil {
			return nil, err
		}
		o.tpl = tpl
	}
	if o.extractor == nil {
		ex, err := htmlmeta.NewExtractor(p.Extractor, p.ContentPair, p.Mount)
		if err != nil {
			return nil, err
		}
		o.extractor = ex
	}
	if o.cache == nil {
		o.cache = cache.New(p.RCDir, cache.Options{
			BaseURL:  p.URL,
			Defaults: o.tpl.Defaults,
			Renders:  p.DatabaseRender,
		})
	}
	if o.classifier == nil {
		o.classifier = classify.New(p.OutDir, o.cache, p.Config)
	}
	if o.renderer == nil {
		o.renderer = backend.NewSession(backend.Options{
			OutDir:      p.OutDir,
			ChromeBin:   p.ChromeBin,
			Timeout:     p.BrowserTimeout,
			Concurrency: p.Browser.Concurrency,
			Logger:      o.logger,
		})
	}
	return o, nil
}

// LoadTemplate parses the project's built index, preserving the pristine
// copy on first use. It fails with ErrNoBuildOutput before the app is built.
func LoadTemplate(p config.Project) (*htmlmeta.Template, error) {
	if err := checkBuildOutput(p.OutDir); err != nil {
		return nil, err
	}
	return htmlmeta.LoadTemplate(p.OutDir, p.ContentPair)
}

func checkBuildOutput(outDir string) error {
	for _, name := range []string{htmlmeta.OriginalIndexFile, htmlmeta.IndexFile} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err == nil {
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat build output: %w", err)
		}
	}
	return fmt.Errorf("%w in %s (build the app first)", ErrNoBuildOutput, outDir)
}

// Template is the parsed SPA index used for every page.
func (o *Orchestrator) Template() *htmlmeta.Template {
	return o.tpl
}

// Sort parses raw route inputs; see classify.Classifier.SortInputs.
func (o *Orchestrator) Sort(inputs []string, allowNew bool) classify.Inputs {
	return o.classifier.SortInputs(inputs, allowNew)
}

// Close stops the render backend if it was started.
func (o *Orchestrator) Close() error {
	return o.renderer.Close()
}

// RenderInputs renders user-named routes: paths listed in pathRender (or any
// path when allowNew) and collection items. Unknown inputs are reported as
// errors.
func (o *Orchestrator) RenderInputs(ctx context.Context, inputs []string, allowNew bool) (Outcome, error) {
	sorted := o.Sort(inputs, allowNew)
	out := o.reportInvalid(KindPath, sorted.Invalid)

	paths := append(append([]route.Route{}, sorted.Paths...), sorted.Added...)
	pathOut, err := o.RenderPaths(ctx, paths)
	out.Merge(pathOut)
	if err != nil {
		return out, err
	}
	materialized := map[string]bool{}
	for _, p := range pathOut.Materialized(KindPath) {
		materialized[p] = true
	}
	for _, r := range sorted.Added {
		if materialized[r.Path] {
			out.Added = append(out.Added, r.Path)
		}
	}

	itemOut, err := o.RenderItems(ctx, sorted.Items)
	out.Merge(itemOut)
	return out, err
}

// reportInvalid turns unusable inputs into printed error results. Inputs
// naming a collection item are filed under KindDatabase, the rest under
// fallback.
func (o *Orchestrator) reportInvalid(fallback Kind, invalid []route.Invalid) Outcome {
	var out Outcome
	for _, inv := range invalid {
		kind := fallback
		if r, err := route.Parse(inv.Input); err == nil && r.IsItem() {
			kind = KindDatabase
		}
		out.add(RouteResult{Route: inv.Input, Kind: kind, Err: inv.Err})
	}
	out.Print(o.out)
	return out
}

// RenderConfiguredPaths materializes the pathRender entries. Entries that do
// not parse are reported as failed routes.
func (o *Orchestrator) RenderConfiguredPaths(ctx context.Context) (Outcome, error) {
	routes, invalid := route.ParseAll(o.project.PathRender)
	out := o.reportInvalid(KindPath, invalid)
	paths, err := o.RenderPaths(ctx, routes)
	out.Merge(paths)
	return out, err
}

// RenderPaths materializes path routes.
func (o *Orchestrator) RenderPaths(ctx context.Context, routes []route.Route) (Outcome, error) {
	if len(routes) == 0 {
		return Outcome{}, nil
	}
	o.logger.Info("path rendering started", "routes", len(routes), "forceLive", o.forceLive)
	out, err := o.run(ctx, KindPath, classify.PathTargets(routes), nil, o.forceLive)
	o.logger.Info("path rendering finished", "counts", out.Counts().String())
	return out, err
}

// composeOptions are the page options shared by every route.
func (o *Orchestrator) composeOptions() composer.Options {
	return composer.Options{
		Mount:               o.project.Mount,
		ContentTemplate:     o.project.ContentTemplate,
		SplashscreenTimeout: o.project.Splashscreen,
	}
}
