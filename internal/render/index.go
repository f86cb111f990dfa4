package render

import (
	"context"

	"github.com/benedict2310/ngxer/pkg/model"
	"github.com/benedict2310/ngxer/pkg/route"
)

// RenderIndexes recomposes the home page with the template's own metadata
// and writes one localized copy per indexRender entry at <out>/<locale>/.
func (o *Orchestrator) RenderIndexes(ctx context.Context) (Outcome, error) {
	var out Outcome

	home := o.tpl.Defaults
	home.URL = o.pageURL("")
	err := o.writePage(ctx, "", home, nil)
	out.add(RouteResult{Route: "", Kind: KindIndex, Path: "", State: StateComposed, Err: err})

	for _, ir := range o.project.IndexRender {
		path := route.Normalize(ir.Locale)
		meta := o.tpl.Defaults
		meta.URL = o.pageURL(path)
		meta.Locale = model.FirstNonEmpty(ir.Locale, meta.Locale)
		meta.Lang = model.FirstNonEmpty(ir.Lang, meta.Lang)
		meta.Title = model.FirstNonEmpty(ir.Title, meta.Title)
		meta.Description = model.FirstNonEmpty(ir.Description, meta.Description)
		meta.Image = model.FirstNonEmpty(ir.Image, meta.Image)
		err := o.writePage(ctx, path, meta, nil)
		out.add(RouteResult{Route: ir.Locale, Kind: KindIndex, Path: path, State: StateComposed, Err: err})
	}
	out.Print(o.out)
	return out, nil
}
