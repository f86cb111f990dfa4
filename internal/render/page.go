package render

import (
	"context"
	"fmt"

	"github.com/benedict2310/ngxer/internal/ogimage"
	"github.com/benedict2310/ngxer/pkg/composer"
	"github.com/benedict2310/ngxer/pkg/htmlmeta"
	"github.com/benedict2310/ngxer/pkg/model"
)

func pageKey(path string) string {
	if path == "" {
		return htmlmeta.IndexFile
	}
	return path + "/" + htmlmeta.IndexFile
}

// writePage composes the page of path and writes <out>/<path>/index.html.
func (o *Orchestrator) writePage(ctx context.Context, path string, meta model.Metadata, data map[string]any) error {
	meta, err := o.withCard(ctx, path, meta)
	if err != nil {
		return err
	}
	opts := o.composeOptions()
	if o.project.IncludeSessionData {
		opts.SessionData = model.Document(data)
	}
	html, err := composer.Compose(o.tpl, meta, opts)
	if err != nil {
		return err
	}
	if err := o.pages.Put(ctx, pageKey(path), []byte(html)); err != nil {
		return fmt.Errorf("write page %s: %w", pageKey(path), err)
	}
	return nil
}

// withCard gives pages without an image of their own a generated preview
// card, stored next to the page.
func (o *Orchestrator) withCard(ctx context.Context, path string, meta model.Metadata) (model.Metadata, error) {
	og := o.project.OGImage
	if !og.Enabled || (meta.Image != "" && meta.Image != o.tpl.Defaults.Image) {
		return meta, nil
	}
	card := ogimage.Card{
		Title:       meta.Title,
		Description: meta.Description,
		SiteName:    model.FirstNonEmpty(og.SiteName, o.tpl.Defaults.Title),
		URL:         model.FirstNonEmpty(meta.URL, o.pageURL(path)),
		Accent:      og.AccentColor,
	}
	png, err := ogimage.Generate(card)
	if err != nil {
		return meta, fmt.Errorf("generate preview image for %q: %w", path, err)
	}
	name := ogimage.FileName(card)
	key := name
	if path != "" {
		key = path + "/" + name
	}
	if err := o.pages.Put(ctx, key, png); err != nil {
		return meta, fmt.Errorf("write preview image %s: %w", key, err)
	}
	meta.Image = o.pageURL(path) + name
	return meta, nil
}
