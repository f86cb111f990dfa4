package cache

import (
	"strings"

	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/pkg/model"
	"github.com/benedict2310/ngxer/pkg/route"
)

// ItemPath is the output path of document id under render.
func ItemPath(render config.DatabaseRender, id string) string {
	return route.Normalize(route.SubstituteID(render.Path, id))
}

// ItemURL is the canonical URL of document id under render.
func ItemURL(baseURL string, render config.DatabaseRender, id string) string {
	return strings.TrimRight(baseURL, "/") + "/" + ItemPath(render, id) + "/"
}

// DeriveItemMetadata maps a collection document onto a metadata record. Each
// field resolves through its own ordered fallback list, ending with the
// template default.
func DeriveItemMetadata(render config.DatabaseRender, baseURL, id string, doc model.Document, defaults model.Metadata) model.Metadata {
	m := model.Metadata{
		URL:         ItemURL(baseURL, render, id),
		Title:       attrSafe(model.FirstNonEmpty(doc.String("title"), defaults.Title)),
		Description: attrSafe(model.FirstNonEmpty(doc.String("description"), doc.String("excerpt"), defaults.Description)),
		Image:       model.FirstNonEmpty(doc.String("image"), doc.Nested("image", "url"), defaults.Image),
		Locale:      model.FirstNonEmpty(doc.String("locale"), render.Locale, defaults.Locale),
		Lang:        model.FirstNonEmpty(doc.String("lang"), defaults.Lang),
		AuthorName:  model.FirstNonEmpty(doc.String("authorName"), doc.Nested("author", "name"), defaults.AuthorName),
		AuthorURL:   model.FirstNonEmpty(doc.String("authorUrl"), doc.Nested("author", "url"), defaults.AuthorURL),
		CreatedAt:   model.FirstNonEmpty(doc.String("createdAt"), defaults.CreatedAt),
		UpdatedAt:   model.FirstNonEmpty(doc.String("updatedAt"), doc.String("createdAt"), defaults.UpdatedAt),
		Content:     model.FirstNonEmpty(doc.String("content"), defaults.Content),
	}
	return m
}

// attrSafe keeps document text from closing the attribute it is composed
// into.
func attrSafe(v string) string {
	return strings.ReplaceAll(v, `"`, "&quot;")
}
