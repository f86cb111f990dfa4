// Package docsource provides the collection documents rendered by database
// renders.
package docsource

import (
	"context"
	"errors"

	"github.com/benedict2310/ngxer/internal/config"
	"github.com/benedict2310/ngxer/pkg/model"
)

var ErrNotFound = errors.New("document not found")

// Query selects one page of a collection. Empty filters match anything and
// a zero Limit means no limit.
type Query struct {
	Collection string
	Status     string
	Type       string
	Locale     string
	OrderBy    string
	Descending bool
	Limit      int
}

// Source is a paginated document store.
type Source interface {
	Query(ctx context.Context, q Query) ([]model.Document, error)
	Get(ctx context.Context, collection, id string) (model.Document, error)
}

// QueryFor builds the query of a database render with the given limit.
func QueryFor(render config.DatabaseRender, limit int) Query {
	return Query{
		Collection: render.Collection,
		Status:     render.Status,
		Type:       render.Type,
		Locale:     render.Locale,
		OrderBy:    render.OrderBy,
		Descending: render.OrderDirection != config.OrderAsc,
		Limit:      limit,
	}
}
