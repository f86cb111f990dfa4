package docsource

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/benedict2310/ngxer/internal/db"
	"github.com/benedict2310/ngxer/pkg/model"
)

var _ Source = (*SQLite)(nil)

// SQLite serves documents from the project's document store.
type SQLite struct {
	db *sql.DB
	q  *db.Queries
}

// OpenSQLite opens (creating if needed) the store at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := db.Open(db.DefaultOptions(path))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate document store %s: %w", path, err)
	}
	return &SQLite{db: conn, q: db.NewQueries(conn)}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Query(ctx context.Context, q Query) ([]model.Document, error) {
	rows, err := s.q.ListDocuments(ctx, db.DocumentFilter{
		Collection: q.Collection,
		Status:     q.Status,
		Type:       q.Type,
		Locale:     q.Locale,
		OrderBy:    q.OrderBy,
		Descending: q.Descending,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *SQLite) Get(ctx context.Context, collection, id string) (model.Document, error) {
	row, err := s.q.GetDocument(ctx, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s:%s: %w", collection, id, ErrNotFound)
		}
		return nil, err
	}
	return decodeRow(row)
}

// Import upserts docs into collection in one transaction and records the
// batch. Every document needs an id.
func (s *SQLite) Import(ctx context.Context, collection, source string, docs []model.Document) (int, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return 0, fmt.Errorf("collection is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := db.NewQueries(tx)
	for i, doc := range docs {
		id := doc.ID()
		if id == "" {
			return 0, fmt.Errorf("document %d in %s has no id", i, collection)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return 0, fmt.Errorf("encode document %s: %w", id, err)
		}
		err = q.UpsertDocument(ctx, db.DocumentRow{
			Collection: collection,
			ID:         id,
			Status:     doc.String("status"),
			Type:       doc.String("type"),
			Locale:     doc.String("locale"),
			DataJSON:   string(data),
		})
		if err != nil {
			return 0, err
		}
	}
	if _, err := q.InsertImportBatch(ctx, db.ImportBatchRow{Collection: collection, Source: source, DocumentCount: int64(len(docs))}); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(docs), nil
}

// Stats summarizes the collections held in the store.
func (s *SQLite) Stats(ctx context.Context) ([]db.CollectionStatsRow, error) {
	return s.q.CollectionStats(ctx)
}

func decodeRow(row db.DocumentRow) (model.Document, error) {
	doc := model.Document{}
	if err := json.Unmarshal([]byte(row.DataJSON), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s:%s: %w", row.Collection, row.ID, err)
	}
	if doc.ID() == "" {
		doc["id"] = row.ID
	}
	return doc, nil
}

// DecodeDocuments reads a JSON array of documents, or an object keyed by
// document id as produced by collection exports.
func DecodeDocuments(r io.Reader) ([]model.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var list []model.Document
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var keyed map[string]model.Document
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("documents must be a JSON array or an object keyed by id: %w", err)
	}
	ids := make([]string, 0, len(keyed))
	for id := range keyed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		doc := keyed[id]
		if doc == nil {
			doc = model.Document{}
		}
		if doc.ID() == "" {
			doc["id"] = id
		}
		out = append(out, doc)
	}
	return out, nil
}
