package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

type queryer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db queryer
}

// orderFieldPattern limits ORDER BY fields to plain top-level JSON keys.
var orderFieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func NewQueries(db queryer) *Queries {
	return &Queries{db: db}
}

const documentColumns = `collection, id, status, type, locale, data_json, created_at, updated_at`

func (q *Queries) UpsertDocument(ctx context.Context, in DocumentRow) error {
	if in.DataJSON == "" {
		in.DataJSON = "{}"
	}
	_, err := q.db.ExecContext(ctx, `
INSERT INTO documents(collection, id, status, type, locale, data_json)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(collection, id) DO UPDATE SET
    status = excluded.status,
    type = excluded.type,
    locale = excluded.locale,
    data_json = excluded.data_json,
    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		in.Collection, in.ID, in.Status, in.Type, in.Locale, in.DataJSON)
	if err != nil {
		return fmt.Errorf("upsert document %s:%s: %w", in.Collection, in.ID, err)
	}
	return nil
}

func (q *Queries) GetDocument(ctx context.Context, collection, id string) (DocumentRow, error) {
	var out DocumentRow
	err := q.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE collection = ? AND id = ?`, collection, id).
		Scan(&out.Collection, &out.ID, &out.Status, &out.Type, &out.Locale, &out.DataJSON, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return out, fmt.Errorf("get document %s:%s: %w", collection, id, err)
	}
	return out, nil
}

// ListDocuments returns the documents matching f. Documents missing the
// order field sort by their insertion time.
func (q *Queries) ListDocuments(ctx context.Context, f DocumentFilter) ([]DocumentRow, error) {
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "createdAt"
	}
	if !orderFieldPattern.MatchString(orderBy) {
		return nil, fmt.Errorf("list documents: invalid order field %q", orderBy)
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := q.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE collection = ?
  AND (? = '' OR status = ?)
  AND (? = '' OR type = ?)
  AND (? = '' OR locale = ?)
ORDER BY COALESCE(json_extract(data_json, ?), created_at) `+direction+`, id `+direction+`
LIMIT ?`,
		f.Collection,
		f.Status, f.Status,
		f.Type, f.Type,
		f.Locale, f.Locale,
		"$."+orderBy,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", f.Collection, err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var row DocumentRow
		if err := rows.Scan(&row.Collection, &row.ID, &row.Status, &row.Type, &row.Locale, &row.DataJSON, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return out, nil
}

func (q *Queries) DeleteDocument(ctx context.Context, collection, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return 0, fmt.Errorf("delete document %s:%s: %w", collection, id, err)
	}
	return rowsAffected("delete document", res)
}

func (q *Queries) CountDocuments(ctx context.Context, collection string) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents in %s: %w", collection, err)
	}
	return n, nil
}

func (q *Queries) InsertImportBatch(ctx context.Context, in ImportBatchRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO import_batches(collection, source, document_count) VALUES(?, ?, ?)`, in.Collection, in.Source, in.DocumentCount)
	if err != nil {
		return 0, fmt.Errorf("insert import batch: %w", err)
	}
	return lastInsertID("insert import batch", res)
}

// CollectionStats summarizes every collection present in the store.
func (q *Queries) CollectionStats(ctx context.Context) ([]CollectionStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT d.collection, COUNT(*), COALESCE((SELECT MAX(b.imported_at) FROM import_batches b WHERE b.collection = d.collection), '')
FROM documents d
GROUP BY d.collection
ORDER BY d.collection ASC`)
	if err != nil {
		return nil, fmt.Errorf("query collection stats: %w", err)
	}
	defer rows.Close()

	var out []CollectionStatsRow
	for rows.Next() {
		var row CollectionStatsRow
		if err := rows.Scan(&row.Collection, &row.DocumentCount, &row.LastImportAt); err != nil {
			return nil, fmt.Errorf("scan collection stats row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection stats rows: %w", err)
	}
	return out, nil
}

func lastInsertID(op string, res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s last insert id: %w", op, err)
	}
	return id, nil
}

func rowsAffected(op string, res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n, nil
}
