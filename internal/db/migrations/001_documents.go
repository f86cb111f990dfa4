package migrations

type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

const documentsSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    locale TEXT NOT NULL DEFAULT '',
    data_json TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_filter ON documents(collection, status, type, locale);
`

const importBatchesSchemaSQL = `
CREATE TABLE IF NOT EXISTS import_batches (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    document_count INTEGER NOT NULL DEFAULT 0,
    imported_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE INDEX IF NOT EXISTS idx_import_batches_collection ON import_batches(collection, imported_at DESC);
`

func All() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "documents",
			UpSQL:   documentsSchemaSQL,
		},
		{
			Version: 2,
			Name:    "import_batches",
			UpSQL:   importBatchesSchemaSQL,
		},
	}
}
