package db

type DocumentRow struct {
	Collection string
	ID         string
	Status     string
	Type       string
	Locale     string
	DataJSON   string
	CreatedAt  string
	UpdatedAt  string
}

// DocumentFilter selects documents of one collection. Empty Status, Type and
// Locale match any value. OrderBy names a top-level JSON field of the
// document.
type DocumentFilter struct {
	Collection string
	Status     string
	Type       string
	Locale     string
	OrderBy    string
	Descending bool
	Limit      int
}

type ImportBatchRow struct {
	ID            int64
	Collection    string
	Source        string
	DocumentCount int64
	ImportedAt    string
}

type CollectionStatsRow struct {
	Collection    string
	DocumentCount int64
	LastImportAt  string
}
