package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpenSetsWALAndCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ngxer", "documents.db")
	db, err := Open(DefaultOptions(path))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	mode, err := JournalMode(ctx, db)
	if err != nil {
		t.Fatalf("JournalMode() error = %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected WAL mode, got %q", mode)
	}
}

func TestOpenEmptyPathError(t *testing.T) {
	_, err := Open(DefaultOptions(""))
	if err == nil {
		t.Fatalf("expected empty path error")
	}
}

func TestOpenWithoutWALAndDefaultFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")
	opts := Options{
		Path:          path,
		EnableWAL:     false,
		BusyTimeoutMS: 0,
		MaxOpenConns:  0,
		MaxIdleConns:  -1,
	}
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	mode, err := JournalMode(context.Background(), db)
	if err != nil {
		t.Fatalf("JournalMode() error = %v", err)
	}
	if strings.EqualFold(mode, "wal") {
		t.Fatalf("expected non-WAL journal mode when WAL disabled")
	}
}

func TestJournalModeErrorOnClosedDB(t *testing.T) {
	db, err := Open(DefaultOptions(filepath.Join(t.TempDir(), "db.sqlite")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := JournalMode(context.Background(), db); err == nil {
		t.Fatalf("expected JournalMode error on closed db")
	}
}
