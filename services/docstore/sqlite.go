package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on a single sqlite table holding one JSON
// body per row
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a document store at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY,
		collection TEXT NOT NULL,
		body TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_collection
		ON documents (collection)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create collection index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert appends one document to a collection
func (s *SQLiteStore) Insert(ctx context.Context, collection string, document []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, body) VALUES (?, ?)`,
		collection, string(document))
	if err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

// Drop removes one collection
func (s *SQLiteStore) Drop(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return fmt.Errorf("drop %s: %w", collection, err)
	}
	return nil
}

// DropAll removes every collection
func (s *SQLiteStore) DropAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("drop all collections: %w", err)
	}
	return nil
}

// Count returns the number of documents in a collection
func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
