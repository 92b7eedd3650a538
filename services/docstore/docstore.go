package docstore

import "context"

// Store represents a schema-less document store. Collections are created
// implicitly on first insert and keyed by league tag, an open set of
// strings.
type Store interface {
	// Insert appends one document to a collection
	Insert(ctx context.Context, collection string, document []byte) error

	// Drop removes one collection and all its documents
	Drop(ctx context.Context, collection string) error

	// DropAll removes every collection
	DropAll(ctx context.Context) error

	// Count returns the number of documents in a collection
	Count(ctx context.Context, collection string) (int, error)

	// Close closes the store
	Close() error
}
