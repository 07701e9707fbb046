// Package store is the document store behind user records: JSON documents
// addressed by user id, collection name and key. Writes are last-writer-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no document exists.
var ErrNotFound = errors.New("document not found")

// Store is implemented by every backend.
type Store interface {
	// Get decodes the document into v.
	Get(ctx context.Context, user, collection, key string, v any) error
	// Set replaces the document with v encoded as JSON.
	Set(ctx context.Context, user, collection, key string, v any) error
	// Merge overlays top-level fields onto the document, creating it if needed.
	Merge(ctx context.Context, user, collection, key string, patch map[string]any) error
	// List returns every document in a collection keyed by document key.
	List(ctx context.Context, user, collection string) (map[string]json.RawMessage, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string // sqlite database file
	RedisAddr string
	RedisDB   int
}

// Open returns the backend named in opts. An empty backend means sqlite.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		return OpenSQLite(ctx, opts.Path)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisDB)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// mergeJSON overlays patch onto an existing JSON object (nil for none).
func mergeJSON(existing []byte, patch map[string]any) ([]byte, error) {
	doc := map[string]any{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("existing document is not an object: %w", err)
		}
	}
	for k, v := range patch {
		doc[k] = v
	}
	return json.Marshal(doc)
}
