package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var ddl embed.FS

// SQLite stores documents in a single table of a local database file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. An empty path means ~/.local/share/noor/noor.db.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

// DefaultPath returns the sqlite location under $XDG_DATA_HOME.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "noor", "noor.db"), nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(b))
	return err
}

func (s *SQLite) Get(ctx context.Context, user, collection, key string, v any) error {
	var body string
	err := s.db.QueryRowContext(ctx, `
        SELECT body FROM documents
        WHERE user_id = ? AND collection = ? AND doc_key = ?`,
		user, collection, key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

func (s *SQLite) Set(ctx context.Context, user, collection, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return upsert(ctx, s.db, user, collection, key, raw)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, user, collection, key string, raw []byte) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO documents (user_id, collection, doc_key, body, updated_at)
        VALUES (?,?,?,?,?)
        ON CONFLICT(user_id, collection, doc_key) DO UPDATE SET
            body = excluded.body,
            updated_at = excluded.updated_at`,
		user, collection, key, string(raw), time.Now().Unix())
	return err
}

func (s *SQLite) Merge(ctx context.Context, user, collection, key string, patch map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing []byte
	var body string
	err = tx.QueryRowContext(ctx, `
        SELECT body FROM documents
        WHERE user_id = ? AND collection = ? AND doc_key = ?`,
		user, collection, key,
	).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	default:
		existing = []byte(body)
	}

	raw, err := mergeJSON(existing, patch)
	if err != nil {
		return err
	}
	if err := upsert(ctx, tx, user, collection, key, raw); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) List(ctx context.Context, user, collection string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT doc_key, body FROM documents
        WHERE user_id = ? AND collection = ?`, user, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, body string
		if err := rows.Scan(&key, &body); err != nil {
			return nil, err
		}
		out[key] = json.RawMessage(body)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
