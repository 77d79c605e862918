// Package sqlitestore persists the SDK's key-value state in a SQLite
// database, for desktop and CLI hosts that need sessions to survive process
// restarts. Uses the pure-Go modernc driver, no cgo.
package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-authkit/storage"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS authkit_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

var _ storage.Adapter = (*Store)(nil)

// Store is a SQLite-backed adapter. Safe for concurrent use; SQLite
// serializes writers internally.
type Store struct {
	db     *sql.DB
	prefix string
}

// Open creates (or opens) the database at path and ensures the schema
// exists. prefix namespaces this client's keys within the table.
func Open(path, prefix string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.Open] sql.Open")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] create schema")
	}
	return &Store{db: db, prefix: prefix}, nil
}

// NewWithDB wraps an existing database handle. The caller keeps ownership
// of the handle; Close is a no-op path for them.
func NewWithDB(db *sql.DB, prefix string) (*Store, error) {
	if db == nil {
		return nil, errors.New("[sqlitestore.NewWithDB] db is required")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.NewWithDB] create schema")
	}
	return &Store{db: db, prefix: prefix}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM authkit_kv WHERE key = ?", s.prefix+key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[sqlitestore.Get] query")
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO authkit_kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		s.prefix+key, value,
	)
	return errors.Wrap(err, "[sqlitestore.Set] upsert")
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM authkit_kv WHERE key = ?", s.prefix+key,
	)
	return errors.Wrap(err, "[sqlitestore.Remove] delete")
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM authkit_kv WHERE key LIKE ? ESCAPE '\\'", likePattern(s.prefix),
	)
	return errors.Wrap(err, "[sqlitestore.Clear] delete")
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// likePattern escapes LIKE metacharacters in the prefix so "app_1." does not
// match "appX1.".
func likePattern(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+8)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '%' || c == '_' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return string(escaped) + "%"
}
