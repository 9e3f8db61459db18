// Package sqlite opens a fingerprint ledger stored in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/jacoelho/proligent/internal/ledger"
)

// DefaultPath is used when Open is given an empty path.
const DefaultPath = "proligent-ledger.db"

// Open opens (creating if needed) the ledger database at path. The special
// path ":memory:" keeps the ledger in memory for the life of the handle.
func Open(ctx context.Context, path string) (*ledger.SQLStore, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// shared across queries.
	db.SetMaxOpenConns(1)
	store, err := ledger.NewSQLStore(ctx, db, ledger.SQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
