package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const createTable = `CREATE TABLE IF NOT EXISTS fingerprint_ledger (
	fingerprint TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	valid INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
)`

// recordedLayout has a fixed width so recorded_at sorts as text.
const recordedLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Dialect adapts queries to a database/sql driver.
type Dialect struct {
	Name string
	// Placeholder returns the i-th (1-based) bind parameter.
	Placeholder func(i int) string
}

// SQLite uses ? parameters.
var SQLite = Dialect{Name: "sqlite", Placeholder: func(int) string { return "?" }}

// Postgres uses $n parameters.
var Postgres = Dialect{Name: "postgres", Placeholder: func(i int) string { return "$" + strconv.Itoa(i) }}

// SQLStore implements Ledger on a database/sql handle.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	insert  string
	lookup  string
}

// NewSQLStore ensures the ledger table exists and returns a store owning db.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create ledger table: %w", err)
	}
	p := dialect.Placeholder
	return &SQLStore{
		db:      db,
		dialect: dialect,
		insert: fmt.Sprintf(`INSERT INTO fingerprint_ledger(fingerprint, source, valid, recorded_at)
VALUES(%s, %s, %s, %s) ON CONFLICT (fingerprint) DO NOTHING`, p(1), p(2), p(3), p(4)),
		lookup: fmt.Sprintf(`SELECT fingerprint, source, valid, recorded_at FROM fingerprint_ledger WHERE fingerprint = %s`, p(1)),
	}, nil
}

// DB exposes the underlying handle for tests.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect returns the dialect the queries were built for.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) Record(ctx context.Context, e Entry) (bool, error) {
	e, err := Normalize(e)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, s.insert, e.Fingerprint, e.Source, boolToInt(e.Valid), e.RecordedAt.Format(recordedLayout))
	if err != nil {
		return false, fmt.Errorf("record fingerprint %s: %w", e.Fingerprint, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record fingerprint %s: %w", e.Fingerprint, err)
	}
	return n == 1, nil
}

func (s *SQLStore) Lookup(ctx context.Context, fingerprint string) (Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, s.lookup, Canonical(fingerprint)))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", fingerprint, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("lookup fingerprint %s: %w", fingerprint, err)
	}
	return e, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint, source, valid, recorded_at FROM fingerprint_ledger ORDER BY recorded_at, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return entries, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e        Entry
		valid    int64
		recorded string
	)
	if err := row.Scan(&e.Fingerprint, &e.Source, &valid, &recorded); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(recordedLayout, recorded)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at %q: %w", recorded, err)
	}
	e.Valid = valid != 0
	e.RecordedAt = t
	return e, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
