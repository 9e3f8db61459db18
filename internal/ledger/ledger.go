// Package ledger records the DataSourceFingerprint of every payload seen so
// replays of the same acquisition can be detected.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Driver identifies a ledger backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrNotFound is returned by Lookup for an unknown fingerprint.
var ErrNotFound = errors.New("ledger: fingerprint not found")

// Entry is the first sighting of a fingerprint.
type Entry struct {
	RecordedAt  time.Time `json:"recorded_at"`
	Fingerprint string    `json:"fingerprint"`
	Source      string    `json:"source"`
	Valid       bool      `json:"valid"`
}

// Ledger stores entries keyed by fingerprint. Record keeps the first entry
// and reports whether e was new; a replay leaves the stored entry untouched.
type Ledger interface {
	Record(ctx context.Context, e Entry) (bool, error)
	Lookup(ctx context.Context, fingerprint string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// Canonical lowercases and trims a fingerprint; GUIDs compare without case.
func Canonical(fingerprint string) string {
	return strings.ToLower(strings.TrimSpace(fingerprint))
}

// Normalize canonicalizes the fingerprint and stamps a zero RecordedAt with
// the current time, in UTC. An empty fingerprint is an error.
func Normalize(e Entry) (Entry, error) {
	e.Fingerprint = Canonical(e.Fingerprint)
	if e.Fingerprint == "" {
		return Entry{}, fmt.Errorf("record fingerprint: empty fingerprint")
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	e.RecordedAt = e.RecordedAt.UTC()
	return e, nil
}
