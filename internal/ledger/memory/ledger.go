// Package memory implements a process-local fingerprint ledger.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jacoelho/proligent/internal/ledger"
)

// Ledger keeps entries in a map. It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]ledger.Entry
}

// New returns an empty ledger.
func New() *Ledger { return &Ledger{entries: make(map[string]ledger.Entry)} }

func (l *Ledger) Record(_ context.Context, e ledger.Entry) (bool, error) {
	e, err := ledger.Normalize(e)
	if err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, seen := l.entries[e.Fingerprint]; seen {
		return false, nil
	}
	l.entries[e.Fingerprint] = e
	return true, nil
}

func (l *Ledger) Lookup(_ context.Context, fingerprint string) (ledger.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[ledger.Canonical(fingerprint)]
	if !ok {
		return ledger.Entry{}, fmt.Errorf("%s: %w", fingerprint, ledger.ErrNotFound)
	}
	return e, nil
}

// List returns entries ordered by recording time, then fingerprint.
func (l *Ledger) List(_ context.Context) ([]ledger.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ledger.Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].Fingerprint < out[j].Fingerprint
	})
	return out, nil
}

func (l *Ledger) Close() error { return nil }
