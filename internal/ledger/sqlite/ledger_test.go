package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/proligent/internal/ledger"
	"github.com/jacoelho/proligent/internal/ledger/ledgertest"
)

func TestLedgerFile(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "ledger.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestLedgerInMemory(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		store, err := Open(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestLedgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", store.Dialect().Name)
	fresh, err := store.Record(ctx, ledger.Entry{Fingerprint: "abc", Source: "a.xml", Valid: true})
	require.NoError(t, err)
	require.True(t, fresh)
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	fresh, err = store.Record(ctx, ledger.Entry{Fingerprint: "ABC", Source: "b.xml"})
	require.NoError(t, err)
	assert.False(t, fresh)
}
