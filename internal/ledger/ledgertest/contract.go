// Package ledgertest holds the behavior every ledger backend must share.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/proligent/internal/ledger"
)

// Run exercises a fresh ledger returned by open.
func Run(t *testing.T, open func(t *testing.T) ledger.Ledger) {
	t.Helper()

	t.Run("record then replay", func(t *testing.T) {
		ctx := context.Background()
		l := open(t)
		first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

		fresh, err := l.Record(ctx, ledger.Entry{
			Fingerprint: "3F2504E0-4F89-11D3-9A0C-0305E82C3301",
			Source:      "Proligent_a.xml",
			Valid:       true,
			RecordedAt:  first,
		})
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = l.Record(ctx, ledger.Entry{
			Fingerprint: "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
			Source:      "Proligent_b.xml",
			RecordedAt:  first.Add(time.Hour),
		})
		require.NoError(t, err)
		assert.False(t, fresh, "fingerprints compare without case")

		got, err := l.Lookup(ctx, "3F2504E0-4F89-11D3-9A0C-0305E82C3301")
		require.NoError(t, err)
		assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", got.Fingerprint)
		assert.Equal(t, "Proligent_a.xml", got.Source)
		assert.True(t, got.Valid)
		assert.True(t, first.Equal(got.RecordedAt))
	})

	t.Run("lookup missing", func(t *testing.T) {
		l := open(t)
		_, err := l.Lookup(context.Background(), "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("empty fingerprint", func(t *testing.T) {
		l := open(t)
		_, err := l.Record(context.Background(), ledger.Entry{Fingerprint: "  "})
		require.Error(t, err)
	})

	t.Run("list is ordered", func(t *testing.T) {
		ctx := context.Background()
		l := open(t)
		base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		for i, fp := range []string{"c", "a", "b"} {
			_, err := l.Record(ctx, ledger.Entry{Fingerprint: fp, Source: fp + ".xml", RecordedAt: base.Add(time.Duration(i) * time.Millisecond)})
			require.NoError(t, err)
		}
		entries, err := l.List(ctx)
		require.NoError(t, err)
		got := make([]string, 0, len(entries))
		for _, e := range entries {
			got = append(got, e.Fingerprint)
		}
		assert.Equal(t, []string{"c", "a", "b"}, got)
	})

	t.Run("zero time is stamped", func(t *testing.T) {
		ctx := context.Background()
		l := open(t)
		before := time.Now().Add(-time.Second)
		_, err := l.Record(ctx, ledger.Entry{Fingerprint: "stamp"})
		require.NoError(t, err)
		got, err := l.Lookup(ctx, "stamp")
		require.NoError(t, err)
		assert.True(t, got.RecordedAt.After(before))
		assert.Equal(t, time.UTC, got.RecordedAt.Location())
	})
}
