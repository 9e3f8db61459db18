package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/proligent/internal/ledger"
	"github.com/jacoelho/proligent/internal/ledger/ledgertest"
)

const dsnEnv = "PROLIGENT_TEST_POSTGRES_DSN"

func TestLedger(t *testing.T) {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		store, err := Open(context.Background(), dsn)
		require.NoError(t, err)
		_, err = store.DB().Exec(`TRUNCATE fingerprint_ledger`)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestOpenUsesDefaultDSN(t *testing.T) {
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return nil, errors.New("stop")
	})
	defer restore()

	_, err := Open(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, DefaultDSN, gotDSN)
}

func TestOpenFailsWhenUnreachable(t *testing.T) {
	_, err := Open(context.Background(), "postgres://proligent@127.0.0.1:1/proligent?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", ledger.Postgres.Placeholder(1))
	assert.Equal(t, "$4", ledger.Postgres.Placeholder(4))
	assert.Equal(t, "?", ledger.SQLite.Placeholder(3))
}
