package memory_test

import (
	"testing"

	"github.com/jacoelho/proligent/internal/ledger"
	"github.com/jacoelho/proligent/internal/ledger/ledgertest"
	"github.com/jacoelho/proligent/internal/ledger/memory"
)

func TestLedger(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		l := memory.New()
		t.Cleanup(func() { _ = l.Close() })
		return l
	})
}
