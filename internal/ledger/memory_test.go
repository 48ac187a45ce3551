package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/ledger"
	"github.com/roach88/journal/internal/ledger/ledgertest"
)

func TestMemoryConformance(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		return ledger.NewMemory()
	})
}

func TestMemoryViewIsSnapshot(t *testing.T) {
	ctx := context.Background()
	m := ledger.NewMemory()
	require.NoError(t, m.Update(ctx, func(tx ledger.Tx) error {
		return tx.Put(ctx, ledger.Account{Address: ledgertest.Key(1), Lamports: 1})
	}))

	err := m.View(ctx, func(view ledger.Tx) error {
		require.NoError(t, m.Update(ctx, func(tx ledger.Tx) error {
			return tx.Put(ctx, ledger.Account{Address: ledgertest.Key(1), Lamports: 2})
		}))
		a, err := view.Get(ctx, ledgertest.Key(1))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), a.Lamports)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := ledger.NewMemory()
	data := []byte{1, 2, 3}
	require.NoError(t, m.Update(ctx, func(tx ledger.Tx) error {
		return tx.Put(ctx, ledger.Account{Address: ledgertest.Key(1), Data: data})
	}))
	data[0] = 9

	require.NoError(t, m.View(ctx, func(tx ledger.Tx) error {
		a, err := tx.Get(ctx, ledgertest.Key(1))
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, a.Data)
		a.Data[1] = 9

		again, err := tx.Get(ctx, ledgertest.Key(1))
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, again.Data)
		return nil
	}))
}

func TestFilterMatch(t *testing.T) {
	program := ledgertest.Key(9)
	a := ledger.Account{Owner: program, Data: make([]byte, 3)}

	assert.True(t, ledger.Filter{}.Match(a))
	assert.True(t, ledger.Filter{Owner: &program, DataSize: 3}.Match(a))
	assert.False(t, ledger.Filter{DataSize: 4}.Match(a))
	other := ledgertest.Key(8)
	assert.False(t, ledger.Filter{Owner: &other}.Match(a))
}
