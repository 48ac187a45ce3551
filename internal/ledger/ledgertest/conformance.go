// Package ledgertest holds the behavioral suite every ledger.Ledger
// implementation must pass.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/layout"
	"github.com/roach88/journal/internal/ledger"
)

// Key returns a pubkey filled with b, handy for readable fixtures.
func Key(b byte) ir.Pubkey {
	var pk ir.Pubkey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

var errBoom = errors.New("boom")

// Run executes the suite against ledgers produced by open.
func Run(t *testing.T, open func(t *testing.T) ledger.Ledger) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		l := open(t)
		err := l.View(ctx, func(tx ledger.Tx) error {
			_, err := tx.Get(ctx, Key(1))
			return err
		})
		assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})

	t.Run("PutGet", func(t *testing.T) {
		l := open(t)
		want := ledger.Account{Address: Key(1), Owner: Key(9), Lamports: 10, Data: []byte{1, 2, 3}}
		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			return tx.Put(ctx, want)
		}))

		var got ledger.Account
		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			var err error
			got, err = tx.Get(ctx, Key(1))
			return err
		}))
		assert.Equal(t, want, got)
	})

	t.Run("FailedUpdateRollsBack", func(t *testing.T) {
		l := open(t)
		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			return tx.Put(ctx, ledger.Account{Address: Key(1), Lamports: 1})
		}))

		err := l.Update(ctx, func(tx ledger.Tx) error {
			require.NoError(t, tx.Put(ctx, ledger.Account{Address: Key(1), Lamports: 99}))
			require.NoError(t, tx.Put(ctx, ledger.Account{Address: Key(2), Lamports: 5}))
			require.NoError(t, tx.AppendOperation(ctx, ir.Operation{ID: "op-1", Seq: 1, Outcome: ir.OutcomeOK}))
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			a, err := tx.Get(ctx, Key(1))
			require.NoError(t, err)
			assert.Equal(t, uint64(1), a.Lamports)

			_, err = tx.Get(ctx, Key(2))
			assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

			ops, err := tx.Operations(ctx)
			require.NoError(t, err)
			assert.Empty(t, ops)
			return nil
		}))
	})

	t.Run("Delete", func(t *testing.T) {
		l := open(t)
		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			require.NoError(t, tx.Put(ctx, ledger.Account{Address: Key(1)}))
			require.NoError(t, tx.Delete(ctx, Key(1)))
			return tx.Delete(ctx, Key(2))
		}))
		err := l.View(ctx, func(tx ledger.Tx) error {
			_, err := tx.Get(ctx, Key(1))
			return err
		})
		assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})

	t.Run("ScanOrderedAndFiltered", func(t *testing.T) {
		l := open(t)
		program := Key(9)
		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			for _, a := range []ledger.Account{
				{Address: Key(3), Owner: program, Data: make([]byte, 4)},
				{Address: Key(1), Owner: program, Data: make([]byte, 2)},
				{Address: Key(2), Owner: ir.ZeroPubkey},
			} {
				if err := tx.Put(ctx, a); err != nil {
					return err
				}
			}
			return nil
		}))

		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			all, err := tx.Scan(ctx, ledger.Filter{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []ir.Pubkey{Key(1), Key(2), Key(3)}, addresses(all))

			owned, err := tx.Scan(ctx, ledger.Filter{Owner: &program})
			require.NoError(t, err)
			assert.Equal(t, []ir.Pubkey{Key(1), Key(3)}, addresses(owned))

			sized, err := tx.Scan(ctx, ledger.Filter{Owner: &program, DataSize: 4})
			require.NoError(t, err)
			assert.Equal(t, []ir.Pubkey{Key(3)}, addresses(sized))
			return nil
		}))
	})

	t.Run("OperationLogOrdered", func(t *testing.T) {
		l := open(t)
		in := ir.Instruction{Kind: ir.OpDeleteRecord, Program: Key(9), Signer: Key(1), Owner: Key(1), Sequence: 4}
		for seq := int64(1); seq <= 3; seq++ {
			op := ir.Operation{ID: fmt.Sprintf("op-%d", seq), Seq: seq, Instruction: in, Signature: []byte{byte(seq)}, ExecutedAt: 1700000000 + seq, Outcome: ir.OutcomeOK}
			require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
				return tx.AppendOperation(ctx, op)
			}))
		}

		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			ops, err := tx.Operations(ctx)
			require.NoError(t, err)
			require.Len(t, ops, 3)
			for i, op := range ops {
				assert.Equal(t, int64(i+1), op.Seq)
				assert.Equal(t, in, op.Instruction)
				assert.Equal(t, []byte{byte(i + 1)}, op.Signature)
				assert.True(t, op.Committed())
			}
			return nil
		}))
	})

	t.Run("ViewIsReadOnly", func(t *testing.T) {
		l := open(t)
		err := l.View(ctx, func(tx ledger.Tx) error {
			return tx.Put(ctx, ledger.Account{Address: Key(1)})
		})
		assert.ErrorIs(t, err, ledger.ErrReadOnly)
	})

	t.Run("AllocateAndReclaim", func(t *testing.T) {
		l := open(t)
		payer, addr, program := Key(1), Key(2), Key(9)
		data := make([]byte, layout.SizeOf(layout.KindCounter))
		rent := layout.MinimumBalance(len(data))

		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			_, err := ledger.Airdrop(ctx, tx, payer, rent+100)
			return err
		}))

		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			paid, err := ledger.Allocate(ctx, tx, payer, addr, program, data)
			require.NoError(t, err)
			assert.Equal(t, rent, paid)
			return nil
		}))

		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			bal, err := ledger.Balance(ctx, tx, payer)
			require.NoError(t, err)
			assert.Equal(t, uint64(100), bal)

			acct, err := tx.Get(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, program, acct.Owner)
			assert.Equal(t, rent, acct.Lamports)
			assert.Len(t, acct.Data, len(data))
			return nil
		}))

		err := l.Update(ctx, func(tx ledger.Tx) error {
			_, err := ledger.Allocate(ctx, tx, payer, addr, program, data)
			return err
		})
		assert.ErrorIs(t, err, ledger.ErrAccountExists)

		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			got, err := ledger.Reclaim(ctx, tx, addr, payer)
			require.NoError(t, err)
			assert.Equal(t, rent, got)
			return nil
		}))

		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			bal, err := ledger.Balance(ctx, tx, payer)
			require.NoError(t, err)
			assert.Equal(t, rent+100, bal)
			_, err = tx.Get(ctx, addr)
			assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
			return nil
		}))
	})

	t.Run("AllocateTakesOverPlainAccount", func(t *testing.T) {
		l := open(t)
		payer, addr, program := Key(1), Key(2), Key(9)
		data := make([]byte, 10)
		rent := layout.MinimumBalance(len(data))

		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			if _, err := ledger.Airdrop(ctx, tx, payer, rent); err != nil {
				return err
			}
			_, err := ledger.Airdrop(ctx, tx, addr, 40)
			return err
		}))

		require.NoError(t, l.Update(ctx, func(tx ledger.Tx) error {
			paid, err := ledger.Allocate(ctx, tx, payer, addr, program, data)
			require.NoError(t, err)
			assert.Equal(t, rent-40, paid)
			return nil
		}))

		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			bal, err := ledger.Balance(ctx, tx, payer)
			require.NoError(t, err)
			assert.Equal(t, uint64(40), bal)

			acct, err := tx.Get(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, program, acct.Owner)
			assert.Equal(t, rent, acct.Lamports)
			assert.Len(t, acct.Data, len(data))
			return nil
		}))
	})

	t.Run("AirdropZero", func(t *testing.T) {
		l := open(t)
		err := l.Update(ctx, func(tx ledger.Tx) error {
			_, err := ledger.Airdrop(ctx, tx, Key(3), 0)
			return err
		})
		assert.ErrorIs(t, err, ledger.ErrZeroLamports)

		require.NoError(t, l.View(ctx, func(tx ledger.Tx) error {
			_, err := tx.Get(ctx, Key(3))
			assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
			return nil
		}))
	})

	t.Run("AllocateInsufficientFunds", func(t *testing.T) {
		l := open(t)
		err := l.Update(ctx, func(tx ledger.Tx) error {
			_, err := ledger.Allocate(ctx, tx, Key(1), Key(2), Key(9), make([]byte, 10))
			return err
		})
		assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	})
}

func addresses(accts []ledger.Account) []ir.Pubkey {
	out := make([]ir.Pubkey, len(accts))
	for i, a := range accts {
		out[i] = a.Address
	}
	return out
}
