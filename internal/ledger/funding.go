package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/layout"
)

// Balance returns the lamports held at addr, zero if nothing is stored.
func Balance(ctx context.Context, tx Tx, addr ir.Pubkey) (uint64, error) {
	acct, err := tx.Get(ctx, addr)
	if errors.Is(err, ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// Airdrop credits lamports to a plain balance account and returns the new balance.
func Airdrop(ctx context.Context, tx Tx, to ir.Pubkey, lamports uint64) (uint64, error) {
	if lamports == 0 {
		return 0, fmt.Errorf("airdrop: %w", ErrZeroLamports)
	}
	if err := credit(ctx, tx, to, lamports); err != nil {
		return 0, fmt.Errorf("airdrop: %w", err)
	}
	return Balance(ctx, tx, to)
}

// Allocate creates an account at addr owned by program holding data, and
// tops it up from payer to the rent-exempt minimum for len(data) bytes.
// Returns the lamports taken from payer.
//
// A plain balance account (no owner, no data) already at addr is taken
// over with its lamports; any other occupant fails with ErrAccountExists.
// The allocation size is fixed for the account's lifetime.
func Allocate(ctx context.Context, tx Tx, payer, addr, program ir.Pubkey, data []byte) (uint64, error) {
	acct, err := tx.Get(ctx, addr)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		acct = Account{Address: addr}
	case err != nil:
		return 0, fmt.Errorf("allocate %s: %w", addr, err)
	case !acct.IsPlain():
		return 0, fmt.Errorf("allocate %s: %w", addr, ErrAccountExists)
	}

	var paid uint64
	if rent := layout.MinimumBalance(len(data)); acct.Lamports < rent {
		paid = rent - acct.Lamports
	}
	if paid > 0 {
		if err := debit(ctx, tx, payer, paid); err != nil {
			return 0, fmt.Errorf("allocate %s: %w", addr, err)
		}
	}

	acct.Owner = program
	acct.Lamports += paid
	acct.Data = data
	if err := tx.Put(ctx, acct); err != nil {
		return 0, fmt.Errorf("allocate %s: %w", addr, err)
	}
	return paid, nil
}

// Reclaim deletes the account at addr and credits its lamports to dest.
// Returns the reclaimed amount.
func Reclaim(ctx context.Context, tx Tx, addr, dest ir.Pubkey) (uint64, error) {
	acct, err := tx.Get(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("reclaim %s: %w", addr, err)
	}
	if err := tx.Delete(ctx, addr); err != nil {
		return 0, fmt.Errorf("reclaim %s: %w", addr, err)
	}
	if err := credit(ctx, tx, dest, acct.Lamports); err != nil {
		return 0, fmt.Errorf("reclaim %s: %w", addr, err)
	}
	return acct.Lamports, nil
}

func credit(ctx context.Context, tx Tx, addr ir.Pubkey, lamports uint64) error {
	acct, err := tx.Get(ctx, addr)
	if errors.Is(err, ErrAccountNotFound) {
		acct = Account{Address: addr, Owner: ir.ZeroPubkey}
	} else if err != nil {
		return err
	}
	if acct.Lamports > math.MaxUint64-lamports {
		return ErrBalanceOverflow
	}
	acct.Lamports += lamports
	return tx.Put(ctx, acct)
}

func debit(ctx context.Context, tx Tx, addr ir.Pubkey, lamports uint64) error {
	acct, err := tx.Get(ctx, addr)
	if errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("%w: %s holds 0, needs %d", ErrInsufficientFunds, addr, lamports)
	}
	if err != nil {
		return err
	}
	if acct.Lamports < lamports {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, addr, acct.Lamports, lamports)
	}
	acct.Lamports -= lamports
	return tx.Put(ctx, acct)
}
