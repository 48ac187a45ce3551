package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/journal/internal/address"
	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/ledger"
)

// InitializeCounter creates owner's counter with next_sequence 0. The
// signer pays for the storage and must be the owner.
//
// Lamports already sitting at the counter address are kept; the signer
// only pays the rest of the rent.
func (p *Program) InitializeCounter(ctx context.Context, inv Invocation, owner ir.Pubkey) (Counter, Effect, error) {
	if err := requireSigner(inv.Signer, owner, "initialize_counter"); err != nil {
		return Counter{}, Effect{}, err
	}
	addr, bump, err := p.resolve(address.CounterKey(owner), inv.Bump)
	if err != nil {
		return Counter{}, Effect{}, err
	}

	acct, err := inv.Tx.Get(ctx, addr)
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
	case err != nil:
		return Counter{}, Effect{}, err
	case acct.Owner == p.ID:
		var existing Counter
		if err := existing.UnmarshalBinary(acct.Data); err != nil || existing.Owner != owner {
			return Counter{}, Effect{}, wrongData(addr, fmt.Errorf("occupied by non-counter data"))
		}
		return Counter{}, Effect{}, newError(CodeAlreadyInitialized,
			map[string]string{"owner": owner.String(), "address": addr.String()},
			"counter for %s already exists", owner)
	}

	c := Counter{Owner: owner, NextSequence: 0, Bump: bump}
	data, err := c.MarshalBinary()
	if err != nil {
		return Counter{}, Effect{}, fmt.Errorf("encode counter: %w", err)
	}
	paid, err := ledger.Allocate(ctx, inv.Tx, inv.Signer, addr, p.ID, data)
	if err != nil {
		return Counter{}, Effect{}, err
	}
	return c, Effect{Address: addr, Rent: paid}, nil
}

// FetchCounter returns owner's counter.
func (p *Program) FetchCounter(ctx context.Context, tx ledger.Tx, owner ir.Pubkey) (Counter, error) {
	c, _, err := p.LocateCounter(ctx, tx, owner)
	return c, err
}

// LocateCounter returns owner's counter and the address it is stored at.
func (p *Program) LocateCounter(ctx context.Context, tx ledger.Tx, owner ir.Pubkey) (Counter, ir.Pubkey, error) {
	acct, c, err := p.loadCounter(ctx, tx, owner, nil)
	if err != nil {
		return Counter{}, ir.Pubkey{}, err
	}
	return c, acct.Address, nil
}

// CounterAddress returns the derived address and bump of owner's counter.
func (p *Program) CounterAddress(owner ir.Pubkey) (ir.Pubkey, uint8, error) {
	return address.Derive(p.ID, address.CounterKey(owner))
}
