package journal

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/journal/internal/address"
	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/layout"
	"github.com/roach88/journal/internal/ledger"
)

// DefaultProgramID is the program identity used when none is configured.
var DefaultProgramID = ir.MustParsePubkey("J8mEW9bBCMRQ9aGr3WHFv4fdRyj4pEHUHJzPyAaWGXrC")

// Program executes journal operations for one program identity.
// It holds no state of its own; everything lives in the ledger.
type Program struct {
	ID ir.Pubkey
}

// New returns a Program for the given identity.
func New(id ir.Pubkey) *Program {
	return &Program{ID: id}
}

// Effect reports where an operation wrote and the lamports it moved.
type Effect struct {
	Address   ir.Pubkey
	Rent      uint64 // Paid by the signer into new storage
	Reclaimed uint64 // Returned to the signer by delete
}

// Invocation is what the environment supplies to every mutating operation.
type Invocation struct {
	// Tx is the atomic unit the operation runs in.
	Tx ledger.Tx

	// Signer is the caller identity whose signature was verified.
	Signer ir.Pubkey

	// Now is the timestamp handed to the operation, Unix seconds.
	Now int64

	// Bump optionally names the bump the caller expects for the address
	// the operation targets. A value other than the canonical bump fails
	// with ErrWrongAddress.
	Bump *uint8
}

// resolve derives the canonical address of k and checks the caller's
// bump, if one was supplied, against it.
func (p *Program) resolve(k address.Key, bump *uint8) (ir.Pubkey, uint8, error) {
	addr, canonical, err := address.Derive(p.ID, k)
	if err != nil {
		return ir.Pubkey{}, 0, err
	}
	if bump != nil && *bump != canonical {
		return ir.Pubkey{}, 0, newError(CodeWrongAddress,
			map[string]string{"bump": fmt.Sprint(*bump), "canonical": fmt.Sprint(canonical)},
			"bump %d does not reproduce the %s address of %s", *bump, k.Tag, k.Owner)
	}
	return addr, canonical, nil
}

// account fetches the program-owned account at addr. A missing account
// is reported as missing; an account owned by anything else is at the
// wrong address as far as this program is concerned.
func (p *Program) account(ctx context.Context, tx ledger.Tx, addr ir.Pubkey, missing *Error) (ledger.Account, error) {
	acct, err := tx.Get(ctx, addr)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return ledger.Account{}, missing
	}
	if err != nil {
		return ledger.Account{}, err
	}
	if acct.Owner != p.ID {
		return ledger.Account{}, newError(CodeWrongAddress,
			map[string]string{"address": addr.String(), "owner": acct.Owner.String()},
			"account %s is not owned by the program", addr)
	}
	return acct, nil
}

// loadCounter resolves and decodes the counter for owner.
func (p *Program) loadCounter(ctx context.Context, tx ledger.Tx, owner ir.Pubkey, bump *uint8) (ledger.Account, Counter, error) {
	key := address.CounterKey(owner)
	addr, _, err := p.resolve(key, bump)
	if err != nil {
		return ledger.Account{}, Counter{}, err
	}
	missing := newError(CodeCounterNotInitialized, map[string]string{"owner": owner.String()},
		"no counter for %s", owner)
	acct, err := p.account(ctx, tx, addr, missing)
	if err != nil {
		return ledger.Account{}, Counter{}, err
	}

	var c Counter
	if err := c.UnmarshalBinary(acct.Data); err != nil {
		return ledger.Account{}, Counter{}, wrongData(addr, err)
	}
	if c.Owner != owner {
		return ledger.Account{}, Counter{}, wrongData(addr, fmt.Errorf("stored owner %s", c.Owner))
	}
	if err := address.Verify(p.ID, key, addr, c.Bump); err != nil {
		return ledger.Account{}, Counter{}, wrongData(addr, err)
	}
	return acct, c, nil
}

// loadRecord resolves and decodes the record (owner, sequence).
func (p *Program) loadRecord(ctx context.Context, tx ledger.Tx, owner ir.Pubkey, sequence uint64, bump *uint8) (ledger.Account, Record, error) {
	key := address.RecordKey(owner, sequence)
	addr, _, err := p.resolve(key, bump)
	if err != nil {
		return ledger.Account{}, Record{}, err
	}
	missing := newError(CodeNotFound,
		map[string]string{"owner": owner.String(), "sequence": fmt.Sprint(sequence)},
		"no record %d for %s", sequence, owner)
	acct, err := p.account(ctx, tx, addr, missing)
	if err != nil {
		return ledger.Account{}, Record{}, err
	}

	r, err := p.decodeRecord(key, acct)
	if err != nil {
		return ledger.Account{}, Record{}, err
	}
	return acct, r, nil
}

// decodeRecord decodes acct and checks it really is the record for key:
// the stored sequence and owner match and the stored bump reproduces the
// account's address.
func (p *Program) decodeRecord(key address.Key, acct ledger.Account) (Record, error) {
	var r Record
	if err := r.UnmarshalBinary(acct.Data); err != nil {
		return Record{}, wrongData(acct.Address, err)
	}
	if r.Owner != key.Owner || !bytesEqual(address.Uint64Seed(r.Sequence), key.Extra) {
		return Record{}, wrongData(acct.Address, fmt.Errorf("stored key (%s, %d)", r.Owner, r.Sequence))
	}
	if err := address.Verify(p.ID, key, acct.Address, r.Bump); err != nil {
		return Record{}, wrongData(acct.Address, err)
	}
	return r, nil
}

func wrongData(addr ir.Pubkey, cause error) *Error {
	return newError(CodeWrongAddress, map[string]string{"address": addr.String()},
		"account %s does not hold the expected data: %v", addr, cause)
}

func requireSigner(signer, want ir.Pubkey, what string) error {
	if signer != want {
		return newError(CodeUnauthorized,
			map[string]string{"signer": signer.String(), "required": want.String()},
			"%s requires signature of %s", what, want)
	}
	return nil
}

// fitContent applies the title and body bounds. Text is stored byte for
// byte as given, so it must be valid UTF-8 to survive the operation log.
func fitContent(title, body string) error {
	fields := []struct {
		name, value string
		tooLong     Code
		max         int
	}{
		{"title", title, CodeTitleTooLong, layout.MaxTitleChars},
		{"body", body, CodeMessageTooLong, layout.MaxBodyChars},
	}
	for _, f := range fields {
		err := layout.FieldOf(layout.KindRecord, f.name).Fit(f.value)
		switch {
		case errors.Is(err, layout.ErrInvalidText):
			return newError(CodeInvalidText, map[string]string{"field": f.name}, "%s is not valid UTF-8", f.name)
		case err != nil:
			return newError(f.tooLong, nil, "%s exceeds %d characters", f.name, f.max)
		}
	}
	return nil
}

// nextSequence returns the counter value after s, refusing to wrap.
func nextSequence(s uint64) (uint64, error) {
	if s == math.MaxUint64 {
		return 0, newError(CodeOverflow, map[string]string{"next_sequence": fmt.Sprint(s)},
			"sequence counter is exhausted at %d", s)
	}
	return s + 1, nil
}

func bytesEqual(a, b []byte) bool {
	return string(a) == string(b)
}
