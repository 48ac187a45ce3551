// Package ledger defines the account storage the journal program runs on.
//
// The storage medium is a flat map from 32-byte address to Account. It
// resolves exactly the address it is asked for; it never searches. Every
// mutation happens inside Ledger.Update, which commits all writes made by
// the callback or none of them.
//
// Two implementations exist: the SQLite store in internal/store (durable)
// and Memory in this package (B-tree with copy-on-write snapshots, used for
// replay and tests).
package ledger

import (
	"bytes"
	"context"
	"errors"

	"github.com/roach88/journal/internal/ir"
)

var (
	// ErrAccountNotFound means nothing is stored at the address.
	ErrAccountNotFound = errors.New("ledger: account not found")

	// ErrAccountExists means an allocation targeted an occupied address.
	ErrAccountExists = errors.New("ledger: account already exists")

	// ErrInsufficientFunds means the payer cannot fund an allocation.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrBalanceOverflow means a credit would overflow a u64 balance.
	ErrBalanceOverflow = errors.New("ledger: balance overflow")

	// ErrZeroLamports means a transfer of nothing was requested.
	ErrZeroLamports = errors.New("ledger: zero lamports")

	// ErrReadOnly is returned by writes inside View.
	ErrReadOnly = errors.New("ledger: write in read-only transaction")
)

// Account is one stored item.
type Account struct {
	Address  ir.Pubkey `json:"address"`
	Owner    ir.Pubkey `json:"owner"` // Controlling program; ZeroPubkey for plain balances
	Lamports uint64    `json:"lamports"`
	Data     []byte    `json:"data"`
}

// IsPlain reports whether a is a bare balance: no owner, no data.
func (a Account) IsPlain() bool {
	return a.Owner.IsZero() && len(a.Data) == 0
}

// Clone returns a deep copy.
func (a Account) Clone() Account {
	a.Data = bytes.Clone(a.Data)
	return a
}

// Filter narrows Scan. Zero values match everything.
type Filter struct {
	Owner    *ir.Pubkey
	DataSize int
}

// Match reports whether a passes the filter.
func (f Filter) Match(a Account) bool {
	if f.Owner != nil && a.Owner != *f.Owner {
		return false
	}
	if f.DataSize > 0 && len(a.Data) != f.DataSize {
		return false
	}
	return true
}

// Tx is the view of the ledger inside one atomic unit.
type Tx interface {
	// Get returns the account at addr or ErrAccountNotFound.
	Get(ctx context.Context, addr ir.Pubkey) (Account, error)

	// Put creates or overwrites the account at a.Address.
	Put(ctx context.Context, a Account) error

	// Delete removes the account at addr. Deleting nothing is not an error.
	Delete(ctx context.Context, addr ir.Pubkey) error

	// Scan returns matching accounts ordered by address.
	Scan(ctx context.Context, f Filter) ([]Account, error)

	// AppendOperation adds an entry to the operation log.
	AppendOperation(ctx context.Context, op ir.Operation) error

	// Operations returns the operation log ordered by seq.
	Operations(ctx context.Context) ([]ir.Operation, error)
}

// Ledger runs callbacks atomically.
type Ledger interface {
	// Update runs fn in a read-write unit. If fn returns an error nothing
	// it wrote becomes visible.
	Update(ctx context.Context, fn func(Tx) error) error

	// View runs fn against a consistent read-only snapshot.
	View(ctx context.Context, fn func(Tx) error) error
}
