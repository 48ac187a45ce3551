package ledger

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/roach88/journal/internal/ir"
)

// Memory is an in-process Ledger backed by a B-tree ordered by address.
//
// Update clones the tree (copy-on-write, O(1)) and swaps the clone in only
// when the callback succeeds, so a failed callback leaves no trace.
// Updates are serialized; a View sees the last commit and never blocks
// the next Update once its snapshot is taken.
type Memory struct {
	mu       sync.Mutex
	accounts *btree.BTreeG[Account]
	ops      []ir.Operation
}

func lessAccount(a, b Account) bool {
	return bytes.Compare(a.Address[:], b.Address[:]) < 0
}

// NewMemory returns an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{accounts: btree.NewG(32, lessAccount)}
}

// Update implements Ledger.
func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{accounts: m.accounts.Clone(), ops: m.ops[:len(m.ops):len(m.ops)]}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.accounts = tx.accounts
	m.ops = tx.ops
	return nil
}

// View implements Ledger.
func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	// Clone mutates the source tree's copy-on-write context, so it needs
	// the write lock even for readers.
	m.mu.Lock()
	tx := &memoryTx{accounts: m.accounts.Clone(), ops: m.ops[:len(m.ops):len(m.ops)], readOnly: true}
	m.mu.Unlock()
	return fn(tx)
}

type memoryTx struct {
	accounts *btree.BTreeG[Account]
	ops      []ir.Operation
	readOnly bool
}

func (tx *memoryTx) Get(ctx context.Context, addr ir.Pubkey) (Account, error) {
	acct, ok := tx.accounts.Get(Account{Address: addr})
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct.Clone(), nil
}

func (tx *memoryTx) Put(ctx context.Context, a Account) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.accounts.ReplaceOrInsert(a.Clone())
	return nil
}

func (tx *memoryTx) Delete(ctx context.Context, addr ir.Pubkey) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.accounts.Delete(Account{Address: addr})
	return nil
}

func (tx *memoryTx) Scan(ctx context.Context, f Filter) ([]Account, error) {
	result := []Account{}
	tx.accounts.Ascend(func(a Account) bool {
		if f.Match(a) {
			result = append(result, a.Clone())
		}
		return true
	})
	return result, nil
}

func (tx *memoryTx) AppendOperation(ctx context.Context, op ir.Operation) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.ops = append(tx.ops, op)
	return nil
}

func (tx *memoryTx) Operations(ctx context.Context) ([]ir.Operation, error) {
	ops := make([]ir.Operation, len(tx.ops))
	copy(ops, tx.ops)
	return ops, nil
}
