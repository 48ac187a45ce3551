package journal

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/roach88/journal/internal/address"
	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/layout"
	"github.com/roach88/journal/internal/ledger"
)

// CreateRecord stores a new record for owner at the counter's current
// next_sequence and advances the counter by one.
//
// Everything that can fail is checked before the first write: the bounds,
// the counter, the increment and the payer's funds.
func (p *Program) CreateRecord(ctx context.Context, inv Invocation, owner ir.Pubkey, title, body string) (Record, Effect, error) {
	if err := requireSigner(inv.Signer, owner, "create_record"); err != nil {
		return Record{}, Effect{}, err
	}
	if err := fitContent(title, body); err != nil {
		return Record{}, Effect{}, err
	}

	counterAcct, counter, err := p.loadCounter(ctx, inv.Tx, owner, nil)
	if err != nil {
		return Record{}, Effect{}, err
	}
	seq := counter.NextSequence
	next, err := nextSequence(seq)
	if err != nil {
		return Record{}, Effect{}, err
	}

	addr, bump, err := p.resolve(address.RecordKey(owner, seq), inv.Bump)
	if err != nil {
		return Record{}, Effect{}, err
	}

	r := Record{Owner: owner, Sequence: seq, Title: title, Body: body, UpdatedAt: inv.Now, Bump: bump}
	data, err := r.MarshalBinary()
	if err != nil {
		return Record{}, Effect{}, fmt.Errorf("encode record: %w", err)
	}
	paid, err := ledger.Allocate(ctx, inv.Tx, inv.Signer, addr, p.ID, data)
	if err != nil {
		return Record{}, Effect{}, err
	}

	counter.NextSequence = next
	if counterAcct.Data, err = counter.MarshalBinary(); err != nil {
		return Record{}, Effect{}, fmt.Errorf("encode counter: %w", err)
	}
	if err := inv.Tx.Put(ctx, counterAcct); err != nil {
		return Record{}, Effect{}, err
	}
	return r, Effect{Address: addr, Rent: paid}, nil
}

// UpdateRecord replaces the title and body of (owner, sequence) and
// refreshes its timestamp. Owner and sequence never change.
func (p *Program) UpdateRecord(ctx context.Context, inv Invocation, owner ir.Pubkey, sequence uint64, title, body string) (Record, Effect, error) {
	if err := fitContent(title, body); err != nil {
		return Record{}, Effect{}, err
	}
	acct, r, err := p.loadRecord(ctx, inv.Tx, owner, sequence, inv.Bump)
	if err != nil {
		return Record{}, Effect{}, err
	}
	if err := requireSigner(inv.Signer, r.Owner, "update_record"); err != nil {
		return Record{}, Effect{}, err
	}

	r.Title, r.Body, r.UpdatedAt = title, body, inv.Now
	if acct.Data, err = r.MarshalBinary(); err != nil {
		return Record{}, Effect{}, fmt.Errorf("encode record: %w", err)
	}
	if err := inv.Tx.Put(ctx, acct); err != nil {
		return Record{}, Effect{}, err
	}
	return r, Effect{Address: acct.Address}, nil
}

// DeleteRecord removes (owner, sequence) and credits its lamports to the
// signer. The counter is not touched, so the sequence number stays used.
func (p *Program) DeleteRecord(ctx context.Context, inv Invocation, owner ir.Pubkey, sequence uint64) (Effect, error) {
	acct, r, err := p.loadRecord(ctx, inv.Tx, owner, sequence, inv.Bump)
	if err != nil {
		return Effect{}, err
	}
	if err := requireSigner(inv.Signer, r.Owner, "delete_record"); err != nil {
		return Effect{}, err
	}
	reclaimed, err := ledger.Reclaim(ctx, inv.Tx, acct.Address, inv.Signer)
	if err != nil {
		return Effect{}, err
	}
	return Effect{Address: acct.Address, Reclaimed: reclaimed}, nil
}

// FetchRecord returns (owner, sequence).
func (p *Program) FetchRecord(ctx context.Context, tx ledger.Tx, owner ir.Pubkey, sequence uint64) (Record, error) {
	_, r, err := p.loadRecord(ctx, tx, owner, sequence, nil)
	return r, err
}

// StoredRecord is a record with the address it lives at.
type StoredRecord struct {
	Address ir.Pubkey
	Record  Record
}

// LocateRecord returns (owner, sequence) with its address.
func (p *Program) LocateRecord(ctx context.Context, tx ledger.Tx, owner ir.Pubkey, sequence uint64) (StoredRecord, error) {
	acct, r, err := p.loadRecord(ctx, tx, owner, sequence, nil)
	if err != nil {
		return StoredRecord{}, err
	}
	return StoredRecord{Address: acct.Address, Record: r}, nil
}

// ListRecords returns owner's live records in sequence order. The result
// is the set of sequences in [0, next_sequence) that still resolve; gaps
// left by deletion are skipped.
func (p *Program) ListRecords(ctx context.Context, tx ledger.Tx, owner ir.Pubkey) ([]Record, error) {
	stored, err := p.ListStoredRecords(ctx, tx, owner)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(stored))
	for i, s := range stored {
		records[i] = s.Record
	}
	return records, nil
}

// ListStoredRecords is ListRecords with each record's address.
//
// The ledger is scanned for program-owned records instead of probing every
// sequence, since next_sequence may be arbitrarily large.
func (p *Program) ListStoredRecords(ctx context.Context, tx ledger.Tx, owner ir.Pubkey) ([]StoredRecord, error) {
	counter, err := p.FetchCounter(ctx, tx, owner)
	if err != nil {
		return nil, err
	}

	accts, err := tx.Scan(ctx, ledger.Filter{Owner: &p.ID, DataSize: layout.SizeOf(layout.KindRecord)})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	stored := []StoredRecord{}
	for _, acct := range accts {
		var r Record
		if err := r.UnmarshalBinary(acct.Data); err != nil || r.Owner != owner || r.Sequence >= counter.NextSequence {
			continue
		}
		// Only records stored at their own derived address count.
		if _, err := p.decodeRecord(address.RecordKey(owner, r.Sequence), acct); err != nil {
			continue
		}
		stored = append(stored, StoredRecord{Address: acct.Address, Record: r})
	}
	slices.SortFunc(stored, func(a, b StoredRecord) int {
		return cmp.Compare(a.Record.Sequence, b.Record.Sequence)
	})
	return stored, nil
}

// RecordAddress returns the derived address and bump of (owner, sequence).
func (p *Program) RecordAddress(owner ir.Pubkey, sequence uint64) (ir.Pubkey, uint8, error) {
	return address.Derive(p.ID, address.RecordKey(owner, sequence))
}
