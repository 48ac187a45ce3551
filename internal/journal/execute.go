package journal

import (
	"context"
	"fmt"

	"github.com/roach88/journal/internal/ir"
)

// Result describes what an executed instruction did.
type Result struct {
	Kind      ir.OpKind `json:"kind"`
	Address   ir.Pubkey `json:"address"`             // Account the instruction targeted
	Sequence  uint64    `json:"sequence"`            // Record sequence; 0 for initialize_counter
	Rent      uint64    `json:"rent,omitempty"`      // Lamports moved into new storage
	Reclaimed uint64    `json:"reclaimed,omitempty"` // Lamports returned by delete
	Counter   *Counter  `json:"counter,omitempty"`
	Record    *Record   `json:"record,omitempty"`
	Logs      []string  `json:"logs"`
}

// Execute runs one instruction. The instruction's signer must already be
// verified; inv.Signer and inv.Bump are taken from it.
func (p *Program) Execute(ctx context.Context, inv Invocation, in ir.Instruction) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if !in.Kind.IsProgramOp() {
		return Result{}, fmt.Errorf("%s is not a program instruction", in.Kind)
	}
	if in.Program != p.ID {
		return Result{}, fmt.Errorf("instruction addressed to program %s, this is %s", in.Program, p.ID)
	}
	inv.Signer = in.Signer
	inv.Bump = in.Bump

	res := Result{Kind: in.Kind}
	var (
		eff Effect
		err error
	)
	switch in.Kind {
	case ir.OpInitializeCounter:
		var c Counter
		if c, eff, err = p.InitializeCounter(ctx, inv, in.Owner); err != nil {
			return Result{}, err
		}
		res.Counter = &c
		res.Logs = append(res.Logs, fmt.Sprintf("Counter initialized for %s", in.Owner))

	case ir.OpCreateRecord:
		var r Record
		if r, eff, err = p.CreateRecord(ctx, inv, in.Owner, in.Title, in.Body); err != nil {
			return Result{}, err
		}
		res.Sequence = r.Sequence
		res.Record = &r
		res.Logs = append(res.Logs, fmt.Sprintf("Journal entry %d created. Title: %s", r.Sequence, r.Title))

	case ir.OpUpdateRecord:
		var r Record
		if r, eff, err = p.UpdateRecord(ctx, inv, in.Owner, in.Sequence, in.Title, in.Body); err != nil {
			return Result{}, err
		}
		res.Sequence = r.Sequence
		res.Record = &r
		res.Logs = append(res.Logs, fmt.Sprintf("Journal entry %d updated. Title: %s", r.Sequence, r.Title))

	case ir.OpDeleteRecord:
		if eff, err = p.DeleteRecord(ctx, inv, in.Owner, in.Sequence); err != nil {
			return Result{}, err
		}
		res.Sequence = in.Sequence
		res.Logs = append(res.Logs, fmt.Sprintf("Journal entry %d deleted", in.Sequence))
	}
	res.Address, res.Rent, res.Reclaimed = eff.Address, eff.Rent, eff.Reclaimed
	return res, nil
}
