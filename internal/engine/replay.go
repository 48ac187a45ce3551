package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/ledger"
)

// Divergence is one difference between the recorded and replayed runs.
type Divergence struct {
	// Seq and OpID locate the operation; zero/empty for account differences.
	Seq  int64  `json:"seq,omitempty"`
	OpID string `json:"op_id,omitempty"`

	// Address is set for account differences.
	Address string `json:"address,omitempty"`

	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	Operations  int          `json:"operations"`
	Committed   int          `json:"committed"`
	Rejected    int          `json:"rejected"`
	Accounts    int          `json:"accounts"`
	Divergences []Divergence `json:"divergences"`
}

// Identical reports whether the replay reproduced the recorded run.
func (r ReplayReport) Identical() bool {
	return len(r.Divergences) == 0
}

// Replay re-executes the engine's operation log against an empty in-memory
// ledger and compares every outcome and the final account set with what
// the ledger holds.
//
// Replay uses the recorded ids, seqs, timestamps and signatures. It never
// writes to the engine's ledger.
func (e *Engine) Replay(ctx context.Context) (ReplayReport, error) {
	var (
		ops      []ir.Operation
		accounts []ledger.Account
	)
	err := e.ledger.View(ctx, func(tx ledger.Tx) error {
		var err error
		if ops, err = tx.Operations(ctx); err != nil {
			return err
		}
		accounts, err = tx.Scan(ctx, ledger.Filter{})
		return err
	})
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: read log: %w", err)
	}
	return Replay(ctx, e.program, ops, accounts)
}

// Replay re-executes ops from an empty ledger and compares the result with
// the recorded outcomes and the expected final accounts.
func Replay(ctx context.Context, p *journal.Program, ops []ir.Operation, want []ledger.Account) (ReplayReport, error) {
	report := ReplayReport{Divergences: []Divergence{}}
	mem := ledger.NewMemory()

	for _, recorded := range ops {
		op := recorded
		if _, err := apply(ctx, mem, p, &op); err != nil && op.Outcome == "" {
			return report, fmt.Errorf("replay op %s (seq %d): %w", recorded.ID, recorded.Seq, err)
		}

		report.Operations++
		if op.Committed() {
			report.Committed++
		} else {
			report.Rejected++
		}
		if op.Outcome != recorded.Outcome {
			report.Divergences = append(report.Divergences, Divergence{
				Seq:      recorded.Seq,
				OpID:     recorded.ID,
				Recorded: recorded.Outcome,
				Replayed: op.Outcome,
			})
		}
	}

	var got []ledger.Account
	err := mem.View(ctx, func(tx ledger.Tx) error {
		var err error
		got, err = tx.Scan(ctx, ledger.Filter{})
		return err
	})
	if err != nil {
		return report, fmt.Errorf("replay: read result: %w", err)
	}
	report.Accounts = len(got)
	report.Divergences = append(report.Divergences, diffAccounts(want, got)...)
	return report, nil
}

// diffAccounts compares two address-ordered account lists.
func diffAccounts(want, got []ledger.Account) []Divergence {
	var out []Divergence
	i, j := 0, 0
	for i < len(want) || j < len(got) {
		switch {
		case j >= len(got) || (i < len(want) && bytes.Compare(want[i].Address[:], got[j].Address[:]) < 0):
			out = append(out, Divergence{Address: want[i].Address.String(), Recorded: describe(want[i]), Replayed: "absent"})
			i++
		case i >= len(want) || bytes.Compare(want[i].Address[:], got[j].Address[:]) > 0:
			out = append(out, Divergence{Address: got[j].Address.String(), Recorded: "absent", Replayed: describe(got[j])})
			j++
		default:
			if !sameAccount(want[i], got[j]) {
				out = append(out, Divergence{Address: want[i].Address.String(), Recorded: describe(want[i]), Replayed: describe(got[j])})
			}
			i++
			j++
		}
	}
	return out
}

func sameAccount(a, b ledger.Account) bool {
	return a.Owner == b.Owner && a.Lamports == b.Lamports && bytes.Equal(a.Data, b.Data)
}

func describe(a ledger.Account) string {
	return fmt.Sprintf("owner=%s lamports=%d data=%d bytes", a.Owner, a.Lamports, len(a.Data))
}
