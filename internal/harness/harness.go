package harness

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/journal/internal/engine"
	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/ledger"
	"github.com/roach88/journal/internal/testutil"
)

// Harness executes one scenario against a fresh engine.
type Harness struct {
	ledger  *ledger.Memory
	engine  *engine.Engine
	program *journal.Program
	keys    map[string]ed25519.PrivateKey
	actors  map[string]ir.Pubkey
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh in-memory ledger, sequential operation ids
// ("op-0001", ...) and a time source stepping one second per operation
// from testutil.DefaultEpoch. A returned error means the scenario could
// not be executed at all; failed expectations are reported in Result.
//
// Execution flow:
// 1. Submit every step, checking its expect clause
// 2. Evaluate assertions against the final ledger
// 3. Replay the operation log and require identical results
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := newHarness(ctx, scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}
	}

	for _, msg := range h.evaluate(ctx, result, scenario.Assertions) {
		result.AddError(msg)
	}

	report, err := h.engine.Replay(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if !report.Identical() {
		for _, d := range report.Divergences {
			result.AddError(fmt.Sprintf("replay diverged at seq %d: recorded %s, replayed %s", d.Seq, d.Recorded, d.Replayed))
		}
	}

	return result, nil
}

func newHarness(ctx context.Context, scenario *Scenario) (*Harness, error) {
	programID := journal.DefaultProgramID
	if scenario.Program != "" {
		id, err := ir.ParsePubkey(scenario.Program)
		if err != nil {
			return nil, fmt.Errorf("program: %w", err)
		}
		programID = id
	}

	l := ledger.NewMemory()
	p := journal.New(programID)
	eng, err := engine.New(ctx, l, p,
		engine.WithIDGenerator(testutil.NewSequentialIDs("op")),
		engine.WithTimeSource(testutil.NewSteppingTime(0, 1)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	h := &Harness{
		ledger:  l,
		engine:  eng,
		program: p,
		keys:    make(map[string]ed25519.PrivateKey, len(scenario.Actors)),
		actors:  make(map[string]ir.Pubkey, len(scenario.Actors)),
	}
	for _, name := range scenario.Actors {
		h.keys[name] = testutil.Keypair(name)
		h.actors[name] = testutil.Identity(name)
	}
	return h, nil
}

// executeStep submits one step and records it in the trace. Rejections
// are results, not errors; only an undecided operation returns an error.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	signer := step.Signer
	kind := ir.OpKind(step.Op)
	if signer == "" || kind == ir.OpAirdrop {
		signer = step.Owner
	}

	var (
		rec engine.Receipt
		err error
	)
	if kind == ir.OpAirdrop {
		rec, err = h.engine.Airdrop(ctx, h.actors[step.Owner], step.Lamports)
	} else {
		rec, err = h.engine.Execute(ctx, h.keys[signer], ir.Instruction{
			Kind:     kind,
			Signer:   h.actors[signer],
			Owner:    h.actors[step.Owner],
			Sequence: step.Sequence,
			Title:    step.Title,
			Body:     step.Body,
			Bump:     step.Bump,
		})
	}
	if err != nil && !engine.IsRejected(err) {
		return err
	}

	ev := TraceEvent{
		Seq:     rec.Seq,
		ID:      rec.ID,
		Op:      step.Op,
		Signer:  signer,
		Owner:   step.Owner,
		Args:    traceArgs(step),
		Outcome: rec.Outcome,
	}
	if rec.Outcome == ir.OutcomeOK {
		if rec.Result != nil && kind != ir.OpInitializeCounter {
			seq := rec.Result.Sequence
			ev.Sequence = &seq
		}
		ev.Logs = h.redact(rec.Logs)
	}
	result.Trace = append(result.Trace, ev)

	want := Expect{Outcome: ir.OutcomeOK}
	if step.Expect != nil {
		want = *step.Expect
	}
	if ev.Outcome != want.Outcome {
		msg := fmt.Sprintf("steps[%d] %s: outcome %s, want %s", index, step.Op, ev.Outcome, want.Outcome)
		if err != nil {
			msg += " (" + h.redact([]string{err.Error()})[0] + ")"
		}
		result.AddError(msg)
		return nil
	}
	if want.Sequence != nil && (ev.Sequence == nil || *ev.Sequence != *want.Sequence) {
		got := "none"
		if ev.Sequence != nil {
			got = fmt.Sprint(*ev.Sequence)
		}
		result.AddError(fmt.Sprintf("steps[%d] %s: sequence %s, want %d", index, step.Op, got, *want.Sequence))
	}
	return nil
}

// traceArgs returns the arguments meaningful for the step's op.
func traceArgs(step Step) map[string]any {
	args := map[string]any{}
	switch ir.OpKind(step.Op) {
	case ir.OpCreateRecord:
		args["title"] = step.Title
		args["body"] = step.Body
	case ir.OpUpdateRecord:
		args["sequence"] = step.Sequence
		args["title"] = step.Title
		args["body"] = step.Body
	case ir.OpDeleteRecord:
		args["sequence"] = step.Sequence
	case ir.OpAirdrop:
		args["lamports"] = step.Lamports
	}
	if step.Bump != nil {
		args["bump"] = *step.Bump
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

// redact replaces actor keys with actor names.
func (h *Harness) redact(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		for name, pk := range h.actors {
			line = strings.ReplaceAll(line, pk.String(), name)
		}
		out[i] = line
	}
	return out
}
