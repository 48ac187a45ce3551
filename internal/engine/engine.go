package engine

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/ledger"
)

// Engine is the execution environment around the journal program.
//
// For every submitted instruction it verifies the signature, stamps the
// operation with an id, a seq and a timestamp, runs the program inside one
// ledger.Update, and appends the operation to the log in that same unit.
// Rejected operations are logged too, in a separate write after the
// rollback.
//
// Thread-safety: Submit, Execute and Airdrop are safe for concurrent use.
// They are serialized, so the log's seq order is also its commit order.
type Engine struct {
	ledger  ledger.Ledger
	program *journal.Program
	clock   *Clock
	ids     IDGenerator
	time    TimeSource
	logger  *slog.Logger

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator replaces the UUIDv7 operation id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithTimeSource replaces the wall clock.
func WithTimeSource(t TimeSource) Option {
	return func(e *Engine) { e.time = t }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the logical clock instead of resuming from the log.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an Engine over l running p. Unless WithClock is given, the
// logical clock resumes after the last logged operation.
func New(ctx context.Context, l ledger.Ledger, p *journal.Program, opts ...Option) (*Engine, error) {
	e := &Engine{
		ledger:  l,
		program: p,
		ids:     UUIDv7Generator{},
		time:    SystemTime{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		last, err := lastSeq(ctx, l)
		if err != nil {
			return nil, fmt.Errorf("resume clock: %w", err)
		}
		e.clock = NewClockAt(last)
	}
	return e, nil
}

// Program returns the program the engine runs.
func (e *Engine) Program() *journal.Program {
	return e.program
}

// Receipt reports what happened to one operation.
type Receipt struct {
	ID         string          `json:"id"`
	Seq        int64           `json:"seq"`
	Kind       ir.OpKind       `json:"kind"`
	ExecutedAt int64           `json:"executed_at"`
	Outcome    string          `json:"outcome"`
	Result     *journal.Result `json:"result,omitempty"`
	Balance    uint64          `json:"balance,omitempty"` // Recipient balance after an airdrop
	Logs       []string        `json:"logs"`
}

// Submit runs a signed instruction.
//
// On rejection the returned error is a *RejectedError and the receipt
// carries the logged outcome. Any other error means nothing was decided
// and nothing was logged.
func (e *Engine) Submit(ctx context.Context, signed ir.SignedInstruction) (Receipt, error) {
	// The log keeps canonical args; an instruction without an exact
	// canonical form could not be replayed as it ran.
	if _, err := signed.Instruction.CanonicalArgs(); err != nil {
		return Receipt{}, fmt.Errorf("submit: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	op := ir.Operation{
		ID:          e.ids.Generate(),
		Seq:         e.clock.Next(),
		Instruction: signed.Instruction,
		Signature:   signed.Signature,
		ExecutedAt:  e.time.Now(),
	}
	return e.run(ctx, op)
}

// Execute signs in with key and submits it.
func (e *Engine) Execute(ctx context.Context, key ed25519.PrivateKey, in ir.Instruction) (Receipt, error) {
	if in.Program.IsZero() {
		in.Program = e.program.ID
	}
	signed, err := ir.Sign(key, in)
	if err != nil {
		return Receipt{}, err
	}
	return e.Submit(ctx, signed)
}

// Airdrop credits lamports to the plain balance of to.
func (e *Engine) Airdrop(ctx context.Context, to ir.Pubkey, lamports uint64) (Receipt, error) {
	return e.Submit(ctx, ir.SignedInstruction{Instruction: ir.Instruction{
		Kind:     ir.OpAirdrop,
		Program:  e.program.ID,
		Signer:   to,
		Owner:    to,
		Lamports: lamports,
	}})
}

func (e *Engine) run(ctx context.Context, op ir.Operation) (Receipt, error) {
	in := op.Instruction
	log := e.logger.With("op", op.ID, "seq", op.Seq, "kind", in.Kind)
	log.Debug("operation received", "signer", in.Signer, "owner", in.Owner)

	rec, err := apply(ctx, e.ledger, e.program, &op)
	if err != nil {
		if op.Outcome == "" {
			log.Error("operation failed", "err", err)
			return Receipt{}, err
		}
		log.Warn("operation rejected", "outcome", op.Outcome, "err", err)
		return rec, &RejectedError{OpID: op.ID, Seq: op.Seq, Outcome: op.Outcome, Err: err}
	}

	attrs := []any{"owner", in.Owner}
	if rec.Result != nil {
		attrs = append(attrs, "address", rec.Result.Address, "sequence", rec.Result.Sequence)
	}
	log.Info("operation committed", attrs...)
	return rec, nil
}

// apply decides op against l. Submit and Replay both go through here, so
// a replayed operation takes exactly the path the original took.
//
// On return op.Outcome is OutcomeOK, a rejection code, or "" when the
// error was not a decision.
func apply(ctx context.Context, l ledger.Ledger, p *journal.Program, op *ir.Operation) (Receipt, error) {
	op.Outcome = ""
	rec := Receipt{ID: op.ID, Seq: op.Seq, Kind: op.Instruction.Kind, ExecutedAt: op.ExecutedAt}

	err := authorize(p, *op)
	if err == nil {
		err = l.Update(ctx, func(tx ledger.Tx) error {
			if err := execute(ctx, tx, p, *op, &rec); err != nil {
				return err
			}
			op.Outcome = ir.OutcomeOK
			return tx.AppendOperation(ctx, *op)
		})
	}
	if err == nil {
		rec.Outcome = ir.OutcomeOK
		return rec, nil
	}

	rec.Result, rec.Balance = nil, 0
	op.Outcome = OutcomeOf(err)
	if op.Outcome == "" {
		return Receipt{}, err
	}
	rec.Outcome = op.Outcome
	rec.Logs = []string{"Error: " + err.Error()}

	if logErr := l.Update(ctx, func(tx ledger.Tx) error {
		return tx.AppendOperation(ctx, *op)
	}); logErr != nil {
		return rec, errors.Join(err, fmt.Errorf("log rejection: %w", logErr))
	}
	return rec, err
}

// authorize checks everything the environment owns before the program
// runs: structure, target program, and the signature.
func authorize(p *journal.Program, op ir.Operation) error {
	in := op.Instruction
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	if in.Program != p.ID {
		return fmt.Errorf("%w: %s", ErrWrongProgram, in.Program)
	}
	if in.Kind == ir.OpAirdrop {
		return nil
	}
	if !(ir.SignedInstruction{Instruction: in, Signature: op.Signature}).Verify() {
		return fmt.Errorf("%w: signer %s", ErrBadSignature, in.Signer)
	}
	return nil
}

func execute(ctx context.Context, tx ledger.Tx, p *journal.Program, op ir.Operation, rec *Receipt) error {
	in := op.Instruction
	if in.Kind == ir.OpAirdrop {
		bal, err := ledger.Airdrop(ctx, tx, in.Owner, in.Lamports)
		if err != nil {
			return err
		}
		rec.Balance = bal
		rec.Logs = []string{fmt.Sprintf("Airdropped %d lamports to %s", in.Lamports, in.Owner)}
		return nil
	}

	res, err := p.Execute(ctx, journal.Invocation{Tx: tx, Now: op.ExecutedAt}, in)
	if err != nil {
		return err
	}
	rec.Result = &res
	rec.Logs = res.Logs
	return nil
}

// History returns the operation log ordered by seq.
func (e *Engine) History(ctx context.Context) ([]ir.Operation, error) {
	var ops []ir.Operation
	err := e.ledger.View(ctx, func(tx ledger.Tx) error {
		var err error
		ops, err = tx.Operations(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return ops, nil
}

func lastSeq(ctx context.Context, l ledger.Ledger) (int64, error) {
	var last int64
	err := l.View(ctx, func(tx ledger.Tx) error {
		ops, err := tx.Operations(ctx)
		if err != nil {
			return err
		}
		if len(ops) > 0 {
			last = ops[len(ops)-1].Seq
		}
		return nil
	})
	return last, err
}
