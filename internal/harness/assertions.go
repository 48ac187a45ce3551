package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/ledger"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluate checks every assertion inside one read-only view and returns
// the failure messages.
func (h *Harness) evaluate(ctx context.Context, result *Result, assertions []Assertion) []string {
	var errs []string
	err := h.ledger.View(ctx, func(tx ledger.Tx) error {
		for i, a := range assertions {
			if err := h.check(ctx, tx, result, a); err != nil {
				errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
			}
		}
		return nil
	})
	if err != nil {
		errs = append(errs, fmt.Sprintf("read ledger: %v", err))
	}
	return errs
}

func (h *Harness) check(ctx context.Context, tx ledger.Tx, result *Result, a Assertion) error {
	owner := h.actors[a.Owner]

	switch a.Type {
	case AssertCounter:
		c, err := h.program.FetchCounter(ctx, tx, owner)
		if err != nil {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("counter for %s", a.Owner), Actual: h.redactErr(err)}
		}
		if c.NextSequence != *a.NextSequence {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("next_sequence %d", *a.NextSequence),
				Actual:   fmt.Sprintf("next_sequence %d", c.NextSequence),
			}
		}

	case AssertRecord:
		r, err := h.program.FetchRecord(ctx, tx, owner, a.Sequence)
		if err != nil {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("record %s/%d", a.Owner, a.Sequence), Actual: h.redactErr(err)}
		}
		if a.Title != nil && r.Title != *a.Title {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("title %q", *a.Title), Actual: fmt.Sprintf("title %q", r.Title)}
		}
		if a.Body != nil && r.Body != *a.Body {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("body %q", *a.Body), Actual: fmt.Sprintf("body %q", r.Body)}
		}

	case AssertRecordAbsent:
		_, err := h.program.FetchRecord(ctx, tx, owner, a.Sequence)
		if err == nil {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("no record %s/%d", a.Owner, a.Sequence), Actual: "record exists"}
		}
		if !errors.Is(err, journal.ErrNotFound) {
			return &AssertionError{Type: a.Type, Expected: string(journal.CodeNotFound), Actual: h.redactErr(err)}
		}

	case AssertRecords:
		records, err := h.program.ListRecords(ctx, tx, owner)
		if err != nil && !errors.Is(err, journal.ErrCounterNotInitialized) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("records %v", a.Sequences), Actual: h.redactErr(err)}
		}
		got := []uint64{}
		for _, r := range records {
			got = append(got, r.Sequence)
		}
		if !slices.Equal(got, a.Sequences) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("records %v", a.Sequences), Actual: fmt.Sprintf("records %v", got)}
		}

	case AssertBalance:
		bal, err := ledger.Balance(ctx, tx, h.actors[a.Actor])
		if err != nil {
			return err
		}
		if bal != *a.Lamports {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s holds %d lamports", a.Actor, *a.Lamports),
				Actual:   fmt.Sprintf("%d lamports", bal),
			}
		}

	case AssertOutcomeCount:
		if n := result.Outcomes()[a.Outcome]; n != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d step(s) with outcome %s", a.Count, a.Outcome),
				Actual:   fmt.Sprintf("%d", n),
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func (h *Harness) redactErr(err error) string {
	return h.redact([]string{err.Error()})[0]
}
