package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/ledger"
)

var (
	// ErrBadSignature means the instruction's signature does not verify
	// against its signer.
	ErrBadSignature = errors.New("engine: signature verification failed")

	// ErrInvalidInstruction means the instruction is structurally
	// incomplete (unknown kind, missing signer or owner).
	ErrInvalidInstruction = errors.New("engine: invalid instruction")

	// ErrWrongProgram means the instruction names another program.
	ErrWrongProgram = errors.New("engine: instruction addressed to another program")
)

// Outcome codes recorded for rejections raised outside the program.
const (
	OutcomeBadSignature       = "BAD_SIGNATURE"
	OutcomeInvalidInstruction = "INVALID_INSTRUCTION"
	OutcomeWrongProgram       = "WRONG_PROGRAM"
	OutcomeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	OutcomeAccountExists      = "ACCOUNT_EXISTS"
	OutcomeBalanceOverflow    = "BALANCE_OVERFLOW"
)

// OutcomeOf maps a rejection to the outcome code written to the operation
// log. It returns "" for errors that are not rejections (I/O failures,
// cancellation); those are not logged, since nothing was decided.
func OutcomeOf(err error) string {
	if code := journal.CodeOf(err); code != "" {
		return string(code)
	}
	switch {
	case errors.Is(err, ErrBadSignature):
		return OutcomeBadSignature
	case errors.Is(err, ErrInvalidInstruction), errors.Is(err, ledger.ErrZeroLamports):
		return OutcomeInvalidInstruction
	case errors.Is(err, ErrWrongProgram):
		return OutcomeWrongProgram
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return OutcomeInsufficientFunds
	case errors.Is(err, ledger.ErrAccountExists):
		return OutcomeAccountExists
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return OutcomeBalanceOverflow
	}
	return ""
}

// RejectedError is returned by Submit when an operation was decided and
// rejected. The rejection is in the operation log under OpID.
type RejectedError struct {
	// OpID identifies the logged operation.
	OpID string

	// Seq is the operation's logical sequence number.
	Seq int64

	// Outcome is the code recorded in the log.
	Outcome string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("operation %s rejected (%s): %v", e.OpID, e.Outcome, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *RejectedError) Unwrap() error {
	return e.Err
}

// IsRejected returns true if err is an operation rejection.
// Uses errors.As to handle wrapped errors.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}
