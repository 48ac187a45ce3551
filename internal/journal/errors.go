package journal

import (
	"errors"
	"fmt"
)

// Category groups error codes by what went wrong.
type Category string

const (
	CategoryValidation    Category = "VALIDATION"
	CategoryState         Category = "STATE"
	CategoryArithmetic    Category = "ARITHMETIC"
	CategoryAuthorization Category = "AUTHORIZATION"
)

// Code identifies one rejected precondition.
type Code string

const (
	CodeTitleTooLong          Code = "TITLE_TOO_LONG"
	CodeMessageTooLong        Code = "MESSAGE_TOO_LONG"
	CodeInvalidText           Code = "INVALID_TEXT"
	CodeAlreadyInitialized    Code = "ALREADY_INITIALIZED"
	CodeNotFound              Code = "NOT_FOUND"
	CodeWrongAddress          Code = "WRONG_ADDRESS"
	CodeCounterNotInitialized Code = "COUNTER_NOT_INITIALIZED"
	CodeOverflow              Code = "OVERFLOW"
	CodeUnauthorized          Code = "UNAUTHORIZED"
)

var categories = map[Code]Category{
	CodeTitleTooLong:          CategoryValidation,
	CodeMessageTooLong:        CategoryValidation,
	CodeInvalidText:           CategoryValidation,
	CodeAlreadyInitialized:    CategoryState,
	CodeNotFound:              CategoryState,
	CodeWrongAddress:          CategoryState,
	CodeCounterNotInitialized: CategoryState,
	CodeOverflow:              CategoryArithmetic,
	CodeUnauthorized:          CategoryAuthorization,
}

// Error is a rejected program precondition.
//
// Two errors match under errors.Is when their codes are equal, so callers
// compare against the Err* sentinels:
//
//	if errors.Is(err, journal.ErrNotFound) { ... }
type Error struct {
	// Code identifies the precondition.
	Code Code

	// Category is derived from Code.
	Category Category

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// Sentinels for errors.Is.
var (
	ErrTitleTooLong          = &Error{Code: CodeTitleTooLong, Category: CategoryValidation}
	ErrMessageTooLong        = &Error{Code: CodeMessageTooLong, Category: CategoryValidation}
	ErrInvalidText           = &Error{Code: CodeInvalidText, Category: CategoryValidation}
	ErrAlreadyInitialized    = &Error{Code: CodeAlreadyInitialized, Category: CategoryState}
	ErrNotFound              = &Error{Code: CodeNotFound, Category: CategoryState}
	ErrWrongAddress          = &Error{Code: CodeWrongAddress, Category: CategoryState}
	ErrCounterNotInitialized = &Error{Code: CodeCounterNotInitialized, Category: CategoryState}
	ErrOverflow              = &Error{Code: CodeOverflow, Category: CategoryArithmetic}
	ErrUnauthorized          = &Error{Code: CodeUnauthorized, Category: CategoryAuthorization}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code Code, details map[string]string, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Category: categories[code],
		Message:  fmt.Sprintf(format, args...),
		Details:  details,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// CategoryOf returns the category of the first *Error in err's chain, or "".
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// IsProgramError reports whether err was raised by a program precondition
// rather than by the ledger or the environment.
func IsProgramError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
