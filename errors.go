package gosolve

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is; every request-level failure
// except ErrDomain aborts the pipeline and is rendered as a single error step.
var (
	// ErrParse is the class of every *ParseError.
	ErrParse = errors.New("gosolve: parse error")

	// ErrNoValidInput indicates that no equation or inequality survived
	// clause splitting and the tautology filter.
	ErrNoValidInput = errors.New("gosolve: no valid equations found")

	// ErrUnsupportedSystem indicates a non-linear system that one-pass
	// substitution could not reduce.
	ErrUnsupportedSystem = errors.New("gosolve: unsupported system")

	// ErrUnsupportedInequality indicates an inequality of degree > 2,
	// a non-polynomial one, or one in more than one variable.
	ErrUnsupportedInequality = errors.New("gosolve: unsupported inequality")

	// ErrDidNotConverge indicates the numeric root finder exhausted its
	// iteration budget.
	ErrDidNotConverge = errors.New("gosolve: root finder did not converge")

	// ErrDomain indicates that a float evaluation is undefined at a point
	// (division by zero, even root of a negative, log of a non-positive).
	// It is local to one evaluation and never aborts a request.
	ErrDomain = errors.New("gosolve: undefined at point")

	// ErrNotUnivariate indicates a sample request over an expression with
	// more than one free symbol.
	ErrNotUnivariate = errors.New("gosolve: expression must have at most one free symbol")
)

// ParseError reports malformed input. Pos is the 0-based rune offset into
// the normalized input text.
type ParseError struct {
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gosolve: parse error at position %d: %s", e.Pos, e.Reason)
}

// Unwrap lets errors.Is(err, ErrParse) match any *ParseError.
func (e *ParseError) Unwrap() error { return ErrParse }

// solveErrorf tags err with the operation that produced it.
func solveErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// domainErrorf builds an ErrDomain with a reason.
func domainErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDomain, fmt.Sprintf(format, args...))
}
