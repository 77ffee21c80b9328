package dbml

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every SyntaxError.
var ErrSyntax = errors.New("dbml: syntax error")

// SyntaxError describes a construct that does not fit the grammar. It is
// only reported by a strict Parse.
type SyntaxError struct {
	Pos   Position
	Msg   string
	Cause error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dbml: %s: %s: %v", e.Pos, e.Msg, e.Cause)
	}
	return fmt.Sprintf("dbml: %s: %s", e.Pos, e.Msg)
}

// Unwrap returns the underlying error.
func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// IsSyntaxError returns true if the error is a SyntaxError.
func IsSyntaxError(err error) bool {
	var e *SyntaxError
	return errors.As(err, &e)
}
