package compiler

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind classifies what a compilation rejected.
type ErrorKind int

const (
	// UnknownOperator: the token names no registered operator and does
	// not parse as a number.
	UnknownOperator ErrorKind = iota
	// InvalidParameter: the :param is not numeric, not finite, out of
	// the operator's range, or the operator takes none.
	InvalidParameter
	// MissingParameter: the operator requires a :param (delay).
	MissingParameter
	// StackUnderflow: the operator pops more values than the program
	// has produced at that point.
	StackUnderflow
	// StackOverflow: the program's depth would exceed the machine's
	// stack capacity.
	StackOverflow
	// InsufficientOutputs: a full evaluation would leave an empty
	// stack, so there is nothing to play.
	InsufficientOutputs
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownOperator:
		return "unknown operator"
	case InvalidParameter:
		return "invalid parameter"
	case MissingParameter:
		return "missing parameter"
	case StackUnderflow:
		return "stack underflow"
	case StackOverflow:
		return "stack overflow"
	case InsufficientOutputs:
		return "insufficient outputs"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error reports why a token sequence failed to compile, pointing at the
// offending token. Sequence-level failures (InsufficientOutputs) carry
// Index -1 and a zero ID.
type Error struct {
	Kind  ErrorKind
	Index int       // position of the offending token in the sequence
	ID    uuid.UUID // identity of the offending token
	Text  string    // text of the offending token
	Hint  string    // short explanation, e.g. "pops 2, have 1"
}

func (e *Error) Error() string {
	if e.Index < 0 {
		if e.Hint != "" {
			return fmt.Sprintf("program: %s (%s)", e.Kind, e.Hint)
		}
		return fmt.Sprintf("program: %s", e.Kind)
	}
	if e.Hint != "" {
		return fmt.Sprintf("op %d %q: %s (%s)", e.Index, e.Text, e.Kind, e.Hint)
	}
	return fmt.Sprintf("op %d %q: %s", e.Index, e.Text, e.Kind)
}

func errAt(kind ErrorKind, i int, op TextOp, hint string) *Error {
	return &Error{Kind: kind, Index: i, ID: op.ID, Text: op.Text, Hint: hint}
}
