package nurbs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by this package. Callers match them with
// [errors.Is]; returned errors may wrap a sentinel with additional context.
var (
	// ErrInvalidArgument reports malformed numeric input to a pure function:
	// an empty knot vector, a non-positive degree or control point count, a
	// non-square matrix, or mismatched dimensions between two vectors.
	ErrInvalidArgument = errors.New("nurbs: invalid argument")

	// ErrOutOfDomain reports an evaluation parameter outside the knot
	// vector's valid domain.
	ErrOutOfDomain = errors.New("nurbs: parameter out of domain")

	// ErrDivideByZero reports a numeric degeneracy: normalizing a
	// zero-magnitude vector, or a rational weight evaluating to zero during
	// the perspective divide.
	ErrDivideByZero = errors.New("nurbs: division by zero")
)

// StateError reports an operation attempted before the geometry satisfied its
// preconditions. Missing lists every unsatisfied precondition, not just the
// first one encountered.
type StateError struct {
	Op      string
	Missing []string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("nurbs: %s requires %s to be set", e.Op, strings.Join(e.Missing, ", "))
}
