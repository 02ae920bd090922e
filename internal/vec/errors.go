package vec

import "errors"

var (
	// ErrDegenerateVector is returned when an operation needs a direction
	// but was given the zero vector.
	ErrDegenerateVector = errors.New("vec: degenerate (zero) vector")

	// ErrNotInvertible is returned when inverting a matrix whose
	// determinant is within InvertEpsilon of zero.
	ErrNotInvertible = errors.New("vec: matrix is not invertible")
)
