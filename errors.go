package ndstream

import "errors"

var (
	// ErrStreamExhausted is returned when pulling from a stream that has
	// no more elements.
	ErrStreamExhausted = errors.New("ndstream: stream exhausted")
	// ErrInvalidOperator is returned when a reduction is built from an
	// operator with no kernel.
	ErrInvalidOperator = errors.New("ndstream: invalid operator")
	// ErrUnsupportedOperator is returned for operators that do not
	// preserve their input type, such as comparisons. They can be reduced
	// but not accumulated.
	ErrUnsupportedOperator = errors.New("ndstream: operator does not preserve type")
	// ErrIdentityRequired is returned when NaNs should be ignored but the
	// operator has no identity element to replace them with.
	ErrIdentityRequired = errors.New("ndstream: operator has no identity value")
	// ErrAxisOutOfRange is returned when reducing along an axis that does
	// not exist in the arrays of the stream.
	ErrAxisOutOfRange = errors.New("ndstream: axis out of range")
)
