package ndstream

import "github.com/erizocosmico/ndstream/ndarray"

// Operator is a named binary elementwise function that a reduction folds
// with. The engine requires operators that preserve their input type;
// boolean-valued operators such as comparisons are rejected.
type Operator[T ndarray.Number] struct {
	// Name identifies the operator across the worker process boundary.
	Name string
	// Func is the binary kernel.
	Func ndarray.BinaryFunc[T]
	// Identity is the value e such that Func(e, x) == x, or nil when the
	// operator has none. Required to neutralize ignored NaN entries.
	Identity *T
	// Boolean marks operators that always yield 0 or 1 regardless of
	// input, which cannot be accumulated.
	Boolean bool
	// NonAssociative marks operators such as subtraction. They still
	// reduce sequentially but are not valid for the parallel fold.
	NonAssociative bool
	// NonCommutative operators cannot be combined in arrival order by the
	// unordered parallel fold.
	NonCommutative bool
}

func identity[T ndarray.Number](v T) *T {
	return &v
}

// Add is elementwise addition, with identity 0.
func Add[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name:     "add",
		Func:     func(a, b T) T { return a + b },
		Identity: identity[T](0),
	}
}

// Multiply is elementwise multiplication, with identity 1.
func Multiply[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name:     "multiply",
		Func:     func(a, b T) T { return a * b },
		Identity: identity[T](1),
	}
}

// Maximum is the elementwise maximum. It has no identity value, so NaNs
// cannot be ignored while reducing with it.
func Maximum[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name: "maximum",
		Func: func(a, b T) T {
			if b > a {
				return b
			}
			return a
		},
	}
}

// Minimum is the elementwise minimum. It has no identity value.
func Minimum[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name: "minimum",
		Func: func(a, b T) T {
			if b < a {
				return b
			}
			return a
		},
	}
}

// LogicalAnd treats elements as truth values: the result is 1 when both
// are non-zero. Its identity is 1.
func LogicalAnd[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name: "logical_and",
		Func: func(a, b T) T {
			if a != 0 && b != 0 {
				return 1
			}
			return 0
		},
		Identity: identity[T](1),
	}
}

// LogicalOr treats elements as truth values: the result is 1 when either
// is non-zero. Its identity is 0.
func LogicalOr[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name: "logical_or",
		Func: func(a, b T) T {
			if a != 0 || b != 0 {
				return 1
			}
			return 0
		},
		Identity: identity[T](0),
	}
}

// Subtract is elementwise subtraction. It is neither associative nor
// commutative and only meaningful for strictly ordered sequential
// reductions.
func Subtract[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name:           "subtract",
		Func:           func(a, b T) T { return a - b },
		NonAssociative: true,
		NonCommutative: true,
	}
}

// Greater is the elementwise comparison a > b. It always yields 0 or 1
// and therefore cannot be used with a reduction.
func Greater[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name: "greater",
		Func: func(a, b T) T {
			if a > b {
				return 1
			}
			return 0
		},
		Boolean: true,
	}
}

// Less is the elementwise comparison a < b. It always yields 0 or 1 and
// therefore cannot be used with a reduction.
func Less[T ndarray.Number]() Operator[T] {
	return Operator[T]{
		Name: "less",
		Func: func(a, b T) T {
			if a < b {
				return 1
			}
			return 0
		},
		Boolean: true,
	}
}
