package ndstream

import "github.com/erizocosmico/ndstream/ndarray"

// Named reductions over the builtin operators. The Running variants are
// lazy and yield one partial result per consumed array; the plain
// variants consume the stream and return the final value.

// RunningSum is the streaming sum of the arrays in the stream.
func RunningSum[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*Reduction[T], error) {
	return Reduce(s, Add[T](), opts)
}

// Sum returns the total sum of the arrays in the stream.
func Sum[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	return Fold(s, Add[T](), opts)
}

// RunningProd is the streaming product of the arrays in the stream.
func RunningProd[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*Reduction[T], error) {
	return Reduce(s, Multiply[T](), opts)
}

// Prod returns the total product of the arrays in the stream.
func Prod[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	return Fold(s, Multiply[T](), opts)
}

// RunningMax is the streaming elementwise maximum of the stream.
func RunningMax[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*Reduction[T], error) {
	return Reduce(s, Maximum[T](), opts)
}

// Max returns the elementwise maximum over the whole stream.
func Max[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	return Fold(s, Maximum[T](), opts)
}

// RunningMin is the streaming elementwise minimum of the stream.
func RunningMin[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*Reduction[T], error) {
	return Reduce(s, Minimum[T](), opts)
}

// Min returns the elementwise minimum over the whole stream.
func Min[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	return Fold(s, Minimum[T](), opts)
}

// RunningAll is the streaming LogicalAnd reduction of the stream.
func RunningAll[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*Reduction[T], error) {
	return Reduce(s, LogicalAnd[T](), opts)
}

// RunningAny is the streaming LogicalOr reduction of the stream.
func RunningAny[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*Reduction[T], error) {
	return Reduce(s, LogicalOr[T](), opts)
}

// All reduces the stream with LogicalAnd: the result is 1 where every
// array is non-zero.
func All[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	return Fold(s, LogicalAnd[T](), opts)
}

// Any reduces the stream with LogicalOr: the result is 1 where at least
// one array is non-zero.
func Any[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	return Fold(s, LogicalOr[T](), opts)
}

// Sub folds the stream with subtraction: the first array minus every
// following one. Subtraction is not associative, so the result depends
// on stream order.
func Sub[T ndarray.Number](s Stream[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	return Fold(s, Subtract[T](), opts)
}
