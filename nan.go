package ndstream

import "github.com/erizocosmico/ndstream/ndarray"

// ReplaceNaNs rewrites a stream so that every NaN element is replaced by
// fill, one array at a time. Arrays without NaNs pass through untouched.
// Composed upstream of a reduction this implements the ignore-NaN policy.
func ReplaceNaNs[T ndarray.Number](s Stream[T], fill T) Stream[T] {
	return mapped(s, func(a *ndarray.Array[T]) (*ndarray.Array[T], error) {
		return ndarray.ReplaceNaN(a, fill), nil
	})
}
