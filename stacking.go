package ndstream

import "github.com/erizocosmico/ndstream/ndarray"

// Stack materializes the whole stream into a single dense array. With
// axis -1 the arrays are stacked along a new trailing dimension; with an
// existing axis they are concatenated along it. Only concatenation along
// the last existing axis is supported.
func Stack[T ndarray.Number](s Stream[T], axis int) (*ndarray.Array[T], error) {
	arrays, err := Collect(s)
	if err != nil {
		return nil, err
	}

	if len(arrays) == 0 {
		return nil, ErrStreamExhausted
	}

	if axis == stackingAxis {
		return ndarray.StackLast(arrays)
	}

	if axis != arrays[0].NDim()-1 {
		return nil, ErrAxisOutOfRange
	}

	return ndarray.ConcatLast(arrays)
}
