package ndarray

import "fmt"

// BinaryFunc combines two elements into one.
type BinaryFunc[T Number] func(a, b T) T

// UnaryFunc transforms a single element.
type UnaryFunc[T Number] func(v T) T

// Combine applies f elementwise to a and b, storing the result in a. If b
// holds a single element it is broadcast against every element of a.
func (a *Array[T]) Combine(b *Array[T], f BinaryFunc[T]) error {
	if len(b.data) == 1 {
		v := b.data[0]
		for i := range a.data {
			a.data[i] = f(a.data[i], v)
		}
		return nil
	}

	if !a.shape.Equal(b.shape) {
		return fmt.Errorf("%w: %v and %v", ErrShapeMismatch, a.shape, b.shape)
	}

	for i := range a.data {
		a.data[i] = f(a.data[i], b.data[i])
	}

	return nil
}

// Combined applies f elementwise to a and b and returns a fresh array.
func Combined[T Number](a, b *Array[T], f BinaryFunc[T]) (*Array[T], error) {
	out := a.Clone()
	if err := out.Combine(b, f); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply transforms every element of the array in place.
func (a *Array[T]) Apply(f UnaryFunc[T]) {
	for i, v := range a.data {
		a.data[i] = f(v)
	}
}

// Mapped returns a fresh array with f applied to every element.
func Mapped[T Number](a *Array[T], f UnaryFunc[T]) *Array[T] {
	out := a.Clone()
	out.Apply(f)
	return out
}

// ReduceAxis folds the array along the given existing axis, producing an
// array whose shape is the input shape with that axis removed.
func ReduceAxis[T Number](a *Array[T], axis int, f BinaryFunc[T]) (*Array[T], error) {
	if axis < 0 || axis >= len(a.shape) {
		return nil, fmt.Errorf("ndarray: axis %d out of range for shape %v", axis, a.shape)
	}

	outer, inner := 1, 1
	for _, d := range a.shape[:axis] {
		outer *= d
	}
	for _, d := range a.shape[axis+1:] {
		inner *= d
	}
	n := a.shape[axis]

	shape := make(Shape, 0, len(a.shape)-1)
	shape = append(shape, a.shape[:axis]...)
	shape = append(shape, a.shape[axis+1:]...)

	out := &Array[T]{shape: shape, data: make([]T, outer*inner)}
	for o := 0; o < outer; o++ {
		base := o * n * inner
		copy(out.data[o*inner:(o+1)*inner], a.data[base:base+inner])
		for k := 1; k < n; k++ {
			row := base + k*inner
			for i := 0; i < inner; i++ {
				out.data[o*inner+i] = f(out.data[o*inner+i], a.data[row+i])
			}
		}
	}

	return out, nil
}

// ReduceAll folds every element of the array into a single value.
func ReduceAll[T Number](a *Array[T], f BinaryFunc[T]) T {
	acc := a.data[0]
	for _, v := range a.data[1:] {
		acc = f(acc, v)
	}
	return acc
}

// StackLast stacks equally-shaped arrays along a new trailing axis. For k
// arrays of shape s, the result has shape (s..., k).
func StackLast[T Number](arrays []*Array[T]) (*Array[T], error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("ndarray: cannot stack zero arrays")
	}

	first := arrays[0]
	for _, a := range arrays[1:] {
		if !a.shape.Equal(first.shape) {
			return nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, first.shape, a.shape)
		}
	}

	k := len(arrays)
	shape := append(first.shape.Clone(), k)
	out := &Array[T]{shape: shape, data: make([]T, first.Size()*k)}
	for j, a := range arrays {
		for p, v := range a.data {
			out.data[p*k+j] = v
		}
	}

	return out, nil
}

// ConcatLast concatenates arrays along their existing last axis.
func ConcatLast[T Number](arrays []*Array[T]) (*Array[T], error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("ndarray: cannot concatenate zero arrays")
	}

	first := arrays[0]
	if first.NDim() == 0 {
		return nil, fmt.Errorf("ndarray: cannot concatenate scalars")
	}

	last := first.NDim() - 1
	total := 0
	for _, a := range arrays {
		if a.NDim() != first.NDim() || !a.shape[:last].Equal(first.shape[:last]) {
			return nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, first.shape, a.shape)
		}
		total += a.shape[last]
	}

	shape := first.shape.Clone()
	shape[last] = total
	out := &Array[T]{shape: shape, data: make([]T, shape.Size())}

	rows := 1
	for _, d := range first.shape[:last] {
		rows *= d
	}

	off := 0
	for _, a := range arrays {
		width := a.shape[last]
		for r := 0; r < rows; r++ {
			copy(out.data[r*total+off:r*total+off+width], a.data[r*width:(r+1)*width])
		}
		off += width
	}

	return out, nil
}

// ReplaceNaN returns an array with every NaN element replaced by fill. The
// input is returned unchanged when it contains no NaNs, which is always
// the case for integer element types.
func ReplaceNaN[T Number](a *Array[T], fill T) *Array[T] {
	dirty := false
	for _, v := range a.data {
		if v != v {
			dirty = true
			break
		}
	}

	if !dirty {
		return a
	}

	out := a.Clone()
	for i, v := range out.data {
		if v != v {
			out.data[i] = fill
		}
	}
	return out
}
