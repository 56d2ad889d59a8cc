package ndarray

import (
	"errors"
	"fmt"
)

// Number is the set of element types an Array can hold.
type Number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Float is the subset of Number with a floating point representation.
type Float interface {
	~float32 | ~float64
}

// ErrShapeMismatch is returned when two arrays cannot be combined
// elementwise because their shapes differ.
var ErrShapeMismatch = errors.New("ndarray: shape mismatch")

// Shape holds the dimensions of an array. An empty shape denotes a scalar.
type Shape []int

// Size returns the total number of elements for the shape.
func (s Shape) Size() int {
	size := 1
	for _, d := range s {
		size *= d
	}
	return size
}

// Equal reports whether two shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}

	for i, d := range s {
		if d != other[i] {
			return false
		}
	}

	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

// Array is a dense n-dimensional array of numeric elements in row-major
// order. The zero value is not usable, use one of the constructors.
type Array[T Number] struct {
	shape Shape
	data  []T
}

// New creates an array of the given shape with all elements set to zero.
func New[T Number](shape ...int) *Array[T] {
	s := Shape(shape).Clone()
	return &Array[T]{shape: s, data: make([]T, s.Size())}
}

// Zeros creates an array of the given shape filled with zeroes.
func Zeros[T Number](shape ...int) *Array[T] {
	return New[T](shape...)
}

// Ones creates an array of the given shape filled with ones.
func Ones[T Number](shape ...int) *Array[T] {
	return Full[T](1, shape...)
}

// Full creates an array of the given shape with every element set to value.
func Full[T Number](value T, shape ...int) *Array[T] {
	a := New[T](shape...)
	for i := range a.data {
		a.data[i] = value
	}
	return a
}

// Scalar creates a zero-dimensional array holding a single value.
func Scalar[T Number](value T) *Array[T] {
	return &Array[T]{shape: Shape{}, data: []T{value}}
}

// FromSlice creates an array from the given backing data and shape. The
// data slice is used directly, not copied.
func FromSlice[T Number](data []T, shape ...int) (*Array[T], error) {
	s := Shape(shape).Clone()
	if s.Size() != len(data) {
		return nil, fmt.Errorf("ndarray: cannot shape %d elements into %v", len(data), s)
	}

	return &Array[T]{shape: s, data: data}, nil
}

// Shape returns the array dimensions. The returned slice must not be
// modified.
func (a *Array[T]) Shape() Shape {
	return a.shape
}

// NDim returns the number of dimensions.
func (a *Array[T]) NDim() int {
	return len(a.shape)
}

// Size returns the total number of elements.
func (a *Array[T]) Size() int {
	return len(a.data)
}

// Data returns the backing slice of the array in row-major order.
func (a *Array[T]) Data() []T {
	return a.data
}

// At returns the element at the given index.
func (a *Array[T]) At(idx ...int) T {
	return a.data[a.offset(idx)]
}

// SetAt sets the element at the given index.
func (a *Array[T]) SetAt(value T, idx ...int) {
	a.data[a.offset(idx)] = value
}

func (a *Array[T]) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: %d indices for %d dimensions", len(idx), len(a.shape)))
	}

	var off int
	for i, ix := range idx {
		off = off*a.shape[i] + ix
	}
	return off
}

// Clone returns a deep copy of the array.
func (a *Array[T]) Clone() *Array[T] {
	data := make([]T, len(a.data))
	copy(data, a.data)
	return &Array[T]{shape: a.shape.Clone(), data: data}
}

// Equal reports whether b has the same shape and exactly the same elements.
func (a *Array[T]) Equal(b *Array[T]) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}

	for i, v := range a.data {
		if v != b.data[i] {
			return false
		}
	}

	return true
}

// AllClose reports whether b has the same shape and all elements within
// the given absolute tolerance.
func (a *Array[T]) AllClose(b *Array[T], tol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}

	for i, v := range a.data {
		diff := float64(v) - float64(b.data[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > tol {
			return false
		}
	}

	return true
}

func (a *Array[T]) String() string {
	return fmt.Sprintf("Array%v%v", a.shape, a.data)
}

// Cast converts an array to another element type. Any narrowing or
// widening conversion is permitted.
func Cast[U, T Number](a *Array[T]) *Array[U] {
	data := make([]U, len(a.data))
	for i, v := range a.data {
		data[i] = U(v)
	}
	return &Array[U]{shape: a.shape.Clone(), data: data}
}
