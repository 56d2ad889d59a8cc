package ndstream

import "github.com/erizocosmico/ndstream/ndarray"

// Stream is a single-pass, pull-based source of arrays. Once advanced,
// prior elements are unrecoverable; a stream must not be iterated twice
// concurrently. Pulling past the end returns ErrStreamExhausted.
type Stream[T ndarray.Number] interface {
	Next() (*ndarray.Array[T], error)
}

// Sized is implemented by streams that know how many elements remain.
// It is used to pick chunk sizes in the parallel fold.
type Sized interface {
	Len() int
}

type sliceStream[T ndarray.Number] struct {
	arrays []*ndarray.Array[T]
	pos    int
}

// FromArrays creates a stream over the given arrays. A single bare array
// becomes a stream of length one.
func FromArrays[T ndarray.Number](arrays ...*ndarray.Array[T]) Stream[T] {
	return &sliceStream[T]{arrays: arrays}
}

func (s *sliceStream[T]) Next() (*ndarray.Array[T], error) {
	if s.pos >= len(s.arrays) {
		return nil, ErrStreamExhausted
	}

	a := s.arrays[s.pos]
	s.pos++
	return a, nil
}

func (s *sliceStream[T]) Len() int {
	return len(s.arrays) - s.pos
}

type chanStream[T ndarray.Number] struct {
	ch <-chan *ndarray.Array[T]
}

// FromChan creates a stream pulling from a channel until it is closed.
func FromChan[T ndarray.Number](ch <-chan *ndarray.Array[T]) Stream[T] {
	return &chanStream[T]{ch: ch}
}

func (s *chanStream[T]) Next() (*ndarray.Array[T], error) {
	a, ok := <-s.ch
	if !ok {
		return nil, ErrStreamExhausted
	}
	return a, nil
}

type funcStream[T ndarray.Number] struct {
	fn func() (*ndarray.Array[T], error)
}

// FromFunc creates a stream from a pull function. The function signals
// exhaustion by returning ErrStreamExhausted.
func FromFunc[T ndarray.Number](fn func() (*ndarray.Array[T], error)) Stream[T] {
	return &funcStream[T]{fn: fn}
}

func (s *funcStream[T]) Next() (*ndarray.Array[T], error) {
	return s.fn()
}

type repeatStream[T ndarray.Number] struct {
	array *ndarray.Array[T]
	left  int
}

// Repeat creates a stream yielding the same array n times. The array is
// shared across yields, not copied.
func Repeat[T ndarray.Number](a *ndarray.Array[T], n int) Stream[T] {
	return &repeatStream[T]{array: a, left: n}
}

func (s *repeatStream[T]) Next() (*ndarray.Array[T], error) {
	if s.left <= 0 {
		return nil, ErrStreamExhausted
	}

	s.left--
	return s.array, nil
}

func (s *repeatStream[T]) Len() int {
	return s.left
}

type pushbackStream[T ndarray.Number] struct {
	head []*ndarray.Array[T]
	tail Stream[T]
}

func (s *pushbackStream[T]) Next() (*ndarray.Array[T], error) {
	if len(s.head) > 0 {
		a := s.head[0]
		s.head = s.head[1:]
		return a, nil
	}
	return s.tail.Next()
}

func (s *pushbackStream[T]) Len() int {
	return len(s.head) + LengthHint(s.tail, 0)
}

// Peek returns the first element of the stream and a stream equivalent to
// the original, not advanced. The original stream must not be used again.
func Peek[T ndarray.Number](s Stream[T]) (*ndarray.Array[T], Stream[T], error) {
	first, err := s.Next()
	if err != nil {
		return nil, nil, err
	}

	return first, &pushbackStream[T]{head: []*ndarray.Array[T]{first}, tail: s}, nil
}

// LengthHint returns the number of remaining elements if the stream knows
// it, or the given default.
func LengthHint[T ndarray.Number](s Stream[T], def int) int {
	if sized, ok := s.(Sized); ok {
		return sized.Len()
	}
	return def
}

// Last consumes the stream and returns its final element. An empty stream
// yields ErrStreamExhausted.
func Last[T ndarray.Number](s Stream[T]) (*ndarray.Array[T], error) {
	var last *ndarray.Array[T]
	for {
		a, err := s.Next()
		if err == ErrStreamExhausted {
			break
		}
		if err != nil {
			return nil, err
		}
		last = a
	}

	if last == nil {
		return nil, ErrStreamExhausted
	}

	return last, nil
}

// Collect consumes the stream and returns all its elements.
func Collect[T ndarray.Number](s Stream[T]) ([]*ndarray.Array[T], error) {
	var out []*ndarray.Array[T]
	for {
		a, err := s.Next()
		if err == ErrStreamExhausted {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
}

type castStream[U, T ndarray.Number] struct {
	src Stream[T]
}

// Cast rewrites a stream to another element type. It is the explicit
// element-kind override: all arrays are converted, narrowing included,
// before they reach a reduction.
func Cast[U, T ndarray.Number](s Stream[T]) Stream[U] {
	return &castStream[U, T]{src: s}
}

func (s *castStream[U, T]) Next() (*ndarray.Array[U], error) {
	a, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	return ndarray.Cast[U](a), nil
}

type mappedStream[T ndarray.Number] struct {
	src Stream[T]
	fn  func(*ndarray.Array[T]) (*ndarray.Array[T], error)
}

func mapped[T ndarray.Number](s Stream[T], fn func(*ndarray.Array[T]) (*ndarray.Array[T], error)) Stream[T] {
	return &mappedStream[T]{src: s, fn: fn}
}

func (s *mappedStream[T]) Next() (*ndarray.Array[T], error) {
	a, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	return s.fn(a)
}

type zippedStream[T ndarray.Number] struct {
	a, b Stream[T]
	fn   func(x, y *ndarray.Array[T]) (*ndarray.Array[T], error)
}

// zipped advances two streams in lockstep and combines their elements.
// It is exhausted as soon as either input is.
func zipped[T ndarray.Number](a, b Stream[T], fn func(x, y *ndarray.Array[T]) (*ndarray.Array[T], error)) Stream[T] {
	return &zippedStream[T]{a: a, b: b, fn: fn}
}

func (s *zippedStream[T]) Next() (*ndarray.Array[T], error) {
	x, err := s.a.Next()
	if err != nil {
		return nil, err
	}

	y, err := s.b.Next()
	if err != nil {
		return nil, err
	}

	return s.fn(x, y)
}
