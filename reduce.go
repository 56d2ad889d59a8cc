package ndstream

import (
	"fmt"

	"github.com/erizocosmico/ndstream/ndarray"
)

// stackingAxis is the sentinel for reducing along a new trailing axis.
// It overlaps with the "last existing axis" meaning -1 has elsewhere;
// here it always selects stacking.
const stackingAxis = -1

// ReduceOptions configures a reduction. A nil options value reduces
// along a new trailing axis with NaNs propagated.
type ReduceOptions struct {
	// Axis is the reduction axis. Leave nil (or set to Along(-1)) to
	// treat the stream as arrays stacked along a new trailing axis and
	// reduce along it as elements arrive. An axis larger than the rank
	// of the arrays in the stream also falls back to stacking.
	Axis *int
	// Flatten reduces every array to a scalar before folding.
	Flatten bool
	// IgnoreNaN replaces NaNs with the operator's identity value before
	// they enter the reduction. Requires an operator with an identity.
	IgnoreNaN bool
	// CopyResults yields a fresh copy at every step. By default the
	// reduction yields its own accumulator buffer, which is mutated by
	// the next step; callers keeping history must copy or set this.
	CopyResults bool
}

// Along returns a pointer to the given axis, for use in ReduceOptions.
func Along(axis int) *int {
	return &axis
}

type reduceMode uint8

const (
	modeStacking reduceMode = iota
	modeExisting
	modeFlatten
)

// Reduction is the lazy sequence of partial results of folding a stream
// with an operator, one result per consumed element, in stream order. It
// implements Stream itself.
type Reduction[T ndarray.Number] struct {
	src         Stream[T]
	op          Operator[T]
	axis        int
	copyResults bool

	mode   reduceMode
	acc    *ndarray.Array[T]
	locals []*ndarray.Array[T]
}

// Reduce builds a streaming reduction of the given stream with a binary
// operator. All configuration errors are reported here, before the first
// element is pulled: the operator must have a kernel and preserve its
// input type, and ignoring NaNs requires an identity value.
func Reduce[T ndarray.Number](s Stream[T], op Operator[T], opts *ReduceOptions) (*Reduction[T], error) {
	if op.Func == nil {
		return nil, fmt.Errorf("%w: %q has no kernel", ErrInvalidOperator, op.Name)
	}

	if op.Boolean {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, op.Name)
	}

	axis := stackingAxis
	var flatten, ignoreNaN, copyResults bool
	if opts != nil {
		flatten = opts.Flatten
		ignoreNaN = opts.IgnoreNaN
		copyResults = opts.CopyResults
		if opts.Axis != nil {
			axis = *opts.Axis
		}
	}

	if axis < stackingAxis {
		return nil, fmt.Errorf("%w: %d", ErrAxisOutOfRange, axis)
	}

	if ignoreNaN {
		if op.Identity == nil {
			return nil, fmt.Errorf("%w: cannot ignore NaNs with %q", ErrIdentityRequired, op.Name)
		}
		s = ReplaceNaNs(s, *op.Identity)
	}

	mode := modeStacking
	switch {
	case flatten:
		mode = modeFlatten
	case axis != stackingAxis:
		mode = modeExisting
	}

	return &Reduction[T]{
		src:         s,
		op:          op,
		axis:        axis,
		copyResults: copyResults,
		mode:        mode,
	}, nil
}

// Fold reduces the whole stream and returns the final value. It is the
// consuming version of Reduce.
func Fold[T ndarray.Number](s Stream[T], op Operator[T], opts *ReduceOptions) (*ndarray.Array[T], error) {
	r, err := Reduce(s, op, opts)
	if err != nil {
		return nil, err
	}

	return Last[T](r)
}

// Next advances the reduction by exactly one upstream element and
// returns the updated partial result.
func (r *Reduction[T]) Next() (*ndarray.Array[T], error) {
	switch r.mode {
	case modeFlatten:
		return r.nextFlatten()
	case modeExisting:
		return r.nextExisting()
	default:
		return r.nextStacking()
	}
}

func (r *Reduction[T]) nextStacking() (*ndarray.Array[T], error) {
	a, err := r.src.Next()
	if err != nil {
		return nil, err
	}

	if r.acc == nil {
		r.acc = a.Clone()
		return r.out(), nil
	}

	if err := r.acc.Combine(a, r.op.Func); err != nil {
		return nil, err
	}

	return r.out(), nil
}

func (r *Reduction[T]) nextExisting() (*ndarray.Array[T], error) {
	a, err := r.src.Next()
	if err != nil {
		return nil, err
	}

	// The first array decides: an axis beyond its rank degrades the
	// whole reduction to stacking mode.
	if len(r.locals) == 0 && r.axis >= a.NDim() {
		r.mode = modeStacking
		r.acc = a.Clone()
		return r.out(), nil
	}

	local, err := ndarray.ReduceAxis(a, r.axis, r.op.Func)
	if err != nil {
		return nil, fmt.Errorf("%w: %d for shape %v", ErrAxisOutOfRange, r.axis, a.Shape())
	}

	r.locals = append(r.locals, local)
	return ndarray.StackLast(r.locals)
}

func (r *Reduction[T]) nextFlatten() (*ndarray.Array[T], error) {
	a, err := r.src.Next()
	if err != nil {
		return nil, err
	}

	v := ndarray.ReduceAll(a, r.op.Func)
	if r.acc == nil {
		r.acc = ndarray.Scalar(v)
	} else {
		r.acc.Data()[0] = r.op.Func(r.acc.Data()[0], v)
	}

	return r.out(), nil
}

func (r *Reduction[T]) out() *ndarray.Array[T] {
	if r.copyResults {
		return r.acc.Clone()
	}
	return r.acc
}
