package ndstream

import (
	"math"

	"github.com/erizocosmico/ndstream/ndarray"
)

// StatOptions configures the statistical reductions. A nil value means:
// stacking axis, no weights, NaNs propagated, ddof 0.
type StatOptions[T ndarray.Float] struct {
	// Axis is the reduction axis, with the same semantics as
	// ReduceOptions.Axis.
	Axis *int
	// Flatten reduces every array to a scalar before folding.
	Flatten bool
	// Weights is an optional stream of weights advanced in lockstep with
	// the data. Each element is either a scalar array or an array of the
	// same shape as the data.
	Weights Stream[T]
	// IgnoreNaN gives NaN entries zero weight instead of propagating
	// them, so the effective sample count shrinks accordingly.
	IgnoreNaN bool
	// DDof is the delta degrees of freedom: variance divides by
	// N - DDof. Only used by Var, Std and SEM.
	DDof int
}

func (o *StatOptions[T]) reduceOptions(ignoreNaN bool) *ReduceOptions {
	r := &ReduceOptions{IgnoreNaN: ignoreNaN}
	if o != nil {
		r.Axis = o.Axis
		r.Flatten = o.Flatten
	}
	return r
}

func (o *StatOptions[T]) stacking() bool {
	return o == nil || (!o.Flatten && (o.Axis == nil || *o.Axis == stackingAxis))
}

func broadcastTo[T ndarray.Number](a *ndarray.Array[T], shape ndarray.Shape) *ndarray.Array[T] {
	if a.Size() == 1 && !a.Shape().Equal(shape) {
		return ndarray.Full[T](a.Data()[0], shape...)
	}
	return a
}

func onesStream[T ndarray.Float](shape ndarray.Shape) Stream[T] {
	ones := ndarray.Ones[T](shape...)
	return FromFunc(func() (*ndarray.Array[T], error) {
		return ones, nil
	})
}

// zeroWeightAtNaN zeroes weight entries wherever the matching data entry
// is NaN, so the weighted denominator reflects the reduced count.
func zeroWeightAtNaN[T ndarray.Float](w, x *ndarray.Array[T]) (*ndarray.Array[T], error) {
	return ndarray.Combined(w, x, func(wv, xv T) T {
		if xv != xv {
			return 0
		}
		return wv
	})
}

// averagePrimitive yields the running weighted sum and running weight
// sum per step, leaving the division to the caller.
func averagePrimitive[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (func() (num, den *ndarray.Array[T], err error), error) {
	// Common fast path: unweighted, NaNs propagated, stacking axis. A
	// single running sum divided by a running count.
	if opts == nil || (opts.Weights == nil && !opts.IgnoreNaN && opts.stacking()) {
		sums, err := Reduce(s, Add[T](), nil)
		if err != nil {
			return nil, err
		}

		count := T(0)
		return func() (*ndarray.Array[T], *ndarray.Array[T], error) {
			a, err := sums.Next()
			if err != nil {
				return nil, nil, err
			}
			count++
			return a, ndarray.Scalar(count), nil
		}, nil
	}

	first, s, err := Peek(s)
	if err != nil {
		return nil, err
	}
	shape := first.Shape()

	weights := opts.Weights
	if weights == nil {
		weights = onesStream[T](shape)
	}

	// Weights are always expanded to the data shape, which keeps the NaN
	// handling and the existing-axis mode uniform.
	weights = mapped(weights, func(w *ndarray.Array[T]) (*ndarray.Array[T], error) {
		return broadcastTo(w, shape), nil
	})

	if opts.IgnoreNaN {
		split := Tee(s, 2)
		s = split[0]
		weights = zipped(split[1], weights, func(x, w *ndarray.Array[T]) (*ndarray.Array[T], error) {
			return zeroWeightAtNaN(w, x)
		})
	}

	wsplit := Tee(weights, 2)

	weighted := zipped(s, wsplit[0], func(x, w *ndarray.Array[T]) (*ndarray.Array[T], error) {
		return ndarray.Combined(x, w, func(xv, wv T) T { return xv * wv })
	})

	weightedSum, err := Reduce(weighted, Add[T](), opts.reduceOptions(opts.IgnoreNaN))
	if err != nil {
		return nil, err
	}

	weightSum, err := Reduce(wsplit[1], Add[T](), opts.reduceOptions(false))
	if err != nil {
		return nil, err
	}

	return func() (*ndarray.Array[T], *ndarray.Array[T], error) {
		num, err := weightedSum.Next()
		if err != nil {
			return nil, nil, err
		}

		den, err := weightSum.Next()
		if err != nil {
			return nil, nil, err
		}

		return num, den, nil
	}, nil
}

func divide[T ndarray.Float](num, den *ndarray.Array[T]) (*ndarray.Array[T], error) {
	return ndarray.Combined(num, den, func(n, d T) T { return n / d })
}

// RunningAverage is the streaming weighted average of a stream of
// arrays, one value per consumed element.
func RunningAverage[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (Stream[T], error) {
	step, err := averagePrimitive(s, opts)
	if err != nil {
		return nil, err
	}

	return FromFunc(func() (*ndarray.Array[T], error) {
		num, den, err := step()
		if err != nil {
			return nil, err
		}
		return divide(num, den)
	}), nil
}

// Average consumes the stream and returns its weighted average.
func Average[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (*ndarray.Array[T], error) {
	step, err := averagePrimitive(s, opts)
	if err != nil {
		return nil, err
	}

	var num, den *ndarray.Array[T]
	for {
		n, d, err := step()
		if err == ErrStreamExhausted {
			break
		}
		if err != nil {
			return nil, err
		}
		num, den = n, d
	}

	if num == nil {
		return nil, ErrStreamExhausted
	}

	return divide(num, den)
}

// RunningMean is the streaming unweighted mean of the stream. Equivalent
// to RunningAverage without weights.
func RunningMean[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (Stream[T], error) {
	return RunningAverage(s, dropWeights(opts))
}

// Mean consumes the stream and returns its unweighted mean.
func Mean[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (*ndarray.Array[T], error) {
	return Average(s, dropWeights(opts))
}

func dropWeights[T ndarray.Float](opts *StatOptions[T]) *StatOptions[T] {
	if opts == nil || opts.Weights == nil {
		return opts
	}

	c := *opts
	c.Weights = nil
	return &c
}

// varPrimitive yields the running average, running average of squares
// and running weight sum per step.
func varPrimitive[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (func() (avg, sqAvg, swgt *ndarray.Array[T], err error), error) {
	first, s, err := Peek(s)
	if err != nil {
		return nil, err
	}
	shape := first.Shape()

	var ignoreNaN bool
	var base StatOptions[T]
	if opts != nil {
		base = *opts
		ignoreNaN = opts.IgnoreNaN
	}

	weights := base.Weights
	if weights == nil {
		weights = onesStream[T](shape)
	}
	weights = mapped(weights, func(w *ndarray.Array[T]) (*ndarray.Array[T], error) {
		return broadcastTo(w, shape), nil
	})

	if ignoreNaN {
		split := Tee(s, 2)
		s = split[0]
		weights = zipped(split[1], weights, func(x, w *ndarray.Array[T]) (*ndarray.Array[T], error) {
			return zeroWeightAtNaN(w, x)
		})
	}

	arrays := Tee(s, 2)
	wsplit := Tee(weights, 3)

	avgOpts := base
	avgOpts.Weights = wsplit[0]
	avgs, err := RunningAverage(arrays[0], &avgOpts)
	if err != nil {
		return nil, err
	}

	squares := mapped(arrays[1], func(a *ndarray.Array[T]) (*ndarray.Array[T], error) {
		return ndarray.Mapped(a, func(v T) T { return v * v }), nil
	})

	sqOpts := base
	sqOpts.Weights = wsplit[1]
	sqAvgs, err := RunningAverage(squares, &sqOpts)
	if err != nil {
		return nil, err
	}

	weightSum, err := Reduce(wsplit[2], Add[T](), base.reduceOptions(false))
	if err != nil {
		return nil, err
	}

	return func() (*ndarray.Array[T], *ndarray.Array[T], *ndarray.Array[T], error) {
		avg, err := avgs.Next()
		if err != nil {
			return nil, nil, nil, err
		}

		sqAvg, err := sqAvgs.Next()
		if err != nil {
			return nil, nil, nil, err
		}

		swgt, err := weightSum.Next()
		if err != nil {
			return nil, nil, nil, err
		}

		return avg, sqAvg, swgt, nil
	}, nil
}

// varFromMoments computes (sqAvg - avg²) · swgt/(swgt - ddof)
// elementwise. The E[X²]−E[X]² form trades numerical stability for reuse
// of the generic engine; see DESIGN.md.
func varFromMoments[T ndarray.Float](avg, sqAvg, swgt *ndarray.Array[T], ddof int) (*ndarray.Array[T], error) {
	out, err := ndarray.Combined(sqAvg, avg, func(sq, m T) T { return sq - m*m })
	if err != nil {
		return nil, err
	}

	return ndarray.Combined(out, swgt, func(v, n T) T {
		return v * (n / (n - T(ddof)))
	})
}

// RunningVar is the streaming weighted variance of the stream.
func RunningVar[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (Stream[T], error) {
	step, err := varPrimitive(s, opts)
	if err != nil {
		return nil, err
	}

	ddof := 0
	if opts != nil {
		ddof = opts.DDof
	}

	return FromFunc(func() (*ndarray.Array[T], error) {
		avg, sqAvg, swgt, err := step()
		if err != nil {
			return nil, err
		}
		return varFromMoments(avg, sqAvg, swgt, ddof)
	}), nil
}

// Var consumes the stream and returns its weighted variance.
func Var[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (*ndarray.Array[T], error) {
	avg, sqAvg, swgt, err := lastMoments(s, opts)
	if err != nil {
		return nil, err
	}

	ddof := 0
	if opts != nil {
		ddof = opts.DDof
	}

	return varFromMoments(avg, sqAvg, swgt, ddof)
}

// AverageAndVar consumes the stream once and returns both its weighted
// average and its weighted variance.
func AverageAndVar[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (avg, variance *ndarray.Array[T], err error) {
	mean, sqAvg, swgt, err := lastMoments(s, opts)
	if err != nil {
		return nil, nil, err
	}

	ddof := 0
	if opts != nil {
		ddof = opts.DDof
	}

	variance, err = varFromMoments(mean, sqAvg, swgt, ddof)
	if err != nil {
		return nil, nil, err
	}

	return mean, variance, nil
}

func lastMoments[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (avg, sqAvg, swgt *ndarray.Array[T], err error) {
	step, err := varPrimitive(s, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	for {
		a, sq, w, err := step()
		if err == ErrStreamExhausted {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		avg, sqAvg, swgt = a, sq, w
	}

	if avg == nil {
		return nil, nil, nil, ErrStreamExhausted
	}

	return avg, sqAvg, swgt, nil
}

func sqrtOf[T ndarray.Float](v T) T {
	return T(math.Sqrt(float64(v)))
}

// RunningStd is the streaming weighted standard deviation of the stream.
func RunningStd[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (Stream[T], error) {
	vars, err := RunningVar(s, opts)
	if err != nil {
		return nil, err
	}

	return mapped(vars, func(a *ndarray.Array[T]) (*ndarray.Array[T], error) {
		return ndarray.Mapped(a, sqrtOf[T]), nil
	}), nil
}

// Std consumes the stream and returns its weighted standard deviation.
func Std[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (*ndarray.Array[T], error) {
	v, err := Var(s, opts)
	if err != nil {
		return nil, err
	}

	v.Apply(sqrtOf[T])
	return v, nil
}

// semFromMoments computes sqrt((sqAvg - avg²) / (swgt - ddof)).
func semFromMoments[T ndarray.Float](avg, sqAvg, swgt *ndarray.Array[T], ddof int) (*ndarray.Array[T], error) {
	out, err := ndarray.Combined(sqAvg, avg, func(sq, m T) T { return sq - m*m })
	if err != nil {
		return nil, err
	}

	return ndarray.Combined(out, swgt, func(v, n T) T {
		return sqrtOf(v / (n - T(ddof)))
	})
}

// RunningSEM is the streaming standard error in the mean of the stream.
func RunningSEM[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (Stream[T], error) {
	step, err := varPrimitive(s, opts)
	if err != nil {
		return nil, err
	}

	ddof := 0
	if opts != nil {
		ddof = opts.DDof
	}

	return FromFunc(func() (*ndarray.Array[T], error) {
		avg, sqAvg, swgt, err := step()
		if err != nil {
			return nil, err
		}
		return semFromMoments(avg, sqAvg, swgt, ddof)
	}), nil
}

// SEM consumes the stream and returns the standard error in the mean.
func SEM[T ndarray.Float](s Stream[T], opts *StatOptions[T]) (*ndarray.Array[T], error) {
	avg, sqAvg, swgt, err := lastMoments(s, opts)
	if err != nil {
		return nil, err
	}

	ddof := 0
	if opts != nil {
		ddof = opts.DDof
	}

	return semFromMoments(avg, sqAvg, swgt, ddof)
}
