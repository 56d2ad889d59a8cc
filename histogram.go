package ndstream

import (
	"fmt"

	"github.com/erizocosmico/ndstream/ndarray"
)

// HistogramOptions configures histogram accumulation.
type HistogramOptions[T ndarray.Float] struct {
	// Weights is an optional stream of weights advanced in lockstep with
	// the data: instead of counting 1 per element, the matching weight
	// is added to the element's bin.
	Weights Stream[T]
}

// RunningHistogram accumulates a histogram over the flattened elements
// of every array in the stream. Bins are defined by their edges,
// including the rightmost one, allowing non-uniform widths. Yields the
// updated per-bin counts after every consumed array.
func RunningHistogram[T ndarray.Float](s Stream[T], bins []T, opts *HistogramOptions[T]) (*Reduction[T], error) {
	if len(bins) < 2 {
		return nil, fmt.Errorf("ndstream: need at least two bin edges, got %d", len(bins))
	}

	var counts Stream[T]
	if opts != nil && opts.Weights != nil {
		counts = zipped(s, opts.Weights, func(x, w *ndarray.Array[T]) (*ndarray.Array[T], error) {
			return binCounts(x, broadcastTo(w, x.Shape()), bins)
		})
	} else {
		counts = mapped(s, func(x *ndarray.Array[T]) (*ndarray.Array[T], error) {
			return binCounts(x, nil, bins)
		})
	}

	// Per-array count vectors fold through the plain stacking sum path.
	return Reduce(counts, Add[T](), nil)
}

// Histogram consumes the stream and returns the final per-bin counts.
func Histogram[T ndarray.Float](s Stream[T], bins []T, opts *HistogramOptions[T]) (*ndarray.Array[T], error) {
	r, err := RunningHistogram(s, bins, opts)
	if err != nil {
		return nil, err
	}

	return Last[T](r)
}

// binCounts builds the count vector of a single array. Elements outside
// the bin edges are dropped; the rightmost edge is inclusive.
func binCounts[T ndarray.Float](a, w *ndarray.Array[T], bins []T) (*ndarray.Array[T], error) {
	if w != nil && a.Size() != w.Size() {
		return nil, fmt.Errorf("%w: %v and %v", ndarray.ErrShapeMismatch, a.Shape(), w.Shape())
	}

	counts := ndarray.Zeros[T](len(bins) - 1)
	data := counts.Data()
	for i, v := range a.Data() {
		if v != v || v < bins[0] || v > bins[len(bins)-1] {
			continue
		}

		bin := len(bins) - 2
		for j := 1; j < len(bins)-1; j++ {
			if v < bins[j] {
				bin = j - 1
				break
			}
		}

		if w != nil {
			data[bin] += w.Data()[i]
		} else {
			data[bin]++
		}
	}

	return counts, nil
}
