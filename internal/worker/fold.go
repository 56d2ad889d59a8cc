package worker

import (
	"fmt"

	ndstream "github.com/erizocosmico/ndstream"
	"github.com/erizocosmico/ndstream/internal/proto"
	"github.com/erizocosmico/ndstream/ndarray"
)

func operatorCount() int {
	return ndstream.RegisteredOperators()
}

// executeFold folds the arrays of a chunk with the named operator and
// returns the marshalled partial result. Dispatch happens on the element
// kind of the chunk, since the operator registry is keyed by it.
func executeFold(f *proto.FoldData) ([]byte, error) {
	switch ndarray.Kind(f.Kind) {
	case ndarray.Float64:
		return foldTyped[float64](f)
	case ndarray.Float32:
		return foldTyped[float32](f)
	case ndarray.Int64:
		return foldTyped[int64](f)
	case ndarray.Int32:
		return foldTyped[int32](f)
	default:
		return nil, fmt.Errorf("worker: invalid element kind %d", f.Kind)
	}
}

func foldTyped[T ndarray.Number](f *proto.FoldData) ([]byte, error) {
	op, ok := ndstream.LookupOperator[T](f.Operator)
	if !ok {
		return nil, fmt.Errorf("worker: operator %q is not registered for %s arrays", f.Operator, ndarray.KindOf[T]())
	}

	arrays := make([]*ndarray.Array[T], len(f.Chunk))
	for i, b := range f.Chunk {
		a, err := ndarray.Unmarshal[T](b)
		if err != nil {
			return nil, fmt.Errorf("worker: can't decode chunk array %d: %s", i, err)
		}
		arrays[i] = a
	}

	opts := &ndstream.ReduceOptions{
		Flatten:   f.Flatten,
		IgnoreNaN: f.IgnoreNaN,
	}
	if f.Axis != proto.Stacking {
		opts.Axis = ndstream.Along(int(f.Axis))
	}

	res, err := ndstream.Fold(ndstream.FromArrays(arrays...), op, opts)
	if err != nil {
		return nil, err
	}

	return ndarray.Marshal(res), nil
}
