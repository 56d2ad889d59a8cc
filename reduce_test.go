package ndstream

import (
	"math"
	"math/rand"
	"testing"

	"github.com/erizocosmico/ndstream/ndarray"
	"github.com/stretchr/testify/require"
)

func TestReduceStackingPartials(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2, 3, 4}, 2, 2)
	b := arrayOf(t, []float64{10, 20, 30, 40}, 2, 2)
	c := arrayOf(t, []float64{100, 200, 300, 400}, 2, 2)

	r, err := Reduce(FromArrays(a, b, c), Add[float64](), nil)
	require.NoError(err)

	got, err := r.Next()
	require.NoError(err)
	require.Equal([]float64{1, 2, 3, 4}, got.Data())

	got, err = r.Next()
	require.NoError(err)
	require.Equal([]float64{11, 22, 33, 44}, got.Data())

	got, err = r.Next()
	require.NoError(err)
	require.Equal([]float64{111, 222, 333, 444}, got.Data())
	require.Equal(ndarray.Shape{2, 2}, got.Shape())

	_, err = r.Next()
	require.Equal(ErrStreamExhausted, err)
}

func TestSumMatchesMaterialized(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(7))

	arrays := make([]*ndarray.Array[float64], 10)
	for i := range arrays {
		a := ndarray.New[float64](4, 4)
		for j := range a.Data() {
			a.Data()[j] = rng.NormFloat64()
		}
		arrays[i] = a
	}

	expected := arrays[0].Clone()
	for _, a := range arrays[1:] {
		for j, v := range a.Data() {
			expected.Data()[j] += v
		}
	}

	got, err := Sum(FromArrays(arrays...), nil)
	require.NoError(err)
	require.True(expected.AllClose(got, 1e-9))
}

func TestReduceSingleElement(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2, 3}, 3)
	got, err := Sum(FromArrays(a), nil)
	require.NoError(err)
	require.True(a.Equal(got))
	require.NotSame(a, got)
}

func TestSumOfZeros(t *testing.T) {
	require := require.New(t)

	got, err := Sum(Repeat(ndarray.Zeros[float64](3, 3), 5), nil)
	require.NoError(err)
	require.True(ndarray.Zeros[float64](3, 3).Equal(got))
}

func TestProdOfOnes(t *testing.T) {
	require := require.New(t)

	got, err := Prod(Repeat(ndarray.Ones[float64](3, 3), 5), nil)
	require.NoError(err)
	require.True(ndarray.Ones[float64](3, 3).Equal(got))
}

func TestReduceFlatten(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2}, 2)
	b := arrayOf(t, []float64{3, 4}, 2)

	got, err := Sum(FromArrays(a, b), &ReduceOptions{Flatten: true})
	require.NoError(err)
	require.Equal(0, got.NDim())
	require.Equal([]float64{10}, got.Data())
}

func TestReduceExistingAxis(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := arrayOf(t, []float64{2, 4, 6, 8, 10, 12}, 2, 3)

	r, err := Reduce(FromArrays(a, b), Add[float64](), &ReduceOptions{Axis: Along(1)})
	require.NoError(err)

	// Even a single consumed element keeps the trailing stream axis.
	got, err := r.Next()
	require.NoError(err)
	require.Equal(ndarray.Shape{2, 1}, got.Shape())
	require.Equal([]float64{6, 15}, got.Data())

	got, err = r.Next()
	require.NoError(err)
	require.Equal(ndarray.Shape{2, 2}, got.Shape())
	require.Equal([]float64{6, 12, 15, 30}, got.Data())
}

func TestReduceAxisBeyondRankFallsBackToStacking(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2}, 2)
	b := arrayOf(t, []float64{3, 4}, 2)

	got, err := Sum(FromArrays(a, b), &ReduceOptions{Axis: Along(5)})
	require.NoError(err)
	require.Equal(ndarray.Shape{2}, got.Shape())
	require.Equal([]float64{4, 6}, got.Data())
}

func TestReduceIgnoreNaN(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, math.NaN()}, 2)
	b := arrayOf(t, []float64{3, 4}, 2)

	got, err := Sum(FromArrays(a, b), &ReduceOptions{IgnoreNaN: true})
	require.NoError(err)
	require.Equal([]float64{4, 4}, got.Data())

	// Without the option the NaN propagates.
	got, err = Sum(FromArrays(a.Clone(), b.Clone()), nil)
	require.NoError(err)
	require.True(math.IsNaN(got.Data()[1]))
}

func TestIgnoreNaNAllNaNArray(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2}, 2)
	b := arrayOf(t, []float64{3, 4}, 2)

	expected, err := Sum(FromArrays(a.Clone(), b.Clone()), nil)
	require.NoError(err)

	nans := ndarray.Full[float64](math.NaN(), 2)
	got, err := Sum(FromArrays(a, b, nans), &ReduceOptions{IgnoreNaN: true})
	require.NoError(err)
	require.True(expected.AllClose(got, 1e-9))
}

func TestReduceErrors(t *testing.T) {
	a := arrayOf(t, []float64{1, 2}, 2)
	testCases := []struct {
		name string
		op   Operator[float64]
		opts *ReduceOptions
		err  error
	}{
		{"no kernel", Operator[float64]{Name: "empty"}, nil, ErrInvalidOperator},
		{"boolean", Greater[float64](), nil, ErrUnsupportedOperator},
		{"no identity", Maximum[float64](), &ReduceOptions{IgnoreNaN: true}, ErrIdentityRequired},
		{"axis below sentinel", Add[float64](), &ReduceOptions{Axis: Along(-3)}, ErrAxisOutOfRange},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(FromArrays(a), tt.op, tt.opts)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestReduceAccumulatorAliasing(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1}, 1)
	b := arrayOf(t, []float64{2}, 1)

	r, err := Reduce(FromArrays(a, b), Add[float64](), nil)
	require.NoError(err)

	first, err := r.Next()
	require.NoError(err)
	second, err := r.Next()
	require.NoError(err)
	require.Same(first, second)

	r, err = Reduce(FromArrays(a, b), Add[float64](), &ReduceOptions{CopyResults: true})
	require.NoError(err)

	first, err = r.Next()
	require.NoError(err)
	second, err = r.Next()
	require.NoError(err)
	require.NotSame(first, second)
	require.Equal([]float64{1}, first.Data())
	require.Equal([]float64{3}, second.Data())
}

func TestFoldEmptyStream(t *testing.T) {
	_, err := Sum(FromArrays[float64](), nil)
	require.Equal(t, ErrStreamExhausted, err)
}
