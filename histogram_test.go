package ndstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistogram(t *testing.T) {
	require := require.New(t)

	s := FromArrays(
		arrayOf(t, []float64{0.5, 1.5}, 2),
		arrayOf(t, []float64{2.5, 3.0}, 2),
		arrayOf(t, []float64{-1, 5}, 2),
	)

	got, err := Histogram(s, []float64{0, 1, 2, 3}, nil)
	require.NoError(err)
	require.Equal([]float64{1, 1, 2}, got.Data())
}

func TestHistogramWeighted(t *testing.T) {
	require := require.New(t)

	s := FromArrays(arrayOf(t, []float64{0.5, 1.5}, 2))
	weights := FromArrays(arrayOf(t, []float64{2, 3}, 2))

	got, err := Histogram(s, []float64{0, 1, 2, 3}, &HistogramOptions[float64]{Weights: weights})
	require.NoError(err)
	require.Equal([]float64{2, 3, 0}, got.Data())
}

func TestRunningHistogram(t *testing.T) {
	require := require.New(t)

	r, err := RunningHistogram(FromArrays(
		arrayOf(t, []float64{0.5}, 1),
		arrayOf(t, []float64{0.5}, 1),
	), []float64{0, 1, 2}, nil)
	require.NoError(err)

	got, err := r.Next()
	require.NoError(err)
	require.Equal([]float64{1, 0}, got.Data())

	got, err = r.Next()
	require.NoError(err)
	require.Equal([]float64{2, 0}, got.Data())
}

func TestHistogramTooFewEdges(t *testing.T) {
	_, err := Histogram(FromArrays[float64](), []float64{1}, nil)
	require.Error(t, err)
}
