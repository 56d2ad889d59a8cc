package ndstream

import (
	"testing"

	"github.com/erizocosmico/ndstream/ndarray"
	"github.com/stretchr/testify/require"
)

func arrayOf(t *testing.T, data []float64, shape ...int) *ndarray.Array[float64] {
	t.Helper()
	a, err := ndarray.FromSlice(data, shape...)
	require.NoError(t, err)
	return a
}

func TestFromArrays(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2}, 2)
	b := arrayOf(t, []float64{3, 4}, 2)
	s := FromArrays(a, b)

	require.Equal(2, LengthHint(s, -1))

	got, err := s.Next()
	require.NoError(err)
	require.Same(a, got)
	require.Equal(1, LengthHint(s, -1))

	got, err = s.Next()
	require.NoError(err)
	require.Same(b, got)

	_, err = s.Next()
	require.Equal(ErrStreamExhausted, err)
	_, err = s.Next()
	require.Equal(ErrStreamExhausted, err)
}

func TestFromChan(t *testing.T) {
	require := require.New(t)

	ch := make(chan *ndarray.Array[float64], 2)
	a := arrayOf(t, []float64{1}, 1)
	ch <- a
	close(ch)

	s := FromChan(ch)
	got, err := s.Next()
	require.NoError(err)
	require.Same(a, got)

	_, err = s.Next()
	require.Equal(ErrStreamExhausted, err)
}

func TestRepeat(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1, 2}, 2)
	s := Repeat(a, 3)
	require.Equal(3, LengthHint(s, -1))

	for i := 0; i < 3; i++ {
		got, err := s.Next()
		require.NoError(err)
		require.Same(a, got)
	}

	_, err := s.Next()
	require.Equal(ErrStreamExhausted, err)
}

func TestPeek(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1}, 1)
	b := arrayOf(t, []float64{2}, 1)

	first, s, err := Peek(FromArrays(a, b))
	require.NoError(err)
	require.Same(a, first)

	collected, err := Collect(s)
	require.NoError(err)
	require.Equal([]*ndarray.Array[float64]{a, b}, collected)

	_, _, err = Peek(FromArrays[float64]())
	require.Equal(ErrStreamExhausted, err)
}

func TestLengthHintDefault(t *testing.T) {
	require := require.New(t)

	s := FromFunc(func() (*ndarray.Array[float64], error) {
		return nil, ErrStreamExhausted
	})
	require.Equal(7, LengthHint(s, 7))
}

func TestLast(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1}, 1)
	b := arrayOf(t, []float64{2}, 1)

	got, err := Last[float64](FromArrays(a, b))
	require.NoError(err)
	require.Same(b, got)

	_, err = Last[float64](FromArrays[float64]())
	require.Equal(ErrStreamExhausted, err)
}

func TestCastStream(t *testing.T) {
	require := require.New(t)

	a := arrayOf(t, []float64{1.9, 2.1}, 2)
	s := Cast[int32](FromArrays(a))

	got, err := s.Next()
	require.NoError(err)
	require.Equal([]int32{1, 2}, got.Data())

	_, err = s.Next()
	require.Equal(ErrStreamExhausted, err)
}
