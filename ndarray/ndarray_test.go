package ndarray

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndIndexing(t *testing.T) {
	require := require.New(t)

	a := New[float64](2, 3)
	require.Equal(Shape{2, 3}, a.Shape())
	require.Equal(2, a.NDim())
	require.Equal(6, a.Size())

	a.SetAt(5, 1, 2)
	require.Equal(float64(5), a.At(1, 2))
	require.Equal(float64(5), a.Data()[5])
}

func TestFromSlice(t *testing.T) {
	require := require.New(t)

	a, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(err)
	require.Equal(Shape{2, 3}, a.Shape())
	require.Equal(float64(6), a.At(1, 2))

	_, err = FromSlice([]float64{1, 2, 3}, 2, 3)
	require.Error(err)
}

func TestConstructors(t *testing.T) {
	require := require.New(t)

	require.Equal([]float64{0, 0, 0, 0}, Zeros[float64](2, 2).Data())
	require.Equal([]float64{1, 1, 1, 1}, Ones[float64](2, 2).Data())
	require.Equal([]float64{7, 7, 7, 7}, Full[float64](7, 2, 2).Data())

	s := Scalar[float64](3)
	require.Equal(Shape{}, s.Shape())
	require.Equal(0, s.NDim())
	require.Equal([]float64{3}, s.Data())
}

func TestClone(t *testing.T) {
	require := require.New(t)

	a, err := FromSlice([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(err)

	b := a.Clone()
	b.SetAt(9, 0, 0)
	require.Equal(float64(1), a.At(0, 0))
	require.Equal(float64(9), b.At(0, 0))
}

func TestEqualAndAllClose(t *testing.T) {
	require := require.New(t)

	a, err := FromSlice([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(err)
	b := a.Clone()

	require.True(a.Equal(b))
	require.True(a.AllClose(b, 0))

	b.SetAt(2+1e-12, 0, 1)
	require.False(a.Equal(b))
	require.True(a.AllClose(b, 1e-9))
	require.False(a.AllClose(b, 1e-15))

	c, err := FromSlice([]float64{1, 2, 3, 4}, 4)
	require.NoError(err)
	require.False(a.Equal(c))
}

func TestCast(t *testing.T) {
	require := require.New(t)

	a, err := FromSlice([]float64{1.7, 2.2, 3.9, 4.1}, 2, 2)
	require.NoError(err)

	b := Cast[int32](a)
	require.Equal(Shape{2, 2}, b.Shape())
	require.Equal([]int32{1, 2, 3, 4}, b.Data())

	back := Cast[float64](b)
	require.Equal([]float64{1, 2, 3, 4}, back.Data())
}
