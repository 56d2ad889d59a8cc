package parallel

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"path/filepath"
	"testing"
	"time"

	ndstream "github.com/erizocosmico/ndstream"
	"github.com/erizocosmico/ndstream/internal/pool"
	"github.com/erizocosmico/ndstream/internal/proto"
	"github.com/erizocosmico/ndstream/internal/worker"
	"github.com/erizocosmico/ndstream/internal/worker/workertest"
	"github.com/erizocosmico/ndstream/ndarray"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/require"
)

func TestFoldSequentialDegrade(t *testing.T) {
	require := require.New(t)

	arrays := randomArrays(t, 5, 4, 4)
	expected, err := ndstream.Fold(ndstream.FromArrays(arrays...), ndstream.Add[float64](), nil)
	require.NoError(err)

	got, err := Fold(
		context.Background(),
		ndstream.FromArrays(arrays...),
		ndstream.Add[float64](),
		nil,
		&Options{Processes: 1},
	)
	require.NoError(err)
	require.True(expected.Equal(got))
}

func TestFoldMatchesSequential(t *testing.T) {
	require := require.New(t)

	p, stop := attachPool(t, 3)
	defer stop()

	arrays := randomArrays(t, 20, 8, 8)
	expected, err := ndstream.Fold(ndstream.FromArrays(arrays...), ndstream.Add[float64](), nil)
	require.NoError(err)

	got, err := Fold(
		context.Background(),
		ndstream.FromArrays(arrays...),
		ndstream.Add[float64](),
		nil,
		&Options{Workers: p, TotalHint: 10},
	)
	require.NoError(err)
	require.True(expected.AllClose(got, 1e-9))
}

func TestFoldUnordered(t *testing.T) {
	require := require.New(t)

	p, stop := attachPool(t, 3)
	defer stop()

	arrays := randomArrays(t, 20, 8, 8)
	expected, err := ndstream.Fold(ndstream.FromArrays(arrays...), ndstream.Add[float64](), nil)
	require.NoError(err)

	got, err := Fold(
		context.Background(),
		ndstream.FromArrays(arrays...),
		ndstream.Add[float64](),
		nil,
		&Options{Workers: p, Unordered: true},
	)
	require.NoError(err)
	require.True(expected.AllClose(got, 1e-9))
}

func TestFoldFlatten(t *testing.T) {
	require := require.New(t)

	p, stop := attachPool(t, 2)
	defer stop()

	arrays := randomArrays(t, 10, 4, 4)
	opts := &ndstream.ReduceOptions{Flatten: true}
	expected, err := ndstream.Fold(ndstream.FromArrays(arrays...), ndstream.Add[float64](), opts)
	require.NoError(err)

	got, err := Fold(
		context.Background(),
		ndstream.FromArrays(arrays...),
		ndstream.Add[float64](),
		opts,
		&Options{Workers: p},
	)
	require.NoError(err)
	require.True(expected.AllClose(got, 1e-9))
}

func TestFoldAxisBeyondRankFallsBackToStacking(t *testing.T) {
	require := require.New(t)

	p, stop := attachPool(t, 2)
	defer stop()

	arrays := randomArrays(t, 6, 3, 3)
	opts := &ndstream.ReduceOptions{Axis: ndstream.Along(5)}
	expected, err := ndstream.Fold(ndstream.FromArrays(arrays...), ndstream.Add[float64](), opts)
	require.NoError(err)

	got, err := Fold(
		context.Background(),
		ndstream.FromArrays(arrays...),
		ndstream.Add[float64](),
		opts,
		&Options{Workers: p},
	)
	require.NoError(err)
	require.True(expected.AllClose(got, 1e-9))
}

func TestFoldValidation(t *testing.T) {
	arrays := randomArrays(t, 4, 2, 2)
	testCases := []struct {
		name  string
		op    ndstream.Operator[float64]
		opts  *Options
		ropts *ndstream.ReduceOptions
		err   error
	}{
		{
			"non-associative",
			ndstream.Subtract[float64](),
			&Options{Processes: 2},
			nil,
			ErrNonAssociative,
		},
		{
			"non-commutative unordered",
			ndstream.Operator[float64]{
				Name:           "add",
				Func:           func(a, b float64) float64 { return a + b },
				NonCommutative: true,
			},
			&Options{Processes: 2, Unordered: true},
			nil,
			ErrNonCommutative,
		},
		{
			"boolean",
			ndstream.Greater[float64](),
			&Options{Processes: 2},
			nil,
			ndstream.ErrUnsupportedOperator,
		},
		{
			"unregistered",
			ndstream.Operator[float64]{
				Name: "not-in-registry",
				Func: func(a, b float64) float64 { return a + b },
			},
			&Options{Processes: 2},
			nil,
			ErrUnregisteredOperator,
		},
		{
			"existing axis",
			ndstream.Add[float64](),
			&Options{Processes: 2},
			&ndstream.ReduceOptions{Axis: ndstream.Along(0)},
			ErrExistingAxis,
		},
		{
			"axis out of range",
			ndstream.Add[float64](),
			&Options{Processes: 2},
			&ndstream.ReduceOptions{Axis: ndstream.Along(-3)},
			ndstream.ErrAxisOutOfRange,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fold(
				context.Background(),
				ndstream.FromArrays(arrays...),
				tt.op,
				tt.ropts,
				tt.opts,
			)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFoldWorkerError(t *testing.T) {
	require := require.New(t)

	addr := startTestWorker(t, workertest.Hooks{
		OnFoldChunk: func(id uuid.UUID, fold *proto.FoldData) ([]byte, error) {
			return nil, fmt.Errorf("chunk exploded")
		},
	})

	p, err := pool.Attach("unix", []string{addr}, nil)
	require.NoError(err)
	defer p.Close()

	arrays := randomArrays(t, 4, 2, 2)
	_, err = Fold(
		context.Background(),
		ndstream.FromArrays(arrays...),
		ndstream.Add[float64](),
		nil,
		&Options{Workers: p},
	)
	require.Error(err)
	require.Contains(err.Error(), "chunk exploded")
}

func attachPool(t *testing.T, n int) (*pool.Pool, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	var addrs []string
	for i := 0; i < n; i++ {
		addr := filepath.Join(t.TempDir(), fmt.Sprintf("worker-%d.sock", i))
		server := worker.NewServer("unix", addr, nil)
		go server.Start(ctx)
		waitForServer(t, addr)
		addrs = append(addrs, addr)
	}

	p, err := pool.Attach("unix", addrs, nil)
	require.NoError(t, err)

	return p, func() {
		p.Close()
		cancel()
	}
}

func startTestWorker(t *testing.T, hooks workertest.Hooks) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	addr := filepath.Join(t.TempDir(), "worker.sock")
	server := workertest.NewServer("unix", addr, hooks)
	go server.Start(ctx)
	waitForServer(t, addr)

	return addr
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()
	for i := 0; i < 100; i++ {
		conn, err := net.Dial("unix", addr)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never came up")
}

func randomArrays(t *testing.T, n int, shape ...int) []*ndarray.Array[float64] {
	t.Helper()
	rng := rand.New(rand.NewSource(42))

	arrays := make([]*ndarray.Array[float64], n)
	for i := range arrays {
		a := ndarray.New[float64](shape...)
		data := a.Data()
		for j := range data {
			data[j] = rng.Float64()
		}
		arrays[i] = a
	}

	return arrays
}
