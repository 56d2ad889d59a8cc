// Package parallel folds streams of arrays across worker processes. The
// stream is cut into chunks, each chunk is folded by a worker and the
// partial results are combined locally, either in chunk order or in
// arrival order.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ndstream "github.com/erizocosmico/ndstream"
	"github.com/erizocosmico/ndstream/internal/pool"
	"github.com/erizocosmico/ndstream/internal/proto"
	workerlib "github.com/erizocosmico/ndstream/internal/worker"
	"github.com/erizocosmico/ndstream/ndarray"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNonAssociative is returned when folding in parallel with an
	// operator whose result depends on how the stream is chunked.
	ErrNonAssociative = errors.New("parallel: operator is not associative")
	// ErrNonCommutative is returned when combining results in arrival
	// order with an operator whose result depends on operand order.
	ErrNonCommutative = errors.New("parallel: operator is not commutative")
	// ErrUnregisteredOperator is returned when the operator is not in the
	// registry and therefore cannot be named across the process boundary.
	ErrUnregisteredOperator = errors.New("parallel: operator is not registered")
	// ErrExistingAxis is returned when reducing along an existing axis of
	// the arrays. Those reductions grow with the stream and their partial
	// results cannot be combined, so they are sequential only.
	ErrExistingAxis = errors.New("parallel: existing-axis reductions cannot be parallelized")
)

// Options provides configuration options for the parallel fold.
type Options struct {
	// Processes is the number of worker processes to spawn. Values below
	// two degrade to a plain sequential fold.
	Processes int
	// TotalHint is the expected number of elements in the stream, used to
	// pick the chunk size. When zero, the stream's own length hint is
	// used if it has one, and chunks hold a single array otherwise.
	TotalHint int
	// Unordered combines partial results in arrival order instead of
	// chunk order. Requires a commutative operator.
	Unordered bool
	// Workers is a pre-built pool to fold on instead of spawning one.
	// The pool is not closed by the fold.
	Workers *pool.Pool
	// WorkerBinary is the binary spawned workers run. By default, the
	// running binary.
	WorkerBinary string
	// Network spawned workers listen on. By default, unix sockets.
	Network string
	// Client options for the connections with the workers.
	Client *workerlib.ClientOptions
}

type chunk struct {
	idx  int
	fold *proto.FoldData
}

type partial[T ndarray.Number] struct {
	idx int
	arr *ndarray.Array[T]
	err error
}

// Fold reduces the whole stream with the given operator, distributing
// chunks of it across worker processes. It returns the same value the
// sequential fold would, as long as the operator is associative, and
// also commutative if Unordered is set.
func Fold[T ndarray.Number](
	ctx context.Context,
	s ndstream.Stream[T],
	op ndstream.Operator[T],
	ropts *ndstream.ReduceOptions,
	opts *Options,
) (*ndarray.Array[T], error) {
	var processes, totalHint int
	var unordered bool
	var workers *pool.Pool
	var binary, network string
	var cliOpts *workerlib.ClientOptions
	if opts != nil {
		processes = opts.Processes
		totalHint = opts.TotalHint
		unordered = opts.Unordered
		workers = opts.Workers
		binary = opts.WorkerBinary
		network = opts.Network
		cliOpts = opts.Client
	}

	if workers == nil && processes <= 1 {
		return ndstream.Fold(s, op, ropts)
	}

	if workers != nil {
		processes = workers.Size()
	}

	if op.Func == nil {
		return nil, fmt.Errorf("%w: %q has no kernel", ndstream.ErrInvalidOperator, op.Name)
	}

	if op.Boolean {
		return nil, fmt.Errorf("%w: %q", ndstream.ErrUnsupportedOperator, op.Name)
	}

	if op.NonAssociative {
		return nil, fmt.Errorf("%w: %q", ErrNonAssociative, op.Name)
	}

	if unordered && op.NonCommutative {
		return nil, fmt.Errorf("%w: %q", ErrNonCommutative, op.Name)
	}

	if _, ok := ndstream.LookupOperator[T](op.Name); !ok {
		return nil, fmt.Errorf("%w: %q for %s arrays", ErrUnregisteredOperator, op.Name, ndarray.KindOf[T]())
	}

	axis := int(proto.Stacking)
	var flatten, ignoreNaN bool
	if ropts != nil {
		flatten = ropts.Flatten
		ignoreNaN = ropts.IgnoreNaN
		if ropts.Axis != nil {
			axis = *ropts.Axis
		}
	}

	if axis < int(proto.Stacking) {
		return nil, fmt.Errorf("%w: %d", ndstream.ErrAxisOutOfRange, axis)
	}

	if ignoreNaN && op.Identity == nil {
		return nil, fmt.Errorf("%w: cannot ignore NaNs with %q", ndstream.ErrIdentityRequired, op.Name)
	}

	if axis != int(proto.Stacking) && !flatten {
		first, rest, err := ndstream.Peek(s)
		if err == ndstream.ErrStreamExhausted {
			return nil, ndstream.ErrStreamExhausted
		}
		if err != nil {
			return nil, err
		}

		if axis < first.NDim() {
			return nil, fmt.Errorf("%w: axis %d", ErrExistingAxis, axis)
		}

		// Beyond the rank the axis means stacking anyway.
		axis = int(proto.Stacking)
		s = rest
	}

	p := workers
	if p == nil {
		var err error
		p, err = pool.Spawn(processes, &pool.Options{
			Binary:  binary,
			Network: network,
			Client:  cliOpts,
		})
		if err != nil {
			return nil, err
		}

		defer p.Close()
	}

	total := totalHint
	if total <= 0 {
		total = ndstream.LengthHint(s, 0)
	}

	chunkSize := total / processes
	if chunkSize < 1 {
		chunkSize = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan chunk)
	results := make(chan partial[T])

	var prodErr error
	go func() {
		defer close(jobs)
		prodErr = produce(ctx, s, op.Name, axis, flatten, ignoreNaN, chunkSize, jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < processes; i++ {
		w := p.Workers()[i%p.Size()]
		wg.Add(1)
		go func() {
			defer wg.Done()
			foldChunks(ctx, w, jobs, results)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	acc, err := combine(op, unordered, results, cancel)
	if err != nil {
		return nil, err
	}

	if prodErr != nil {
		return nil, prodErr
	}

	if acc == nil {
		return nil, ndstream.ErrStreamExhausted
	}

	return acc, nil
}

// produce cuts the stream into chunks of marshalled arrays and feeds
// them to the workers.
func produce[T ndarray.Number](
	ctx context.Context,
	s ndstream.Stream[T],
	operator string,
	axis int,
	flatten, ignoreNaN bool,
	chunkSize int,
	jobs chan<- chunk,
) error {
	var idx int
	var buf [][]byte
	flush := func() bool {
		if len(buf) == 0 {
			return true
		}

		c := chunk{idx, &proto.FoldData{
			Operator:  operator,
			Kind:      uint8(ndarray.KindOf[T]()),
			Axis:      int32(axis),
			Flatten:   flatten,
			IgnoreNaN: ignoreNaN,
			Chunk:     buf,
		}}

		select {
		case jobs <- c:
			idx++
			buf = nil
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		a, err := s.Next()
		if err == ndstream.ErrStreamExhausted {
			flush()
			return nil
		}
		if err != nil {
			return err
		}

		buf = append(buf, ndarray.Marshal(a))
		if len(buf) >= chunkSize {
			if !flush() {
				return nil
			}
		}
	}
}

func foldChunks[T ndarray.Number](
	ctx context.Context,
	w *pool.Worker,
	jobs <-chan chunk,
	results chan<- partial[T],
) {
	for c := range jobs {
		id := uuid.NewV4()
		logrus.WithField("id", id).
			WithField("chunk", c.idx).
			WithField("worker", w.Addr()).
			Debug("dispatching chunk")

		data, err := w.Client().FoldChunk(id, c.fold)

		var arr *ndarray.Array[T]
		if err == nil {
			arr, err = ndarray.Unmarshal[T](data)
		}

		select {
		case results <- partial[T]{c.idx, arr, err}:
		case <-ctx.Done():
			return
		}
	}
}

// combine folds the partial results into the final value, in chunk
// order unless unordered combining was requested. The first worker
// error aborts the fold and is returned once the workers have drained.
func combine[T ndarray.Number](
	op ndstream.Operator[T],
	unordered bool,
	results <-chan partial[T],
	cancel context.CancelFunc,
) (*ndarray.Array[T], error) {
	var acc *ndarray.Array[T]
	var firstErr error
	fold := func(a *ndarray.Array[T]) {
		if acc == nil {
			acc = a
			return
		}

		if err := acc.Combine(a, op.Func); err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	pending := make(map[int]*ndarray.Array[T])
	next := 0
	for r := range results {
		if firstErr != nil {
			continue
		}

		if r.err != nil {
			firstErr = r.err
			cancel()
			continue
		}

		if unordered {
			fold(r.arr)
			continue
		}

		pending[r.idx] = r.arr
		for {
			a, ok := pending[next]
			if !ok {
				break
			}

			delete(pending, next)
			next++
			fold(a)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	return acc, nil
}
