package ndstream

import "github.com/erizocosmico/ndstream/ndarray"

type teeState[T ndarray.Number] struct {
	src    Stream[T]
	queues [][]*ndarray.Array[T]
	err    error
}

type teeBranch[T ndarray.Number] struct {
	state *teeState[T]
	idx   int
}

// Tee splits a stream into n streams that can be advanced independently.
// Elements not yet consumed by every branch are buffered. The original
// stream must not be used again.
func Tee[T ndarray.Number](s Stream[T], n int) []Stream[T] {
	state := &teeState[T]{src: s, queues: make([][]*ndarray.Array[T], n)}
	branches := make([]Stream[T], n)
	for i := range branches {
		branches[i] = &teeBranch[T]{state: state, idx: i}
	}
	return branches
}

func (b *teeBranch[T]) Next() (*ndarray.Array[T], error) {
	state := b.state
	if len(state.queues[b.idx]) == 0 {
		if state.err != nil {
			return nil, state.err
		}

		a, err := state.src.Next()
		if err != nil {
			state.err = err
			return nil, err
		}

		for i := range state.queues {
			state.queues[i] = append(state.queues[i], a)
		}
	}

	a := state.queues[b.idx][0]
	state.queues[b.idx] = state.queues[b.idx][1:]
	return a, nil
}
