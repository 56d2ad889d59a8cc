package ndstream

import (
	"fmt"
	"sync"

	"github.com/erizocosmico/ndstream/ndarray"
)

// Operators cross the worker process boundary by name. The registry maps
// (name, element kind) pairs back to operators so a worker can rebuild
// the fold it was asked to run. Builtin operators are pre-registered for
// every element kind; custom operators must be registered by the worker
// binary as well as the caller.

type registryKey struct {
	name string
	kind ndarray.Kind
}

var (
	registryMut sync.RWMutex
	registry    = make(map[registryKey]any)
)

// RegisterOperator makes an operator reachable by name for the element
// type T. Registering a name twice for the same kind replaces the
// previous entry.
func RegisterOperator[T ndarray.Number](op Operator[T]) error {
	if op.Name == "" {
		return fmt.Errorf("ndstream: cannot register an unnamed operator")
	}

	if op.Func == nil {
		return ErrInvalidOperator
	}

	registryMut.Lock()
	registry[registryKey{op.Name, ndarray.KindOf[T]()}] = op
	registryMut.Unlock()
	return nil
}

// LookupOperator retrieves a registered operator by name for the element
// type T.
func LookupOperator[T ndarray.Number](name string) (Operator[T], bool) {
	registryMut.RLock()
	v, ok := registry[registryKey{name, ndarray.KindOf[T]()}]
	registryMut.RUnlock()
	if !ok {
		return Operator[T]{}, false
	}

	op, ok := v.(Operator[T])
	return op, ok
}

// RegisteredOperators returns the number of (name, kind) operator
// registrations.
func RegisteredOperators() int {
	registryMut.RLock()
	defer registryMut.RUnlock()
	return len(registry)
}

func registerBuiltins[T ndarray.Number]() {
	for _, op := range []Operator[T]{
		Add[T](),
		Multiply[T](),
		Maximum[T](),
		Minimum[T](),
		LogicalAnd[T](),
		LogicalOr[T](),
		Subtract[T](),
	} {
		if err := RegisterOperator(op); err != nil {
			panic(err)
		}
	}
}

func init() {
	registerBuiltins[float64]()
	registerBuiltins[float32]()
	registerBuiltins[int64]()
	registerBuiltins[int32]()
}
