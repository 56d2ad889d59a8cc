package ndarray

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies the element type of an array on the wire.
type Kind uint8

const (
	// InvalidKind is not a valid element kind.
	InvalidKind Kind = iota
	// Float64 element kind.
	Float64
	// Float32 element kind.
	Float32
	// Int64 element kind.
	Int64
	// Int32 element kind.
	Int32
	lastKind
)

func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int64:
		return "int64"
	case Int32:
		return "int32"
	default:
		return fmt.Sprintf("invalid kind %d", uint8(k))
	}
}

func (k Kind) size() int {
	switch k {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	default:
		return 0
	}
}

// KindOf returns the wire kind for the element type T.
func KindOf[T Number]() Kind {
	switch any(*new(T)).(type) {
	case float64:
		return Float64
	case float32:
		return Float32
	case int64:
		return Int64
	case int32:
		return Int32
	default:
		return InvalidKind
	}
}

// PeekKind reports the element kind of a marshalled array without
// decoding it.
func PeekKind(b []byte) (Kind, error) {
	if len(b) == 0 {
		return InvalidKind, fmt.Errorf("ndarray: empty payload")
	}

	k := Kind(b[0])
	if k == InvalidKind || k >= lastKind {
		return InvalidKind, fmt.Errorf("ndarray: invalid kind %d", b[0])
	}

	return k, nil
}

// Marshal encodes an array for transfer: kind, number of dimensions, the
// dimensions as uint32 and the elements in little-endian order.
func Marshal[T Number](a *Array[T]) []byte {
	kind := KindOf[T]()
	b := make([]byte, 0, 2+4*a.NDim()+kind.size()*a.Size())
	b = append(b, byte(kind), byte(a.NDim()))

	for _, d := range a.shape {
		b = binary.LittleEndian.AppendUint32(b, uint32(d))
	}

	switch data := any(a.data).(type) {
	case []float64:
		for _, v := range data {
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
		}
	case []float32:
		for _, v := range data {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
		}
	case []int64:
		for _, v := range data {
			b = binary.LittleEndian.AppendUint64(b, uint64(v))
		}
	case []int32:
		for _, v := range data {
			b = binary.LittleEndian.AppendUint32(b, uint32(v))
		}
	}

	return b
}

// Unmarshal decodes an array marshalled with Marshal. The element kind in
// the payload must match T.
func Unmarshal[T Number](b []byte) (*Array[T], error) {
	kind, err := PeekKind(b)
	if err != nil {
		return nil, err
	}

	if want := KindOf[T](); kind != want {
		return nil, fmt.Errorf("ndarray: payload holds %s, not %s", kind, want)
	}

	if len(b) < 2 {
		return nil, fmt.Errorf("ndarray: truncated payload")
	}

	ndim := int(b[1])
	b = b[2:]
	if len(b) < 4*ndim {
		return nil, fmt.Errorf("ndarray: truncated shape")
	}

	shape := make(Shape, ndim)
	for i := range shape {
		shape[i] = int(binary.LittleEndian.Uint32(b[4*i:]))
	}
	b = b[4*ndim:]

	size := shape.Size()
	if len(b) != size*kind.size() {
		return nil, fmt.Errorf("ndarray: expected %d data bytes, got %d", size*kind.size(), len(b))
	}

	data := make([]T, size)
	switch out := any(data).(type) {
	case []float64:
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
		}
	case []float32:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		}
	case []int64:
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(b[8*i:]))
		}
	case []int32:
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(b[4*i:]))
		}
	}

	return &Array[T]{shape: shape, data: data}, nil
}
