package proto

import (
	"bytes"
	"fmt"
	"io"

	"github.com/erizocosmico/ndstream/internal/bin"
)

// Stacking is the axis value that selects accumulation along a new
// leading axis instead of reduction along an existing one.
const Stacking int32 = -1

// FoldData is the payload of a FoldChunk request. It carries the name
// of the operator to fold with, the element kind of the arrays, the
// reduction settings and the marshalled arrays of the chunk.
type FoldData struct {
	// Operator is the registered name of the operator.
	Operator string
	// Kind is the element kind byte of the chunk arrays.
	Kind uint8
	// Axis to reduce along, or Stacking.
	Axis int32
	// Flatten folds every element of every array into a scalar.
	Flatten bool
	// IgnoreNaN replaces NaNs with the operator identity.
	IgnoreNaN bool
	// Chunk is the marshalled arrays to fold.
	Chunk [][]byte
}

// Encode encodes the fold data to bytes.
func (f *FoldData) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.WriteString(&buf, f.Operator); err != nil {
		return nil, err
	}

	if err := bin.WriteUint8(&buf, f.Kind); err != nil {
		return nil, err
	}

	if err := bin.WriteInt32(&buf, f.Axis); err != nil {
		return nil, err
	}

	if err := bin.WriteBool(&buf, f.Flatten); err != nil {
		return nil, err
	}

	if err := bin.WriteBool(&buf, f.IgnoreNaN); err != nil {
		return nil, err
	}

	if err := bin.WriteUint32(&buf, uint32(len(f.Chunk))); err != nil {
		return nil, err
	}

	for _, a := range f.Chunk {
		if err := bin.WriteBytes(&buf, a); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// ParseFoldData parses fold data from the given bytes.
func ParseFoldData(data []byte) (*FoldData, error) {
	var f FoldData
	r := bytes.NewReader(data)

	var err error
	f.Operator, err = bin.ReadString(r)
	if err != nil {
		return nil, fmt.Errorf("proto: can't read fold operator: %s", err)
	}

	f.Kind, err = bin.ReadUint8(r)
	if err != nil {
		return nil, fmt.Errorf("proto: can't read fold kind: %s", err)
	}

	f.Axis, err = bin.ReadInt32(r)
	if err != nil {
		return nil, fmt.Errorf("proto: can't read fold axis: %s", err)
	}

	f.Flatten, err = bin.ReadBool(r)
	if err != nil {
		return nil, fmt.Errorf("proto: can't read fold flags: %s", err)
	}

	f.IgnoreNaN, err = bin.ReadBool(r)
	if err != nil {
		return nil, fmt.Errorf("proto: can't read fold flags: %s", err)
	}

	n, err := bin.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("proto: can't read fold chunk size: %s", err)
	}

	f.Chunk = make([][]byte, int(n))
	for i := range f.Chunk {
		f.Chunk[i], err = bin.ReadBytes(r)
		if err != nil {
			return nil, fmt.Errorf("proto: can't read fold chunk array %d: %s", i, err)
		}
	}

	if r.Len() > 0 {
		return nil, io.ErrShortBuffer
	}

	return &f, nil
}
