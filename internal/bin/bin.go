package bin

import (
	"encoding/binary"
	"io"
)

// WriteString writes the string size as uint32 to the writer and then the
// string itself as bytes.
func WriteString(w io.Writer, s string) error {
	return WriteBytes(w, []byte(s))
}

// ReadString reads 4 bytes for the string size and then the string itself
// from the given reader.
func ReadString(r io.Reader) (string, error) {
	b, err := ReadBytes(r)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// WriteUint8 writes a single byte to the given writer.
func WriteUint8(w io.Writer, n uint8) error {
	_, err := w.Write([]byte{n})
	return err
}

// ReadUint8 reads a single byte from the given reader.
func ReadUint8(r io.Reader) (uint8, error) {
	var b = make([]byte, 1)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, err
	}

	return b[0], nil
}

// WriteUint16 writes an uint16 to the given writer.
func WriteUint16(w io.Writer, n uint16) error {
	var b = make([]byte, 2)
	binary.LittleEndian.PutUint16(b, n)
	_, err := w.Write(b)
	return err
}

// ReadUint16 reads an uint16 from the given reader.
func ReadUint16(r io.Reader) (uint16, error) {
	var b = make([]byte, 2)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

// WriteUint32 writes an uint32 to the given writer.
func WriteUint32(w io.Writer, n uint32) error {
	var b = make([]byte, 4)
	binary.LittleEndian.PutUint32(b, n)
	_, err := w.Write(b)
	return err
}

// ReadUint32 reads an uint32 from the given reader.
func ReadUint32(r io.Reader) (uint32, error) {
	var b = make([]byte, 4)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// WriteInt32 writes an int32 to the given writer.
func WriteInt32(w io.Writer, n int32) error {
	return WriteUint32(w, uint32(n))
}

// ReadInt32 reads an int32 from the given reader.
func ReadInt32(r io.Reader) (int32, error) {
	n, err := ReadUint32(r)
	return int32(n), err
}

// WriteBool writes a bool as a single byte to the given writer.
func WriteBool(w io.Writer, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return WriteUint8(w, b)
}

// ReadBool reads a single byte bool from the given reader.
func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadUint8(r)
	return b != 0, err
}

// WriteBytes writes the bytes size as uint32 to the writer and then the
// bytes themselves.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteUint32(w, uint32(len(b))); err != nil {
		return err
	}

	_, err := w.Write(b)
	return err
}

// ReadBytes reads 4 bytes for the bytes size and then the bytes themselves
// from the given reader.
func ReadBytes(r io.Reader) ([]byte, error) {
	sz, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}

	b := make([]byte, int(sz))
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}

	return b, nil
}
