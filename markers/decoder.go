package markers

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Decoder reads the primitives of a marker stream from a byte slice.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder returns a Decoder positioned at the start of data
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// More reports if there is unread data left
func (d *Decoder) More() bool {
	return d.off < len(d.data)
}

// Offset returns the current read offset
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// take only advances the offset when enough data is available
func (d *Decoder) take(n int, what string) ([]byte, error) {
	if d.Remaining() < n {
		return nil, errors.Wrapf(ErrTruncatedStream,
			"%s: need %d bytes at offset %d, have %d", what, n, d.off, d.Remaining())
	}
	b := d.data[d.off : d.off+n : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1, "byte")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) ReadBool() (bool, error) {
	c, err := d.ReadByte()
	return c != 0, err
}

func (d *Decoder) ReadUint16() (uint16, error) {
	b, err := d.take(2, "uint16")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) ReadInt32() (int32, error) {
	b, err := d.take(4, "int32")
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (d *Decoder) ReadInt64() (int64, error) {
	b, err := d.take(8, "int64")
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// ReadUTF reads a uint16 length prefixed string
func (d *Decoder) ReadUTF() (string, error) {
	size, err := d.ReadUint16()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(size), "string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
