package markers

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Encoder writes the big-endian primitives of the marker stream to a sink.
// It never buffers and never closes the sink.
type Encoder struct {
	w   io.Writer
	buf [8]byte
	n   int64

	// Some statistics for logging (not persisted)
	NumNullFallbacks int64 // values of an unsupported kind written as null
}

// NewEncoder returns an Encoder that writes to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Written returns the number of bytes accepted by the sink so far
func (e *Encoder) Written() int64 {
	return e.n
}

func (e *Encoder) write(op string, b []byte) error {
	n, err := e.w.Write(b)
	e.n += int64(n)
	if err != nil {
		return &IOError{Op: op, Err: err}
	}
	if n != len(b) {
		return &IOError{Op: op, Err: io.ErrShortWrite}
	}
	return nil
}

func (e *Encoder) WriteByte(c byte) error {
	e.buf[0] = c
	return e.write("write byte", e.buf[:1])
}

func (e *Encoder) WriteBool(v bool) error {
	if v {
		return e.WriteByte(1)
	}
	return e.WriteByte(0)
}

func (e *Encoder) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	return e.write("write uint16", e.buf[:2])
}

func (e *Encoder) WriteInt32(v int32) error {
	binary.BigEndian.PutUint32(e.buf[:4], uint32(v))
	return e.write("write int32", e.buf[:4])
}

func (e *Encoder) WriteInt64(v int64) error {
	binary.BigEndian.PutUint64(e.buf[:8], uint64(v))
	return e.write("write int64", e.buf[:8])
}

// WriteUTF writes s as a uint16 byte length followed by its bytes.
// Strings longer than 65535 bytes are rejected, not truncated.
func (e *Encoder) WriteUTF(s string) error {
	if len(s) > math.MaxUint16 {
		return errors.Wrapf(ErrStringTooLong, "%d bytes", len(s))
	}
	if err := e.WriteUint16(uint16(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return e.write("write string", []byte(s))
}
