package markers

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrIOFailure matches any error returned by the underlying sink.
	ErrIOFailure = errors.New("marker stream I/O failure")
	// ErrMalformedStream indicates an unknown tag or version in the input.
	ErrMalformedStream = errors.New("malformed marker stream")
	// ErrTruncatedStream indicates the input ended before a declared length.
	ErrTruncatedStream = errors.New("truncated marker stream")
	// ErrInvalidReference indicates a type index without a table entry.
	ErrInvalidReference = errors.New("invalid type reference")

	ErrStringTooLong     = errors.New("string too long for marker stream")
	ErrTooManyAttributes = errors.New("too many attributes for marker stream")
)

// IOError wraps a write error from the sink
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIOFailure
}

// TagError is returned when a tag byte has no known meaning
type TagError struct {
	What   string // "attribute value" or "type reference"
	Tag    byte
	Offset int
}

func (e *TagError) Error() string {
	return fmt.Sprintf("unknown %s tag %d at offset %d", e.What, e.Tag, e.Offset)
}

func (e *TagError) Is(target error) bool {
	return target == ErrMalformedStream
}

// VersionError is returned when a stream does not start with the expected
// format version.
type VersionError struct {
	Got  int32
	Want int32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported marker format version %d, expected %d", e.Got, e.Want)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrMalformedStream
}
