package markers

import (
	"github.com/pkg/errors"
)

// minMarkerSize is the smallest possible encoded marker: id, a type name
// of zero length and a zero attribute count.
const minMarkerSize = 8 + 1 + 2 + 2

// Block is the decoded form of one resource entry in a stream
type Block struct {
	Path    string
	Markers []Marker
}

// WriteBlock writes the resource path, the kept count and every kept marker
// in the original order. It panics if p was not computed for markers.
func (e *Encoder) WriteBlock(path string, markers []Marker, p Partition, table *TypeTable) error {
	if len(p.Keep) != len(markers) {
		panic("partition does not match the marker set")
	}
	if err := e.WriteUTF(path); err != nil {
		return errors.Wrapf(err, "resource %s", path)
	}
	if err := e.WriteInt32(int32(p.Count)); err != nil {
		return errors.Wrapf(err, "resource %s", path)
	}
	for i, m := range markers {
		if !p.Keep[i] {
			continue
		}
		if err := e.WriteMarker(m, table); err != nil {
			return errors.Wrapf(err, "resource %s", path)
		}
	}
	return nil
}

// ReadBlock reads one resource entry
func (d *Decoder) ReadBlock(table *TypeTable) (b Block, err error) {
	b.Path, err = d.ReadUTF()
	if err != nil {
		return b, errors.Wrap(err, "resource path")
	}
	count, err := d.ReadInt32()
	if err != nil {
		return b, errors.Wrapf(err, "resource %s", b.Path)
	}
	if count < 0 {
		return b, errors.Wrapf(ErrMalformedStream, "resource %s: negative marker count %d", b.Path, count)
	}
	if count == 0 {
		return b, nil
	}
	// Do not trust the count for the allocation size
	if maxCount := d.Remaining() / minMarkerSize; int(count) > maxCount {
		return b, errors.Wrapf(ErrTruncatedStream,
			"resource %s: %d markers cannot fit in %d bytes", b.Path, count, d.Remaining())
	}
	b.Markers = make([]Marker, 0, count)
	for i := 0; i < int(count); i++ {
		m, err := d.ReadMarker(table)
		if err != nil {
			return b, errors.Wrapf(err, "resource %s", b.Path)
		}
		b.Markers = append(b.Markers, m)
	}
	return b, nil
}
