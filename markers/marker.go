package markers

import (
	"github.com/pkg/errors"
)

// Marker is a typed annotation attached to a resource
type Marker struct {
	ID         int64
	Type       string // dotted qualified name
	Attributes Attributes
}

// Clone returns a copy with its own attribute slice
func (m Marker) Clone() Marker {
	m.Attributes = m.Attributes.Clone()
	return m
}

// WriteMarker writes the id, the type reference and the attributes.
func (e *Encoder) WriteMarker(m Marker, table *TypeTable) error {
	if err := e.WriteInt64(m.ID); err != nil {
		return err
	}
	if err := e.WriteTypeRef(m.Type, table); err != nil {
		return errors.Wrapf(err, "marker %d type", m.ID)
	}
	if err := e.WriteAttributes(m.Attributes); err != nil {
		return errors.Wrapf(err, "marker %d", m.ID)
	}
	return nil
}

// ReadMarker reads a marker written by WriteMarker
func (d *Decoder) ReadMarker(table *TypeTable) (m Marker, err error) {
	m.ID, err = d.ReadInt64()
	if err != nil {
		return m, err
	}
	m.Type, err = d.ReadTypeRef(table)
	if err != nil {
		return m, errors.Wrapf(err, "marker %d type", m.ID)
	}
	m.Attributes, err = d.ReadAttributes()
	if err != nil {
		return m, errors.Wrapf(err, "marker %d", m.ID)
	}
	return m, nil
}
