package markers

import (
	"math"

	"github.com/pkg/errors"
)

// Attribute is a single marker attribute
type Attribute struct {
	Key   string
	Value any
}

// Attributes holds the attributes of a marker in the order they were set.
// This order is also the order on the wire.
type Attributes []Attribute

// Get returns the value for key
func (a Attributes) Get(key string) (any, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key in place, or appends it.
func (a Attributes) Set(key string, value any) Attributes {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attribute{Key: key, Value: value})
}

// Delete removes key, keeping the order of the remaining attributes
func (a Attributes) Delete(key string) Attributes {
	for i := range a {
		if a[i].Key == key {
			return append(a[:i:i], a[i+1:]...)
		}
	}
	return a
}

// Clone returns a copy that does not share the backing array
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	c := make(Attributes, len(a))
	copy(c, a)
	return c
}

// WriteAttributes writes the attribute count followed by key/value pairs.
// A nil Attributes writes a zero count.
func (e *Encoder) WriteAttributes(attrs Attributes) error {
	if len(attrs) > math.MaxUint16 {
		return errors.Wrapf(ErrTooManyAttributes, "%d attributes", len(attrs))
	}
	if err := e.WriteUint16(uint16(len(attrs))); err != nil {
		return err
	}
	for _, attr := range attrs {
		if err := e.WriteUTF(attr.Key); err != nil {
			return errors.Wrapf(err, "attribute key %q", attr.Key)
		}
		if err := e.WriteValue(attr.Value); err != nil {
			return errors.Wrapf(err, "attribute %q", attr.Key)
		}
	}
	return nil
}

// ReadAttributes reads an attribute map. Zero attributes are returned as nil.
func (d *Decoder) ReadAttributes() (Attributes, error) {
	count, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	attrs := make(Attributes, 0, count)
	for i := 0; i < int(count); i++ {
		key, err := d.ReadUTF()
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %d of %d", i, count)
		}
		val, err := d.ReadValue()
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", key)
		}
		attrs = append(attrs, Attribute{Key: key, Value: val})
	}
	return attrs, nil
}
