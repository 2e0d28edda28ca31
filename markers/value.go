package markers

import (
	"math"
)

// WriteValue writes a tagged attribute value.
// Supported kinds are nil, bool, string and integers that fit in an int32.
// Any other value is written as null, there is no error for it.
// Integers are read back as int32 whatever their Go type was, so only int32
// values round-trip unchanged. NormalizeValue returns what will be read back.
func (e *Encoder) WriteValue(v any) error {
	switch val := v.(type) {
	case nil:
		return e.WriteByte(AttributeNull)
	case bool:
		if err := e.WriteByte(AttributeBoolean); err != nil {
			return err
		}
		return e.WriteBool(val)
	case string:
		if err := e.WriteByte(AttributeString); err != nil {
			return err
		}
		return e.WriteUTF(val)
	}
	if i, ok := asInt32(v); ok {
		if err := e.WriteByte(AttributeInteger); err != nil {
			return err
		}
		return e.WriteInt32(i)
	}
	e.NumNullFallbacks++
	return e.WriteByte(AttributeNull)
}

// NormalizeValue returns v the way ReadValue returns it after WriteValue:
// integers that fit become int32, unsupported kinds become nil.
func NormalizeValue(v any) any {
	switch v.(type) {
	case nil, bool, string:
		return v
	}
	if i, ok := asInt32(v); ok {
		return i
	}
	return nil
}

func asInt32(v any) (int32, bool) {
	var i int64
	switch val := v.(type) {
	case int32:
		return val, true
	case int16:
		return int32(val), true
	case int8:
		return int32(val), true
	case uint16:
		return int32(val), true
	case uint8:
		return int32(val), true
	case int:
		i = int64(val)
	case int64:
		i = val
	case uint32:
		i = int64(val)
	default:
		return 0, false
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int32(i), true
}

// ReadValue reads a tagged attribute value. Integers are returned as int32.
func (d *Decoder) ReadValue() (any, error) {
	offset := d.off
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case AttributeNull:
		return nil, nil
	case AttributeBoolean:
		return d.ReadBool()
	case AttributeInteger:
		return d.ReadInt32()
	case AttributeString:
		return d.ReadUTF()
	default:
		return nil, &TagError{What: "attribute value", Tag: tag, Offset: offset}
	}
}
