package markers

import (
	"github.com/pkg/errors"
)

// TypeTable interns marker type names in first-seen order.
// The writer and the reader of a stream must use tables with the same scope:
// one table per save stream, one table per snapshot unit.
// The zero value is an empty table ready for use.
type TypeTable struct {
	names []string
	index map[string]int
}

// NewTypeTable returns an empty table
func NewTypeTable() *TypeTable {
	return &TypeTable{}
}

// Len returns the number of interned names
func (t *TypeTable) Len() int {
	return len(t.names)
}

// Lookup returns the index of name, if present
func (t *TypeTable) Lookup(name string) (int, bool) {
	i, exists := t.index[name]
	return i, exists
}

// Name returns the name at index i
func (t *TypeTable) Name(i int) (string, bool) {
	if i < 0 || i >= len(t.names) {
		return "", false
	}
	return t.names[i], true
}

// Names returns a copy of all names in index order
func (t *TypeTable) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *TypeTable) add(name string) int {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	i := len(t.names)
	t.names = append(t.names, name)
	t.index[name] = i
	return i
}

// WriteTypeRef writes a back-reference if the name was already written to
// this table, otherwise the full name, which is then interned.
func (e *Encoder) WriteTypeRef(name string, table *TypeTable) error {
	if i, exists := table.Lookup(name); exists {
		if err := e.WriteByte(TypeIndex); err != nil {
			return err
		}
		return e.WriteInt32(int32(i))
	}
	if err := e.WriteByte(TypeQName); err != nil {
		return err
	}
	if err := e.WriteUTF(name); err != nil {
		return err
	}
	// Only intern once the name is on the wire, so that the table never
	// refers to something the reader has not seen.
	table.add(name)
	return nil
}

// ReadTypeRef reads a type reference written by WriteTypeRef
func (d *Decoder) ReadTypeRef(table *TypeTable) (string, error) {
	offset := d.off
	tag, err := d.ReadByte()
	if err != nil {
		return "", err
	}
	switch tag {
	case TypeQName:
		name, err := d.ReadUTF()
		if err != nil {
			return "", err
		}
		table.add(name)
		return name, nil
	case TypeIndex:
		i, err := d.ReadInt32()
		if err != nil {
			return "", err
		}
		name, ok := table.Name(int(i))
		if !ok {
			return "", errors.Wrapf(ErrInvalidReference,
				"index %d at offset %d, table has %d entries", i, offset, table.Len())
		}
		return name, nil
	default:
		return "", &TagError{What: "type reference", Tag: tag, Offset: offset}
	}
}
