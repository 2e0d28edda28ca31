package markers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTable_interning(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	enc := NewEncoder(buf)
	var table TypeTable // zero value is usable

	for _, name := range []string{"a.b", "c.d", "a.b", "c.d", "a.b"} {
		require.NoError(t, enc.WriteTypeRef(name, &table))
	}
	assert.Equal(t, []string{"a.b", "c.d"}, table.Names())
	assert.Equal(t, []byte{
		TypeQName, 0, 3, 'a', '.', 'b',
		TypeQName, 0, 3, 'c', '.', 'd',
		TypeIndex, 0, 0, 0, 0,
		TypeIndex, 0, 0, 0, 1,
		TypeIndex, 0, 0, 0, 0,
	}, buf.Bytes())

	readTable := NewTypeTable()
	d := NewDecoder(buf.Bytes())
	var names []string
	for d.More() {
		name, err := d.ReadTypeRef(readTable)
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"a.b", "c.d", "a.b", "c.d", "a.b"}, names)
	assert.Equal(t, table.Names(), readTable.Names())
}

func TestTypeTable_lookup(t *testing.T) {
	table := NewTypeTable()
	_, exists := table.Lookup("x")
	assert.False(t, exists)
	_, ok := table.Name(0)
	assert.False(t, ok)

	assert.Equal(t, 0, table.add("x"))
	assert.Equal(t, 1, table.add("y"))
	i, exists := table.Lookup("y")
	assert.True(t, exists)
	assert.Equal(t, 1, i)
	name, ok := table.Name(0)
	assert.True(t, ok)
	assert.Equal(t, "x", name)
	_, ok = table.Name(-1)
	assert.False(t, ok)

	names := table.Names()
	names[0] = "changed"
	n, _ := table.Name(0)
	assert.Equal(t, "x", n, "Names returns a copy")
}

func TestDecoder_ReadTypeRef_errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"index-empty-table", []byte{TypeIndex, 0, 0, 0, 0}, ErrInvalidReference},
		{"index-negative", []byte{TypeIndex, 0xff, 0xff, 0xff, 0xff}, ErrInvalidReference},
		{"unknown-tag", []byte{3, 0, 0}, ErrMalformedStream},
		{"zero-tag", []byte{0}, ErrMalformedStream},
		{"short-name", []byte{TypeQName, 0, 4, 'a'}, ErrTruncatedStream},
		{"short-index", []byte{TypeIndex, 0}, ErrTruncatedStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTypeTable()
			_, err := NewDecoder(tt.data).ReadTypeRef(table)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, table.Len())
		})
	}
}

func TestEncoder_WriteTypeRef_failedWriteNotInterned(t *testing.T) {
	table := NewTypeTable()
	enc := NewEncoder(&failWriter{limit: 2})
	err := enc.WriteTypeRef("a.b", table)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.Equal(t, 0, table.Len())
}
