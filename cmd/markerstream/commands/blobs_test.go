package commands

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/PowerDNS/simpleblob"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PowerDNS/markerstream/markers"
)

func testBlocks() []markers.Block {
	return []markers.Block{
		{
			Path: "/p/a",
			Markers: []markers.Marker{
				{ID: 1, Type: "task", Attributes: markers.Attributes{
					{Key: "line", Value: int32(3)},
					{Key: "done", Value: true},
				}},
			},
		},
		{Path: "/p/gone"},
	}
}

func dump(t *testing.T, format string) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, dumpBlocks(w, format, testBlocks()))
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func TestDumpBlocks_text(t *testing.T) {
	assert.Equal(t,
		"### /p/a (1 markers)\n1  task  line=3 done=true\n### /p/gone (0 markers)\n",
		string(dump(t, "text")))
}

func TestDumpBlocks_yaml(t *testing.T) {
	out := string(dump(t, "yaml"))
	assert.Contains(t, out, "path: /p/a")
	assert.Contains(t, out, "type: task")
	assert.Contains(t, out, "line: 3")
}

func TestDumpBlocks_cbor(t *testing.T) {
	var got []dumpBlock
	require.NoError(t, cbor.Unmarshal(dump(t, "cbor"), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "/p/a", got[0].Path)
	require.Len(t, got[0].Markers, 1)
	assert.Equal(t, "task", got[0].Markers[0].Type)
	assert.Equal(t, []any{"line", uint64(3)}, got[0].Markers[0].Attributes[0])
	assert.Equal(t, []any{"done", true}, got[0].Markers[0].Attributes[1])
	assert.Empty(t, got[1].Markers)
}

func TestDumpBlocks_unknownFormat(t *testing.T) {
	w := bufio.NewWriter(&bytes.Buffer{})
	assert.Error(t, dumpBlocks(w, "xml", nil))
}

func TestLoadBlocks(t *testing.T) {
	_, err := loadBlocks("other", nil)
	assert.Error(t, err)

	blocks, err := loadBlocks(markers.KindSave, nil)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestSortByTime(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	newer := markers.Name("b", markers.KindSave, ts.Add(time.Hour))
	older := markers.Name("a", markers.KindSnap, ts)
	list := simpleblob.BlobList{
		{Name: newer},
		{Name: "zzz.txt"},
		{Name: older},
		{Name: "aaa.txt"},
	}
	sortByTime(list)
	assert.Equal(t, []string{"aaa.txt", "zzz.txt", older, newer}, list.Names())
}
