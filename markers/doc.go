/*
Package markers implements the binary persistence format for resource markers.

Markers are small typed records (problems, tasks, bookmarks) attached to
resources. Two kinds of streams are written:

  - A save stream is a full capture of all persistent markers. It starts with
    a single version header, followed by one block per resource that has at
    least one persistent marker. A resource that does not appear in a save
    has no persistent markers.
  - A snapshot stream captures only resources whose markers changed. Every
    unit carries its own version header and type table, and a unit is also
    written when no persistent markers remain, to record their removal.

## Grammar

All integers are big-endian. Strings are a uint16 byte length followed by
the bytes.

	SAVE_FILE  := VERSION(=2) RESOURCE*
	SNAP_FILE  := (VERSION(=1) RESOURCE)*
	RESOURCE   := PATH:string COUNT:int32 MARKER{COUNT}
	MARKER     := ID:int64 TYPEREF ATTR_COUNT:uint16 ATTR{ATTR_COUNT}
	TYPEREF    := 0x02 NAME:string | 0x01 INDEX:int32
	ATTR       := KEY:string VALUE
	VALUE      := 0x00 | 0x01 bool:byte | 0x02 int32 | 0x03 string

## Type interning

Marker type names are long dotted identifiers shared by many markers. The
first occurrence of a name in a table scope is written in full and appended
to the table, later occurrences refer to it by index. In a save stream the
scope is the whole stream, in a snapshot stream it is a single unit.

## Unsupported values

Attribute values that are not nil, bool, string or an integer that fits in
an int32 are written as null. This is lossy on purpose and not reported as an
error; Encoder.NumNullFallbacks counts these occurrences.
*/
package markers
