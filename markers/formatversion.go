package markers

const (
	// SaveFormatVersion is written once at the start of a full save stream.
	SaveFormatVersion int32 = 2

	// SnapFormatVersion is written at the start of every snapshot unit.
	// A snapshot file is a concatenation of such units, each with its own
	// type table.
	SnapFormatVersion int32 = 1
)

// Type reference tags
const (
	TypeIndex byte = 1 // int32 index into the type table follows
	TypeQName byte = 2 // full type name follows, appended to the type table
)

// Attribute value tags
const (
	AttributeNull    byte = 0
	AttributeBoolean byte = 1
	AttributeInteger byte = 2
	AttributeString  byte = 3
)
