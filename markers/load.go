package markers

import (
	"github.com/pkg/errors"
)

// LoadSave decodes a save stream. Empty data is a valid save without any
// persistent markers. Resources that do not appear have no persistent
// markers.
func LoadSave(data []byte) ([]Block, error) {
	d := NewDecoder(data)
	if !d.More() {
		return nil, nil
	}
	version, err := d.ReadInt32()
	if err != nil {
		return nil, errors.Wrap(err, "save version")
	}
	if version != SaveFormatVersion {
		return nil, &VersionError{Got: version, Want: SaveFormatVersion}
	}

	var blocks []Block
	table := NewTypeTable()
	for d.More() {
		b, err := d.ReadBlock(table)
		if err != nil {
			return nil, errors.Wrapf(err, "save block %d", len(blocks))
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// LoadSnapshots decodes a snapshot stream, which consists of any number of
// independent units. Blocks are returned in stream order; a later block for
// the same path supersedes an earlier one.
func LoadSnapshots(data []byte) ([]Block, error) {
	d := NewDecoder(data)
	var blocks []Block
	for d.More() {
		offset := d.Offset()
		version, err := d.ReadInt32()
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot unit %d version", len(blocks))
		}
		if version != SnapFormatVersion {
			return nil, errors.Wrapf(&VersionError{Got: version, Want: SnapFormatVersion},
				"snapshot unit %d at offset %d", len(blocks), offset)
		}
		b, err := d.ReadBlock(NewTypeTable())
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot unit %d", len(blocks))
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
