package tree

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/PowerDNS/markerstream/markers"
)

// File is the YAML representation of a tree, used for initial trees and for
// dumping decoded streams.
type File struct {
	Resources []FileResource `yaml:"resources"`
}

type FileResource struct {
	Path    string       `yaml:"path"`
	Markers []FileMarker `yaml:"markers"`
}

type FileMarker struct {
	ID         int64         `yaml:"id,omitempty"`
	Type       string        `yaml:"type"`
	Attributes yaml.MapSlice `yaml:"attributes,omitempty"` // keeps the order
}

// ParseFile parses a YAML tree file
func ParseFile(contents []byte) (File, error) {
	var f File
	if err := yaml.UnmarshalStrict(contents, &f); err != nil {
		return f, err
	}
	return f, nil
}

// LoadFile reads and parses a YAML tree file
func LoadFile(fpath string) (File, error) {
	contents, err := ioutil.ReadFile(fpath)
	if err != nil {
		return File{}, errors.Wrap(err, "open tree file")
	}
	f, err := ParseFile(contents)
	if err != nil {
		return f, errors.Wrapf(err, "parse tree file %s", fpath)
	}
	return f, nil
}

// Marshal returns the file as YAML
func (f File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Blocks converts the file to marker blocks. Markers without an id get one
// after the largest explicit id, in file order, so that loading the same
// file twice yields the same ids.
func (f File) Blocks() ([]markers.Block, error) {
	var maxID int64
	for _, fr := range f.Resources {
		for _, fm := range fr.Markers {
			if fm.ID > maxID {
				maxID = fm.ID
			}
		}
	}

	seen := make(map[string]bool)
	blocks := make([]markers.Block, 0, len(f.Resources))
	for i, fr := range f.Resources {
		if fr.Path == "" {
			return nil, fmt.Errorf("resources[%d]: no path", i)
		}
		path := CleanPath(fr.Path)
		if seen[path] {
			return nil, fmt.Errorf("resources[%d]: duplicate path %s", i, path)
		}
		seen[path] = true

		b := markers.Block{Path: path}
		for j, fm := range fr.Markers {
			if fm.Type == "" {
				return nil, fmt.Errorf("%s: markers[%d]: no type", path, j)
			}
			m := markers.Marker{ID: fm.ID, Type: fm.Type}
			if m.ID == 0 {
				maxID++
				m.ID = maxID
			}
			for _, item := range fm.Attributes {
				key, ok := item.Key.(string)
				if !ok {
					return nil, fmt.Errorf("%s: marker %d: attribute key %v is not a string", path, m.ID, item.Key)
				}
				if _, exists := m.Attributes.Get(key); exists {
					return nil, fmt.Errorf("%s: marker %d: duplicate attribute %q", path, m.ID, key)
				}
				m.Attributes = append(m.Attributes, markers.Attribute{Key: key, Value: markers.NormalizeValue(item.Value)})
			}
			b.Markers = append(b.Markers, m)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// FileFromBlocks converts decoded blocks to the YAML representation
func FileFromBlocks(blocks []markers.Block) File {
	f := File{
		Resources: make([]FileResource, 0, len(blocks)),
	}
	for _, b := range blocks {
		fr := FileResource{
			Path:    b.Path,
			Markers: make([]FileMarker, 0, len(b.Markers)),
		}
		for _, m := range b.Markers {
			fm := FileMarker{ID: m.ID, Type: m.Type}
			for _, attr := range m.Attributes {
				fm.Attributes = append(fm.Attributes, yaml.MapItem{Key: attr.Key, Value: attr.Value})
			}
			fr.Markers = append(fr.Markers, fm)
		}
		f.Resources = append(f.Resources, fr)
	}
	return f
}

// Sync makes the tree match the file. Resources that are not in the file are
// deleted, the others are only marked dirty when their markers changed.
func (t *Tree) Sync(f File) error {
	blocks, err := f.Blocks()
	if err != nil {
		return err
	}
	inFile := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		inFile[b.Path] = true
		t.SetMarkers(b.Path, b.Markers)
	}
	for _, p := range t.Paths() {
		if !inFile[p] {
			t.Delete(p)
		}
	}
	return nil
}

// Export returns the live resources that have a marker set
func (t *Tree) Export() File {
	var blocks []markers.Block
	_ = t.Do(func(resources []*Resource) error {
		for _, r := range resources {
			ms, ok := r.MarkerSet()
			if r.deleted || !ok {
				continue
			}
			blocks = append(blocks, markers.Block{Path: r.path, Markers: cloneMarkers(ms)})
		}
		return nil
	})
	return FileFromBlocks(blocks)
}
