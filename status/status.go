package status

import (
	"context"
	"sync"

	"github.com/PowerDNS/simpleblob"
	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"

	"github.com/PowerDNS/markerstream/tree"
)

type info struct {
	mu   sync.Mutex
	tree *tree.Tree
	st   simpleblob.Interface
}

// TreeInfo summarizes the tree shown on the status page
type TreeInfo struct {
	Resources int
	Markers   int
	Dirty     int
}

// BlobInfo is a stored blob shown on the status page
type BlobInfo struct {
	Name string
	Size datasize.ByteSize
}

var gi info

func (i *info) ListBlobs(ctx context.Context, prefix string) ([]BlobInfo, error) {
	i.mu.Lock()
	st := i.st
	i.mu.Unlock()
	if st == nil {
		return nil, errors.New("no storage registered with status page")
	}
	list, err := st.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	blobs := make([]BlobInfo, 0, len(list))
	for _, b := range list {
		blobs = append(blobs, BlobInfo{Name: b.Name, Size: datasize.ByteSize(b.Size)})
	}
	return blobs, nil
}

func (i *info) TreeInfo() (TreeInfo, bool) {
	i.mu.Lock()
	t := i.tree
	i.mu.Unlock()
	if t == nil {
		return TreeInfo{}, false
	}
	var ti TreeInfo
	ti.Resources, ti.Markers, ti.Dirty = t.Counts()
	return ti, true
}

// SetTree registers the tree with the status page
func SetTree(t *tree.Tree) {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	gi.tree = t
}

// SetStorage registers the storage with the status page
func SetStorage(st simpleblob.Interface) {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	gi.st = st
}
