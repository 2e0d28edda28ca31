package tree

import (
	"github.com/PowerDNS/markerstream/markers"
)

// Resource is a file or folder in the tree. Its methods implement
// markers.SnapResource and must only be called while holding the tree lock,
// which is the case inside Tree.Do.
type Resource struct {
	path       string
	markers    []markers.Marker
	hasMarkers bool // false means no marker set at all
	snapDirty  bool
	deleted    bool // removed, kept until its removal was snapshotted
}

func (r *Resource) FullPath() string {
	return r.path
}

func (r *Resource) MarkerSet() ([]markers.Marker, bool) {
	if !r.hasMarkers {
		return nil, false
	}
	return r.markers, true
}

func (r *Resource) IsSnapDirty() bool {
	return r.snapDirty
}

func (r *Resource) ClearSnapDirty() {
	r.snapDirty = false
}

// Deleted reports whether the resource was removed from the tree
func (r *Resource) Deleted() bool {
	return r.deleted
}

func (r *Resource) find(id int64) int {
	for i, m := range r.markers {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// setMarkers replaces the marker set. Every write to the marker set goes
// through here or touch, which set the dirty flag.
func (r *Resource) setMarkers(ms []markers.Marker) {
	r.markers = ms
	r.hasMarkers = true
	r.touch()
}

func (r *Resource) touch() {
	r.snapDirty = true
}

func cloneMarkers(ms []markers.Marker) []markers.Marker {
	if ms == nil {
		return nil
	}
	c := make([]markers.Marker, len(ms))
	for i, m := range ms {
		c[i] = m.Clone()
	}
	return c
}
