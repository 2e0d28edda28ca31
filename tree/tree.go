// Package tree implements an in-memory resource tree holding markers.
//
// Every change to the markers of a resource sets its snapshot dirty flag.
// The flags are cleared by markers.Writer.Snap once the resource has been
// written to a snapshot.
package tree

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/PowerDNS/markerstream/markers"
)

// Tree holds resources by their full path
type Tree struct {
	mu        monitoredMutex
	resources map[string]*Resource
	lastID    atomic.Int64
}

// New returns an empty tree
func New(l logrus.FieldLogger) *Tree {
	return &Tree{
		mu:        monitoredMutex{l: l},
		resources: make(map[string]*Resource),
	}
}

// SetLockWarnLimit sets the lock hold time after which a warning is logged
func (t *Tree) SetLockWarnLimit(d time.Duration) {
	t.mu.Lock()
	t.mu.limit = d
	t.mu.Unlock()
}

// CleanPath normalises a resource path to start with a single '/' and to
// not end with one.
func CleanPath(p string) string {
	p = "/" + strings.Trim(p, "/")
	return p
}

func (t *Tree) nextID() int64 {
	return t.lastID.Inc()
}

// reserveID makes sure future ids are larger than id
func (t *Tree) reserveID(id int64) {
	for {
		last := t.lastID.Load()
		if id <= last || t.lastID.CompareAndSwap(last, id) {
			return
		}
	}
}

// get returns the live resource, creating it if needed
func (t *Tree) get(path string, create bool) *Resource {
	path = CleanPath(path)
	r, exists := t.resources[path]
	if exists && !r.deleted {
		return r
	}
	if !create {
		return nil
	}
	if exists {
		// Revived before its deletion was snapshotted
		r.deleted = false
		r.markers = nil
		r.hasMarkers = false
		return r
	}
	r = &Resource{path: path}
	t.resources[path] = r
	return r
}

// AddMarker creates a marker on the resource at path and returns its id.
// The resource is created if it does not exist.
func (t *Tree) AddMarker(path, typeName string, attrs markers.Attributes) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.get(path, true)
	m := markers.Marker{
		ID:         t.nextID(),
		Type:       typeName,
		Attributes: attrs.Clone(),
	}
	ms := append(cloneMarkers(r.markers), m)
	r.setMarkers(ms)
	return m.ID
}

// SetAttribute sets one attribute of an existing marker
func (t *Tree) SetAttribute(path string, id int64, key string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.get(path, false)
	if r == nil {
		return fmt.Errorf("resource %s does not exist", path)
	}
	i := r.find(id)
	if i < 0 {
		return fmt.Errorf("marker %d not found on %s", id, r.path)
	}
	ms := cloneMarkers(r.markers)
	ms[i].Attributes = ms[i].Attributes.Set(key, value)
	r.setMarkers(ms)
	return nil
}

// RemoveMarker removes a marker and reports if it existed
func (t *Tree) RemoveMarker(path string, id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.get(path, false)
	if r == nil {
		return false
	}
	i := r.find(id)
	if i < 0 {
		return false
	}
	ms := cloneMarkers(r.markers)
	r.setMarkers(append(ms[:i], ms[i+1:]...))
	return true
}

// ClearMarkers removes all markers of a resource, leaving an empty set
func (t *Tree) ClearMarkers(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r := t.get(path, false); r != nil {
		r.setMarkers([]markers.Marker{})
	}
}

// SetMarkers replaces the marker set of a resource, creating it if needed.
// Markers with a zero id get a new one. The dirty flag is only set when the
// set actually changed.
func (t *Tree) SetMarkers(path string, ms []markers.Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.get(path, true)
	ms = cloneMarkers(ms)
	if ms == nil {
		ms = []markers.Marker{}
	}
	for i := range ms {
		if ms[i].ID == 0 {
			ms[i].ID = t.nextID()
		} else {
			t.reserveID(ms[i].ID)
		}
	}
	if r.hasMarkers && equalMarkers(r.markers, ms) {
		return
	}
	r.setMarkers(ms)
}

// Delete removes a resource and its markers. The resource stays known until
// its removal was captured by a snapshot and Prune is called.
func (t *Tree) Delete(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.get(path, false)
	if r == nil {
		return false
	}
	r.setMarkers([]markers.Marker{})
	r.deleted = true
	return true
}

// Prune forgets deleted resources whose removal was snapshotted
func (t *Tree) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for path, r := range t.resources {
		if r.deleted && !r.snapDirty {
			delete(t.resources, path)
			n++
		}
	}
	return n
}

// Markers returns a copy of the markers of a resource. The second return
// value is false if the resource does not exist or has no marker set.
func (t *Tree) Markers(path string) ([]markers.Marker, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.get(path, false)
	if r == nil || !r.hasMarkers {
		return nil, false
	}
	return cloneMarkers(r.markers), true
}

// Paths returns the paths of all live resources, sorted
func (t *Tree) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	paths := lo.Keys(lo.PickBy(t.resources, func(_ string, r *Resource) bool {
		return !r.deleted
	}))
	sort.Strings(paths)
	return paths
}

// MarkSnapDirty sets the dirty flag of the given resources again, for
// example when storing the snapshot that cleared them failed.
func (t *Tree) MarkSnapDirty(paths ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range paths {
		if r, exists := t.resources[CleanPath(p)]; exists {
			r.touch()
		}
	}
}

// Counts returns the number of live resources, markers and dirty resources
func (t *Tree) Counts() (resources, markerCount, dirty int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.resources {
		if r.snapDirty {
			dirty++
		}
		if r.deleted {
			continue
		}
		resources++
		markerCount += len(r.markers)
	}
	return resources, markerCount, dirty
}

// Do calls fn with all resources, including deleted ones that still need to
// be snapshotted, sorted by path. The tree lock is held during the call, so
// fn sees a consistent state and may call the Resource methods.
func (t *Tree) Do(fn func(resources []*Resource) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rs := lo.Values(t.resources)
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].path < rs[j].path
	})
	return fn(rs)
}

// Apply replaces the marker sets of the resources in blocks with their
// contents. Applied resources are not marked dirty, since their state was
// read from storage. Blocks are applied in order.
func (t *Tree) Apply(blocks []markers.Block) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range blocks {
		r := t.get(b.Path, true)
		ms := cloneMarkers(b.Markers)
		if ms == nil {
			ms = []markers.Marker{}
		}
		for _, m := range ms {
			t.reserveID(m.ID)
		}
		r.markers = ms
		r.hasMarkers = true
		r.snapDirty = false
	}
}

// Reset removes all resources
func (t *Tree) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resources = make(map[string]*Resource)
}

func equalMarkers(a, b []markers.Marker) bool {
	return reflect.DeepEqual(a, b)
}
