package markers

import (
	"io"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Resource is a node of the resource tree that can carry markers
type Resource interface {
	FullPath() string
	// MarkerSet returns the current markers of the resource. The second
	// return value is false if the resource has no marker set at all.
	// The returned slice must not be modified during the write call.
	MarkerSet() ([]Marker, bool)
}

// SnapResource is a Resource that tracks whether its markers changed since
// the last snapshot.
type SnapResource interface {
	Resource
	IsSnapDirty() bool
	ClearSnapDirty()
}

// Writer drives save and snapshot writes for a given persistence registry
type Writer struct {
	registry Registry
	l        logrus.FieldLogger
}

// NewWriter creates a Writer. The logger may be nil.
func NewWriter(reg Registry, l logrus.FieldLogger) *Writer {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Writer{
		registry: reg,
		l:        l,
	}
}

// SaveSession writes one save stream. The version header is written before
// the first resource block, so a session without any persistent markers
// writes nothing at all.
type SaveSession struct {
	w             *Writer
	enc           *Encoder
	table         *TypeTable
	headerWritten bool
	stats         Stats
}

// NewSaveSession starts a save stream on out. All resources added to the
// session share table. If table is nil, a new one is used.
func (w *Writer) NewSaveSession(out io.Writer, table *TypeTable) *SaveSession {
	if table == nil {
		table = NewTypeTable()
	}
	return &SaveSession{
		w:     w,
		enc:   NewEncoder(out),
		table: table,
	}
}

// Add writes the persistent markers of r. Resources without a marker set or
// without persistent markers do not contribute any bytes.
func (s *SaveSession) Add(r Resource) error {
	markers, ok := r.MarkerSet()
	if !ok {
		return nil
	}
	p := Filter(markers, s.w.registry)
	s.stats.Dropped += p.Dropped()
	if p.Count == 0 {
		return nil
	}

	if !s.headerWritten {
		if err := s.enc.WriteInt32(SaveFormatVersion); err != nil {
			return errors.Wrap(err, "save version")
		}
		s.headerWritten = true
	}

	path := r.FullPath()
	if err := s.enc.WriteBlock(path, markers, p, s.table); err != nil {
		return err
	}
	s.stats.Resources++
	s.stats.Markers += p.Count
	s.w.l.WithFields(logrus.Fields{
		"path":    path,
		"markers": p.Count,
		"dropped": p.Dropped(),
	}).Debug("Saved resource markers")
	return nil
}

// Stats returns the statistics of everything written so far
func (s *SaveSession) Stats() Stats {
	st := s.stats
	st.NullFallbacks = s.enc.NumNullFallbacks
	st.InternedTypes = s.table.Len()
	st.Size = datasize.ByteSize(s.enc.Written())
	return st
}

// Save writes a complete save stream for resources to out
func (w *Writer) Save(out io.Writer, resources []Resource) (Stats, error) {
	s := w.NewSaveSession(out, nil)
	for _, r := range resources {
		if err := s.Add(r); err != nil {
			return s.Stats(), err
		}
	}
	return s.Stats(), nil
}

// Snap writes a self-contained snapshot unit for r if its markers are dirty.
// A resource without persistent markers is still written with a zero count,
// so that a reader can tell that its markers were removed.
// The dirty flag is only cleared after the unit was written successfully.
func (w *Writer) Snap(out io.Writer, r SnapResource) (Stats, error) {
	var st Stats
	if !r.IsSnapDirty() {
		return st, nil
	}
	markers, ok := r.MarkerSet()
	if !ok {
		return st, nil
	}
	p := Filter(markers, w.registry)
	st.Dropped = p.Dropped()

	enc := NewEncoder(out)
	table := NewTypeTable()
	path := r.FullPath()
	if err := enc.WriteInt32(SnapFormatVersion); err != nil {
		return st, errors.Wrap(err, "snapshot version")
	}
	if err := enc.WriteBlock(path, markers, p, table); err != nil {
		return st, err
	}
	r.ClearSnapDirty()

	st.Resources = 1
	st.Markers = p.Count
	st.NullFallbacks = enc.NumNullFallbacks
	st.InternedTypes = table.Len()
	st.Size = datasize.ByteSize(enc.Written())
	w.l.WithFields(logrus.Fields{
		"path":    path,
		"markers": p.Count,
		"dropped": p.Dropped(),
	}).Debug("Snapshotted resource markers")
	return st, nil
}
