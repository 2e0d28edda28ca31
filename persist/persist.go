// Package persist stores the markers of a tree in blob storage and restores
// them again.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/PowerDNS/simpleblob"
	"github.com/c2h5oh/datasize"
	"github.com/sirupsen/logrus"

	"github.com/PowerDNS/markerstream/config"
	"github.com/PowerDNS/markerstream/markers"
	"github.com/PowerDNS/markerstream/tree"
	"github.com/PowerDNS/markerstream/utils"
)

// Tracker receives the outcome of store attempts
type Tracker interface {
	AddSuccess()
	AddFailure()
}

// StartReporter receives the startup milestones
type StartReporter interface {
	SetPassedRestore()
	SetPassedSnapshot()
	SetPassedSave()
}

type nopTracker struct{}

func (nopTracker) AddSuccess()        {}
func (nopTracker) AddFailure()        {}
func (nopTracker) SetPassedRestore()  {}
func (nopTracker) SetPassedSnapshot() {}
func (nopTracker) SetPassedSave()     {}

// Manager writes saves and snapshots of a tree to storage
type Manager struct {
	tree   *tree.Tree
	writer *markers.Writer
	st     simpleblob.Interface
	c      config.Config
	l      logrus.FieldLogger
	prefix string
	now    func() time.Time

	// mu serializes the operations, so that stored blob timestamps follow
	// the order in which the tree state was captured.
	mu sync.Mutex

	saveHealth Tracker
	snapHealth Tracker
	start      StartReporter
}

// New creates a Manager for the instance named in the config
func New(t *tree.Tree, reg markers.Registry, st simpleblob.Interface, c config.Config, l logrus.FieldLogger) *Manager {
	l = l.WithField("instance", c.Instance)
	return &Manager{
		tree:       t,
		writer:     markers.NewWriter(reg, l),
		st:         st,
		c:          c,
		l:          l,
		prefix:     c.Instance + "__",
		now:        time.Now,
		saveHealth: nopTracker{},
		snapHealth: nopTracker{},
		start:      nopTracker{},
	}
}

// SetHealth attaches health trackers. Nil values are ignored.
func (m *Manager) SetHealth(save, snap Tracker, start StartReporter) {
	if save != nil {
		m.saveHealth = save
	}
	if snap != nil {
		m.snapHealth = snap
	}
	if start != nil {
		m.start = start
	}
}

// List returns the names of the parseable blobs of this instance, oldest
// first.
func (m *Manager) List(ctx context.Context) ([]markers.NameInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, m.c.StorageTimeout)
	defer cancel()
	ls, err := m.st.List(ctx, m.prefix)
	if err != nil {
		return nil, err
	}
	return parseNames(ls.Names(), m.c.Instance, m.l), nil
}

// store stores a blob, retrying on failure
func (m *Manager) store(ctx context.Context, kind markers.Kind, ts time.Time, data []byte) (string, error) {
	name := markers.Name(m.c.Instance, kind, ts)
	health := m.snapHealth
	if kind == markers.KindSave {
		health = m.saveHealth
	}
	l := m.l.WithField("blob", name)

	var err error
	for i := 0; i < m.c.Storage.RetryCount; i++ {
		if i > 0 {
			if err := utils.SleepContext(ctx, m.c.Storage.RetryInterval); err != nil {
				return "", err
			}
		}
		metricStoreCalls.WithLabelValues(string(kind)).Inc()
		err = m.storeOnce(ctx, name, data)
		if err != nil {
			l.WithError(err).Warn("Store failed, retrying")
			metricStoreFailed.WithLabelValues(string(kind)).Inc()
			health.AddFailure()
			continue
		}
		break
	}
	if err != nil {
		l.WithError(err).Warn("Store failed too many times, giving up")
		metricStoreFailedPermanently.WithLabelValues(string(kind)).Inc()
		return "", err
	}
	health.AddSuccess()
	metricStoreBytes.Add(float64(len(data)))
	metricLastTimestamp.WithLabelValues(string(kind)).Set(float64(ts.UnixNano()) / 1e9)
	metricLastSize.WithLabelValues(string(kind)).Set(float64(len(data)))
	l.WithField("size", datasize.ByteSize(len(data)).HumanReadable()).Debug("Store succeeded")
	return name, nil
}

func (m *Manager) storeOnce(ctx context.Context, name string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.c.StorageTimeout)
	defer cancel()
	return m.st.Store(ctx, name, data)
}

func (m *Manager) load(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.c.StorageTimeout)
	defer cancel()
	return m.st.Load(ctx, name)
}

func countStats(kind markers.Kind, st markers.Stats) {
	k := string(kind)
	metricStreamsGenerated.WithLabelValues(k).Inc()
	metricResourcesWritten.WithLabelValues(k).Add(float64(st.Resources))
	metricMarkersDropped.WithLabelValues(k).Add(float64(st.Dropped))
	metricNullFallbacks.WithLabelValues(k).Add(float64(st.NullFallbacks))
}
