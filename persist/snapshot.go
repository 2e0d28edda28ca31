package persist

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/PowerDNS/markerstream/markers"
	"github.com/PowerDNS/markerstream/tree"
	"github.com/PowerDNS/markerstream/utils"
)

// Snapshot stores one blob with a snapshot unit for every dirty resource.
// Nothing is stored if no resource is dirty. If the store fails, the written
// resources are marked dirty again, so that the next snapshot includes them.
// Removed resources are forgotten once their removal was stored.
func (m *Manager) Snapshot(ctx context.Context) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t0 := time.Now()
	ts := m.now()

	var buf, unit bytes.Buffer
	var res Result
	var written []string
	err := m.tree.Do(func(resources []*tree.Resource) error {
		for _, r := range resources {
			unit.Reset()
			st, err := m.writer.Snap(&unit, r)
			if err != nil {
				// The unit is dropped and the resource stays dirty
				m.l.WithError(err).WithField("path", r.FullPath()).
					Error("Could not snapshot resource markers")
				metricSnapErrors.Inc()
				continue
			}
			if unit.Len() == 0 {
				continue
			}
			buf.Write(unit.Bytes())
			written = append(written, r.FullPath())
			res.Stats = res.Stats.Add(st)
		}
		return nil
	})
	if err != nil {
		m.tree.MarkSnapDirty(written...)
		return res, errors.Wrap(err, "snapshot resources")
	}
	if len(written) == 0 {
		m.start.SetPassedSnapshot()
		return res, nil
	}
	tDumped := time.Now()
	countStats(markers.KindSnap, res.Stats)

	name, err := m.store(ctx, markers.KindSnap, ts, buf.Bytes())
	if err != nil {
		m.tree.MarkSnapDirty(written...)
		return res, err
	}
	res.Name = name
	pruned := m.tree.Prune()
	m.start.SetPassedSnapshot()

	m.l.WithFields(res.Stats.Fields()).
		WithField("pruned", pruned).
		WithField("time_dump", utils.TimeDiff(tDumped, t0)).
		WithField("time_total", utils.TimeDiff(time.Now(), t0)).
		WithField("blob", res.Name).
		Info("Stored snapshot")
	return res, nil
}
