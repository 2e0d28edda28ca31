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

// Result describes a stored blob
type Result struct {
	Name  string // empty if nothing was stored
	Stats markers.Stats
}

// Save stores a full save stream of all persistent markers in the tree.
// A save without any resources is stored too, so that it supersedes older
// saves on restore.
func (m *Manager) Save(ctx context.Context) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t0 := time.Now()
	ts := m.now()

	var buf bytes.Buffer
	var res Result
	err := m.tree.Do(func(resources []*tree.Resource) error {
		s := m.writer.NewSaveSession(&buf, nil)
		defer func() {
			res.Stats = s.Stats()
		}()
		for _, r := range resources {
			if err := s.Add(r); err != nil {
				return errors.Wrapf(err, "save %s", r.FullPath())
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	tDumped := time.Now()
	countStats(markers.KindSave, res.Stats)

	res.Name, err = m.store(ctx, markers.KindSave, ts, buf.Bytes())
	if err != nil {
		return res, err
	}
	m.start.SetPassedSave()

	m.l.WithFields(res.Stats.Fields()).
		WithField("time_dump", utils.TimeDiff(tDumped, t0)).
		WithField("time_total", utils.TimeDiff(time.Now(), t0)).
		WithField("blob", res.Name).
		Info("Stored save")
	return res, nil
}
