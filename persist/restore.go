package persist

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/PowerDNS/markerstream/markers"
	"github.com/PowerDNS/markerstream/utils"
)

// RestoreResult describes what a restore loaded
type RestoreResult struct {
	Save      string   // name of the save used, empty if none
	Snapshots []string // names of the snapshots replayed, oldest first
	Blocks    int
}

// Restore replaces the contents of the tree with the newest save of this
// instance and replays all snapshots stored after it.
// If the newest save cannot be read, the next older one is tried. Snapshots
// that cannot be read are skipped with an error log.
func (m *Manager) Restore(ctx context.Context) (RestoreResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res RestoreResult
	t0 := time.Now()
	infos, err := m.List(ctx)
	if err != nil {
		return res, errors.Wrap(err, "list blobs")
	}
	saves := lo.Filter(infos, func(ni markers.NameInfo, _ int) bool {
		return ni.Kind == markers.KindSave
	})

	var blocks []markers.Block
	var since time.Time
	for i := len(saves) - 1; i >= 0; i-- {
		ni := saves[i]
		bs, err := m.loadBlocks(ctx, ni)
		if err != nil {
			if utils.IsCanceled(ctx) {
				return res, err
			}
			m.l.WithError(err).WithField("blob", ni.FullName).
				Error("Could not read save, trying an older one")
			continue
		}
		blocks = bs
		since = ni.Timestamp
		res.Save = ni.FullName
		break
	}
	if res.Save == "" && len(saves) > 0 {
		return res, errors.Errorf("none of the %d saves could be read", len(saves))
	}

	for _, ni := range infos {
		if ni.Kind != markers.KindSnap {
			continue
		}
		if res.Save != "" && !ni.Timestamp.After(since) {
			continue
		}
		bs, err := m.loadBlocks(ctx, ni)
		if err != nil {
			if utils.IsCanceled(ctx) {
				return res, err
			}
			m.l.WithError(err).WithField("blob", ni.FullName).
				Error("Could not read snapshot, skipping")
			continue
		}
		blocks = append(blocks, bs...)
		res.Snapshots = append(res.Snapshots, ni.FullName)
	}

	m.tree.Reset()
	m.tree.Apply(blocks)
	res.Blocks = len(blocks)
	metricBlocksRestored.Add(float64(len(blocks)))
	m.start.SetPassedRestore()

	m.l.WithField("save", res.Save).
		WithField("snapshots", len(res.Snapshots)).
		WithField("blocks", res.Blocks).
		WithField("time_total", utils.TimeDiff(time.Now(), t0)).
		Info("Restored markers")
	return res, nil
}

func (m *Manager) loadBlocks(ctx context.Context, ni markers.NameInfo) ([]markers.Block, error) {
	data, err := m.load(ctx, ni.FullName)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", ni.FullName)
	}
	if ni.Kind == markers.KindSave {
		return markers.LoadSave(data)
	}
	return markers.LoadSnapshots(data)
}
