package persist

import (
	"context"

	"github.com/samber/lo"

	"github.com/PowerDNS/markerstream/markers"
)

// CleanResult lists the removed blobs
type CleanResult struct {
	Removed []string
	Failed  int
}

// Clean keeps the newest keep_saves saves of this instance and removes older
// saves, as well as all snapshots older than the oldest save kept.
// Nothing is removed if there is no save.
func (m *Manager) Clean(ctx context.Context) (CleanResult, error) {
	var res CleanResult
	infos, err := m.List(ctx)
	if err != nil {
		return res, err
	}
	saves := lo.Filter(infos, func(ni markers.NameInfo, _ int) bool {
		return ni.Kind == markers.KindSave
	})
	if len(saves) == 0 {
		return res, nil
	}
	oldestKept := saves[max(0, len(saves)-m.c.KeepSaves)]

	// infos is sorted from oldest to newest
	removable := lo.Filter(infos, func(ni markers.NameInfo, _ int) bool {
		return ni.Timestamp.Before(oldestKept.Timestamp)
	})
	for _, ni := range removable {
		l := m.l.WithField("blob", ni.FullName)
		l.Debug("Cleaning old blob")
		metricDeleteCalls.WithLabelValues(string(ni.Kind)).Inc()
		if err := m.delete(ctx, ni.FullName); err != nil {
			l.WithError(err).Warn("Could not delete old blob")
			metricDeleteFailed.Inc()
			res.Failed++
			continue
		}
		res.Removed = append(res.Removed, ni.FullName)
	}
	if len(res.Removed) > 0 || res.Failed > 0 {
		m.l.WithField("removed", len(res.Removed)).
			WithField("failed", res.Failed).
			Info("Cleaned old blobs")
	}
	return res, nil
}

func (m *Manager) delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, m.c.StorageTimeout)
	defer cancel()
	return m.st.Delete(ctx, name)
}
