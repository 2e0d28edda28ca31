package persist

import (
	"context"

	"github.com/PowerDNS/markerstream/utils"
)

// Run takes a save right away and then keeps storing snapshots and saves on
// their intervals until ctx is closed. Old blobs are cleaned after each save.
// On shutdown a final snapshot and save are stored. Failures are logged and
// retried on the next interval.
func (m *Manager) Run(ctx context.Context) error {
	m.saveAndClean(ctx)
	lastSave := m.now()

	for {
		if err := utils.SleepContextPerturb(ctx, m.c.SnapshotInterval); err != nil {
			break
		}
		if _, err := m.Snapshot(ctx); err != nil {
			m.l.WithError(err).Error("Snapshot failed")
		}
		if m.now().Sub(lastSave) >= m.c.SaveInterval {
			m.saveAndClean(ctx)
			lastSave = m.now()
		}
	}

	m.l.Info("Storing final snapshot and save")
	ctx, cancel := context.WithTimeout(context.Background(), 2*m.c.StorageTimeout)
	defer cancel()
	if _, err := m.Snapshot(ctx); err != nil {
		m.l.WithError(err).Error("Final snapshot failed")
	}
	if _, err := m.Save(ctx); err != nil {
		m.l.WithError(err).Error("Final save failed")
		return err
	}
	return context.Canceled
}

func (m *Manager) saveAndClean(ctx context.Context) {
	if _, err := m.Save(ctx); err != nil {
		m.l.WithError(err).Error("Save failed")
		return
	}
	if _, err := m.Clean(ctx); err != nil {
		m.l.WithError(err).Warn("Clean failed")
	}
}
