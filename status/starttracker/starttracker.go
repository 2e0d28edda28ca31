// Package starttracker reports to healthz whether the startup phase has
// completed.
package starttracker

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wojas/go-healthz"
	"go.uber.org/atomic"

	"github.com/PowerDNS/markerstream/config"
)

// MinEvaluationInterval is the minimum interval allowed between healthz evaluation
const MinEvaluationInterval = time.Second

// StartTracker tracks the startup stages. Startup is complete once the tree
// was restored and both a snapshot and a save were stored.
// A nil *StartTracker ignores all calls.
type StartTracker struct {
	Config   config.StartupHealth
	interval time.Duration
	restored atomic.Bool
	snapshot atomic.Bool
	saved    atomic.Bool
	since    atomic.Time
	prefix   string
	logger   logrus.FieldLogger
	now      func() time.Time
}

func New(hc config.Health, prefix string) *StartTracker {
	interval := hc.EvaluationInterval
	if interval < MinEvaluationInterval {
		interval = MinEvaluationInterval
	}
	st := &StartTracker{
		Config:   hc.Startup,
		interval: interval,
		prefix:   prefix,
		logger:   logrus.WithField("starttracker", prefix),
		now:      time.Now,
	}
	st.since.Store(st.now())
	return st
}

func (st *StartTracker) name() string {
	return fmt.Sprintf("%s_startup_in_progress", st.prefix)
}

// Register registers the startup check with healthz. The check deregisters
// itself once startup has completed.
func (st *StartTracker) Register() {
	if st.Config.ReportMetadata {
		healthz.SetMeta("startupCompleted", false)
	}
	healthz.Register(st.name(), st.interval, func() error {
		done, err := st.check()
		if done {
			if st.Config.ReportMetadata {
				healthz.SetMeta("startupCompleted", true)
			}
			st.logger.Info("Startup phase completed successfully")
			healthz.Deregister(st.name())
		}
		return err
	})
	st.logger.Info("Registered tracker for startup phase")
}

func (st *StartTracker) check() (done bool, err error) {
	if st.Completed() {
		return true, nil
	}
	if !st.Config.ReportHealthz {
		return false, nil
	}
	pending := st.now().Sub(st.since.Load()).Round(time.Second)
	if pending >= st.Config.ErrorDuration {
		return false, fmt.Errorf("successful startup pending after %s", pending)
	}
	if pending >= st.Config.WarnDuration {
		return false, healthz.Warnf("successful startup pending after %s", pending)
	}
	return false, nil
}

// Completed reports if all startup stages have passed
func (st *StartTracker) Completed() bool {
	if st == nil {
		return true
	}
	return st.restored.Load() && st.snapshot.Load() && st.saved.Load()
}

func (st *StartTracker) SetPassedRestore() {
	if st == nil {
		return
	}
	st.restored.Store(true)
	st.logger.Debug("Tracked successful restore")
}

func (st *StartTracker) SetPassedSnapshot() {
	if st == nil {
		return
	}
	st.snapshot.Store(true)
	st.logger.Debug("Tracked successful initial snapshot store")
}

func (st *StartTracker) SetPassedSave() {
	if st == nil {
		return
	}
	st.saved.Store(true)
	st.logger.Debug("Tracked successful initial save store")
}
