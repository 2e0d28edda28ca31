// Package healthtracker reports consecutive failures of a recurring activity,
// like storing snapshots, to healthz.
package healthtracker

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

// HealthTracker counts consecutive failures and how long they have lasted.
// A nil *HealthTracker ignores all calls.
type HealthTracker struct {
	Config   config.Health
	sequence atomic.Uint32
	since    atomic.Time
	prefix   string
	activity string
	logger   logrus.FieldLogger
	now      func() time.Time
}

// New creates a HealthTracker. Call Register to report it to healthz.
func New(hc config.Health, prefix string, activity string) *HealthTracker {
	if hc.EvaluationInterval < MinEvaluationInterval {
		hc.EvaluationInterval = MinEvaluationInterval
	}
	return &HealthTracker{
		Config:   hc,
		prefix:   prefix,
		activity: activity,
		logger:   logrus.WithField("healthtracker", prefix),
		now:      time.Now,
	}
}

// Register registers the sequence and duration checks with healthz
func (ht *HealthTracker) Register() {
	healthz.Register(fmt.Sprintf("%s_failed_attempts", ht.prefix),
		ht.Config.EvaluationInterval, ht.checkSequence)
	healthz.Register(fmt.Sprintf("%s_failed_duration", ht.prefix),
		ht.Config.EvaluationInterval, ht.checkDuration)
	ht.logger.Info("Registered failure trackers")
}

func (ht *HealthTracker) checkSequence() error {
	fails := ht.sequence.Load()
	if fails >= ht.Config.ErrorSequence {
		ht.logger.Warnf("%d consecutive failures is violating the error threshold (%d)",
			fails, ht.Config.ErrorSequence)
		return fmt.Errorf("failed to %s %d consecutive times", ht.activity, fails)
	}
	if fails >= ht.Config.WarnSequence {
		ht.logger.Warnf("%d consecutive failures is violating the warning threshold (%d)",
			fails, ht.Config.WarnSequence)
		return healthz.Warnf("failed to %s %d consecutive times", ht.activity, fails)
	}
	return nil
}

func (ht *HealthTracker) checkDuration() error {
	if ht.sequence.Load() == 0 {
		return nil
	}
	failingFor := ht.now().Sub(ht.since.Load()).Round(time.Second)
	if failingFor >= ht.Config.ErrorDuration {
		ht.logger.Warnf("failure for %s is violating the error threshold (%s)",
			failingFor, ht.Config.ErrorDuration)
		return fmt.Errorf("failed to %s for %s", ht.activity, failingFor)
	}
	if failingFor >= ht.Config.WarnDuration {
		ht.logger.Warnf("failure for %s is violating the warning threshold (%s)",
			failingFor, ht.Config.WarnDuration)
		return healthz.Warnf("failed to %s for %s", ht.activity, failingFor)
	}
	return nil
}

// Failures returns the number of consecutive failures
func (ht *HealthTracker) Failures() uint32 {
	if ht == nil {
		return 0
	}
	return ht.sequence.Load()
}

func (ht *HealthTracker) AddFailure() {
	if ht == nil {
		return
	}
	if ht.sequence.Load() == 0 {
		ht.since.Store(ht.now())
	}
	n := ht.sequence.Inc()
	ht.logger.Debugf("Incremented consecutive failures to %d", n)
}

func (ht *HealthTracker) AddSuccess() {
	if ht == nil {
		return
	}
	ht.sequence.Store(0)
	ht.logger.Debug("Tracked successful attempt")
}
