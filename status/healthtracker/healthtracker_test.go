package healthtracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PowerDNS/markerstream/config"
)

func testTracker() (*HealthTracker, *time.Time) {
	ht := New(config.Health{
		ErrorDuration: time.Minute,
		WarnDuration:  10 * time.Second,
		ErrorSequence: 3,
		WarnSequence:  1,
	}, "test", "store snapshot")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ht.now = func() time.Time { return now }
	return ht, &now
}

func TestHealthTracker_sequence(t *testing.T) {
	ht, _ := testTracker()
	assert.Equal(t, MinEvaluationInterval, ht.Config.EvaluationInterval)
	assert.NoError(t, ht.checkSequence())

	ht.AddFailure()
	err := ht.checkSequence()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to store snapshot 1 consecutive times")
	}

	ht.AddFailure()
	ht.AddFailure()
	err = ht.checkSequence()
	assert.EqualError(t, err, "failed to store snapshot 3 consecutive times")
	assert.EqualValues(t, 3, ht.Failures())

	ht.AddSuccess()
	assert.NoError(t, ht.checkSequence())
	assert.EqualValues(t, 0, ht.Failures())
}

func TestHealthTracker_duration(t *testing.T) {
	ht, now := testTracker()
	assert.NoError(t, ht.checkDuration())

	ht.AddFailure()
	assert.NoError(t, ht.checkDuration())

	*now = now.Add(15 * time.Second)
	ht.AddFailure() // does not reset the start of the failure
	err := ht.checkDuration()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to store snapshot for 15s")
	}

	*now = now.Add(time.Minute)
	err = ht.checkDuration()
	assert.EqualError(t, err, "failed to store snapshot for 1m15s")

	ht.AddSuccess()
	assert.NoError(t, ht.checkDuration())
}

func TestHealthTracker_nil(t *testing.T) {
	var ht *HealthTracker
	ht.AddFailure()
	ht.AddSuccess()
	assert.EqualValues(t, 0, ht.Failures())
}
