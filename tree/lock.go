package tree

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultLockWarnLimit is the lock hold time after which a warning is logged
const DefaultLockWarnLimit = time.Second

// monitoredMutex warns on unlocking when the tree lock was held too long,
// for example by a slow storage sink during a save.
type monitoredMutex struct {
	mu       sync.Mutex
	lockTime time.Time

	limit time.Duration
	l     logrus.FieldLogger
}

func (m *monitoredMutex) Lock() {
	m.mu.Lock()
	m.lockTime = time.Now()
}

func (m *monitoredMutex) Unlock() {
	timeHeld := time.Since(m.lockTime)
	m.lockTime = time.Time{}
	limit := m.limit
	m.mu.Unlock()

	if limit <= 0 {
		limit = DefaultLockWarnLimit
	}
	if timeHeld <= limit {
		return
	}
	// No panic, because time jumps and paused processes may cause spikes.
	var caller string
	pc, fileName, fileLine, ok := runtime.Caller(1)
	if ok {
		if details := runtime.FuncForPC(pc); details != nil {
			caller = fmt.Sprintf("%s:%d (%s)", fileName, fileLine, details.Name())
		}
	}
	m.logger().WithFields(logrus.Fields{
		"lock_held": timeHeld,
		"limit":     limit,
		"caller":    caller,
	}).Warn("Tree lock held too long")
}

func (m *monitoredMutex) logger() logrus.FieldLogger {
	if m.l != nil {
		return m.l
	}
	return logrus.StandardLogger()
}
