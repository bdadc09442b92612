package shmsync

import (
	"context"
	"time"

	"golang.org/x/sys/unix"
)

// LivenessInterval is the polling interval of a Monitor.
const LivenessInterval = 100 * time.Millisecond

// ProcessExists probes whether a process with the given id exists. No
// signal is delivered. A process owned by another user counts as existing.
func ProcessExists(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

// Monitor watches another process and cancels a context when it exits.
// It is best effort: the process id may be reused before a poll sees the
// exit.
type Monitor struct {
	PID      int
	Interval time.Duration
	Exists   func(pid int) bool
}

// NewMonitor creates a monitor for pid polling at LivenessInterval.
func NewMonitor(pid int) *Monitor {
	return &Monitor{PID: pid, Interval: LivenessInterval, Exists: ProcessExists}
}

// Watch polls until the process is gone or ctx is done. When the process is
// gone it calls cancel with a *LivenessError and returns that error;
// otherwise it returns nil.
func (m *Monitor) Watch(ctx context.Context, cancel context.CancelCauseFunc) error {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		if !m.Exists(m.PID) {
			err := &LivenessError{PID: m.PID}
			cancel(err)
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
