//go:build !linux

package shmsync

import (
	"errors"
	"time"
)

var errSemaphoreUnsupported = errors.New("named semaphores are only supported on linux")

// NamedSemaphore is unavailable on this platform.
type NamedSemaphore struct{}

// OpenSemaphore always fails on this platform.
func OpenSemaphore(name string) (*NamedSemaphore, error) {
	return nil, &ResourceError{Name: name, Cause: errSemaphoreUnsupported}
}

// OpenSemaphoreFile always fails on this platform.
func OpenSemaphoreFile(path string) (*NamedSemaphore, error) {
	return nil, &ResourceError{Name: path, Cause: errSemaphoreUnsupported}
}

func (s *NamedSemaphore) Name() string { return "" }
func (s *NamedSemaphore) Value() int { return 0 }
func (s *NamedSemaphore) Wait(time.Duration) bool { return false }
func (s *NamedSemaphore) Post() {}
func (s *NamedSemaphore) Close() error { return nil }
