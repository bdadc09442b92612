package shmsync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	futexWait = 0
	futexWake = 1

	// semNWaitersShift is the position of the waiter count in the 64 bit
	// state word of a glibc semaphore. The low 32 bits hold the value.
	semNWaitersShift = 32

	// semMinSize is the part of sem_t that is accessed.
	semMinSize = 8

	// semPollSlice bounds a single futex sleep so that posts from processes
	// that do not wake waiters are still noticed.
	semPollSlice = 10 * time.Millisecond
)

// NamedSemaphore is a process-shared counting semaphore compatible with
// semaphores created by glibc's sem_open on 64 bit little endian Linux.
type NamedSemaphore struct {
	name  string
	mem   []byte
	state *uint64
	value *uint32
}

// OpenSemaphore opens an existing named semaphore. The leading slash of
// POSIX semaphore names is optional.
func OpenSemaphore(name string) (*NamedSemaphore, error) {
	path := filepath.Join(ShmDir, "sem."+strings.TrimPrefix(name, "/"))
	s, err := OpenSemaphoreFile(path)
	if err != nil {
		return nil, err
	}
	s.name = name
	return s, nil
}

// OpenSemaphoreFile opens the semaphore stored in the file at path. The
// returned error is a *ResourceError.
func OpenSemaphoreFile(path string) (*NamedSemaphore, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, &ResourceError{Name: path, Cause: errors.Wrap(err, "open semaphore")}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ResourceError{Name: path, Cause: errors.Wrap(err, "stat semaphore")}
	}
	size := int(info.Size())
	if size < semMinSize {
		return nil, &ResourceError{Name: path, Cause: fmt.Errorf("size %d is too small for a semaphore", size)}
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &ResourceError{Name: path, Cause: errors.Wrap(err, "map semaphore")}
	}

	return &NamedSemaphore{
		name:  path,
		mem:   mem,
		state: (*uint64)(unsafe.Pointer(&mem[0])),
		value: (*uint32)(unsafe.Pointer(&mem[0])),
	}, nil
}

// Name returns the semaphore name.
func (s *NamedSemaphore) Name() string {
	return s.name
}

// Value returns the current semaphore value.
func (s *NamedSemaphore) Value() int {
	return int(atomic.LoadUint32(s.value))
}

// Wait decrements the semaphore, blocking for at most timeout while it is
// zero. It reports whether the semaphore was acquired.
func (s *NamedSemaphore) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		state := atomic.LoadUint64(s.state)
		if uint32(state) > 0 {
			if atomic.CompareAndSwapUint64(s.state, state, state-1) {
				return true
			}
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if remaining > semPollSlice {
			remaining = semPollSlice
		}

		atomic.AddUint64(s.state, 1<<semNWaitersShift)
		s.futexWait(remaining)
		atomic.AddUint64(s.state, ^uint64(1<<semNWaitersShift-1))
	}
}

// Post increments the semaphore and wakes one waiter.
func (s *NamedSemaphore) Post() {
	state := atomic.AddUint64(s.state, 1)
	if state>>semNWaitersShift > 0 {
		s.futexWake()
	}
}

// Close unmaps the semaphore. The semaphore object itself is left in place.
func (s *NamedSemaphore) Close() error {
	if s.mem == nil {
		return nil
	}
	err := unix.Munmap(s.mem)
	s.mem, s.state, s.value = nil, nil, nil
	return errors.Wrap(err, "unmap semaphore")
}

func (s *NamedSemaphore) futexWait(d time.Duration) {
	ts := unix.NsecToTimespec(d.Nanoseconds())
	// EAGAIN (value changed), EINTR and ETIMEDOUT all lead back to the
	// acquisition loop.
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(s.value)), futexWait, 0,
		uintptr(unsafe.Pointer(&ts)), 0, 0)
}

func (s *NamedSemaphore) futexWake() {
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(s.value)), futexWake, 1, 0, 0, 0)
}
