// =============================================================================
// resources.go - Shared Memory and Semaphore Setup
// =============================================================================
//
// Opens the register banks published by the Modbus server and, if
// configured, the named semaphore used as cross-process handshake.
//
// stdin2shm is often started together with the server, so the shared memory
// objects may not exist yet. With --wait the objects are polled for until
// they appear or the wait expires. Without it a missing object is an error
// right away.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/stdin2shm/stdin2shm/modbusline"
	"github.com/stdin2shm/stdin2shm/shmsync"
)

// objectPollInterval is how often to look for the shared memory objects
// while waiting for them.
const objectPollInterval = 100 * time.Millisecond

// resources holds the opened register banks and semaphore.
type resources struct {
	memory    *shmsync.SharedMemory
	semaphore *shmsync.NamedSemaphore
}

// openResources maps the register banks and opens the semaphore. The
// returned error is a *shmsync.ResourceError.
func openResources(args arguments) (*resources, error) {
	if args.wait > 0 {
		if err := waitForObjects(shmsync.ShmDir, args.namePrefix, args.wait); err != nil {
			return nil, err
		}
	}

	memory, err := shmsync.OpenSharedMemory(args.namePrefix)
	if err != nil {
		return nil, err
	}

	res := &resources{memory: memory}
	if args.semaphore != "" {
		res.semaphore, err = shmsync.OpenSemaphore(args.semaphore)
		if err != nil {
			memory.Close()
			return nil, err
		}
	}
	return res, nil
}

// handshake returns the semaphore as a Handshake, or nil without one.
//
// GO CONCEPT: Typed nil in Interfaces
// -----------------------------------
// An interface holding a nil *NamedSemaphore is not itself nil: it still
// carries the type. Returning r.semaphore directly would make the applier
// believe a handshake is configured, so the nil case is spelled out.
//
// Compare with Swift: an Optional<NamedSemaphore> converted to a protocol
// existential stays nil; Go has no such conversion rule.
//
// Compare with Python: None is a single value, so the problem does not
// exist.
func (r *resources) handshake() shmsync.Handshake {
	if r.semaphore == nil {
		return nil
	}
	return r.semaphore
}

// describe prints the opened objects and their register counts.
func (r *resources) describe(w io.Writer) {
	for _, bank := range modbusline.Banks {
		printNotice(w, fmt.Sprintf("%s: %d registers (%s)", bank, r.memory.Len(bank), r.memory.Name(bank)))
	}
	if r.semaphore != nil {
		printNotice(w, fmt.Sprintf("semaphore: %s", r.semaphore.Name()))
	} else {
		printNotice(w, "semaphore: none, writes are not synchronized with other processes")
	}
}

// Close releases the semaphore and unmaps the register banks.
func (r *resources) Close() {
	if r.semaphore != nil {
		r.semaphore.Close()
	}
	r.memory.Close()
}

// GO CONCEPT: Deadlines with time.Time
// ------------------------------------
// A deadline is computed once with time.Now().Add and compared on every
// iteration, so the total wait does not grow with the time spent in
// os.Stat. time.Sleep blocks only the calling goroutine.
//
// Compare with Python: deadline = time.monotonic() + timeout; Go's
// time.Now carries a monotonic reading too.

// waitForObjects polls until all four register bank objects exist in dir,
// or fails once timeout has passed.
func waitForObjects(dir, prefix string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		missing := missingObject(dir, prefix)
		if missing == "" {
			return nil
		}
		if !time.Now().Before(deadline) {
			return &shmsync.ResourceError{
				Name:  missing,
				Cause: fmt.Errorf("timeout after %s waiting for shared memory", timeout),
			}
		}
		time.Sleep(objectPollInterval)
	}
}

// missingObject returns the name of the first register bank object that
// does not exist in dir, or "" if all do.
func missingObject(dir, prefix string) string {
	for _, bank := range modbusline.Banks {
		name := prefix + bank.Suffix()
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return name
		}
	}
	return ""
}
