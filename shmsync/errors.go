package shmsync

import (
	"fmt"
	"time"

	"github.com/stdin2shm/stdin2shm/modbusline"
)

// RangeError reports an instruction whose address lies beyond the extent of
// its register bank. Only that instruction is discarded.
type RangeError struct {
	Instruction modbusline.Instruction
	Extent      int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("address %d out of range for register type '%s' (%d registers)",
		e.Instruction.Address, e.Instruction.Bank, e.Extent)
}

// Is makes RangeError match modbusline.ErrRange.
func (e *RangeError) Is(target error) bool {
	return target == modbusline.ErrRange
}

// ContentionError reports that the handshake stayed unavailable until the
// contention ceiling was reached. The coordinating process is assumed to be
// unresponsive or gone.
type ContentionError struct {
	Handshake string
	Timeout   time.Duration
	Counter   int
}

// Error implements the error interface.
func (e *ContentionError) Error() string {
	return fmt.Sprintf("handshake '%s' repeatedly unavailable (timeout %s, contention %d)",
		e.Handshake, e.Timeout, e.Counter)
}

// LivenessError reports that the monitored process no longer exists.
type LivenessError struct {
	PID int
}

// Error implements the error interface.
func (e *LivenessError) Error() string {
	return fmt.Sprintf("monitored process %d no longer exists", e.PID)
}

// ResourceError reports a register bank or handshake object that could not
// be opened or is unusable.
type ResourceError struct {
	Name  string
	Cause error
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource '%s': %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ResourceError) Unwrap() error {
	return e.Cause
}
