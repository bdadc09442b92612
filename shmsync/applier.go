package shmsync

import (
	"context"
	"sync"
	"time"

	"github.com/stdin2shm/stdin2shm/modbusline"
)

// Handshake is a cross-process counting semaphore guarding the register
// banks. *NamedSemaphore implements it.
type Handshake interface {
	// Wait acquires the handshake, blocking for at most timeout. It
	// reports whether the handshake was acquired.
	Wait(timeout time.Duration) bool
	// Post releases the handshake.
	Post()
}

// Contention counter parameters. Every timed out handshake wait adds
// ContentionStep, every successful acquisition removes one. A timeout
// observed with the counter at ContentionCeiling is fatal.
const (
	ContentionStep    = 10
	ContentionCeiling = 100
)

// DefaultHandshakeTimeout is the bounded wait of one acquisition attempt.
const DefaultHandshakeTimeout = 100 * time.Millisecond

// Report summarizes one applied batch.
type Report struct {
	// Written is the number of registers written.
	Written int
	// Discarded holds one error per instruction that was out of range.
	Discarded []*RangeError
}

// Applier writes instruction batches to register banks. A batch is applied
// while holding a process-local lock and, if configured, the cross-process
// handshake, so no other holder of either observes a partially written
// multi-register value.
type Applier struct {
	mu sync.Mutex

	banks     Banks
	handshake Handshake
	timeout   time.Duration

	contention int

	// Written, when set, is called for every register written while the
	// batch is still locked.
	Written func(inst modbusline.Instruction)
}

// NewApplier creates an applier. handshake may be nil, in which case only
// the local lock serializes writes; other processes writing to the same
// banks may then interleave with multi-register values.
func NewApplier(banks Banks, handshake Handshake, timeout time.Duration) *Applier {
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	return &Applier{banks: banks, handshake: handshake, timeout: timeout}
}

// Contention returns the current contention counter.
func (a *Applier) Contention() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.contention
}

// Apply writes the batch in order. Instructions beyond the extent of their
// bank are skipped and reported; the rest of the batch is still written,
// even if that splits a multi-register value.
//
// Apply fails with *ContentionError when the handshake cannot be acquired
// before the contention ceiling is hit, or with the cancellation cause of
// ctx when ctx is done between acquisition attempts. Nothing is written in
// either case.
func (a *Applier) Apply(ctx context.Context, batch []modbusline.Instruction) (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handshake != nil {
		if err := a.acquire(ctx); err != nil {
			return Report{}, err
		}
		defer a.handshake.Post()
	}

	var report Report
	for _, inst := range batch {
		extent := a.banks.Len(inst.Bank)
		if inst.Address >= uint64(extent) {
			report.Discarded = append(report.Discarded, &RangeError{Instruction: inst, Extent: extent})
			continue
		}

		word := inst.Word
		if inst.Bank.IsDiscrete() && word != 0 {
			word = 1
		}
		a.banks.Write(inst.Bank, int(inst.Address), word)
		report.Written++

		if a.Written != nil {
			a.Written(modbusline.NewInstruction(inst.Bank, inst.Address, word))
		}
	}
	return report, nil
}

// acquire waits for the handshake, retrying on timeout. a.mu must be held.
func (a *Applier) acquire(ctx context.Context) error {
	for {
		if a.handshake.Wait(a.timeout) {
			if a.contention > 0 {
				a.contention--
			}
			return nil
		}

		if a.contention >= ContentionCeiling {
			return &ContentionError{Handshake: handshakeName(a.handshake), Timeout: a.timeout, Counter: a.contention}
		}
		a.contention += ContentionStep
		if a.contention > ContentionCeiling {
			a.contention = ContentionCeiling
		}

		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
	}
}

// Drain blocks until no batch is being applied. It is used at shutdown to
// make sure the process does not exit in the middle of a batch.
func (a *Applier) Drain() {
	a.mu.Lock()
	a.mu.Unlock()
}

func handshakeName(h Handshake) string {
	if named, ok := h.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "handshake"
}
