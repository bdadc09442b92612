// Package shmsync applies register write instructions to Modbus register
// banks shared with other processes.
//
// An Applier writes one batch of instructions at a time under a local
// mutex and, optionally, a cross-process Handshake such as a NamedSemaphore.
// Handshake waits are bounded and retried; every timeout raises a
// contention counter and reaching the ceiling aborts with a
// *ContentionError.
//
// A Monitor polls another process and cancels a shared context when that
// process exits. The same context is cancelled by termination signals and
// checked by the input loop once per line.
//
//	banks, err := shmsync.OpenSharedMemory("modbus_")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer banks.Close()
//
//	applier := shmsync.NewApplier(banks, nil, 0)
//	report, err := applier.Apply(ctx, instructions)
package shmsync
