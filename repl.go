// =============================================================================
// repl.go - Read/Apply Loop
// =============================================================================
//
// The input flow: read a line, parse it into register writes, apply them as
// one batch, report what was discarded. Per-line problems are never fatal;
// the line is reported on stderr and the loop moves on. The loop ends at
// end of input, on "exit" in interactive mode, when the shared context is
// cancelled, or when the applier gives up on the semaphore.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stdin2shm/stdin2shm/modbusline"
	"github.com/stdin2shm/stdin2shm/shmsync"
)

// prompt is shown before every interactive line.
const prompt = "stdin2shm> "

// GO CONCEPT: Implicit Interfaces
// -------------------------------
// *LineEditor never declares that it implements lineSource; having the
// two methods is enough. Tests pass their own scripted source the same
// way. Small interfaces are defined by the consumer, here the loop.
//
// Compare with Swift: protocols need an explicit conformance
// (extension LineEditor: LineSource {}).
//
// Compare with Python: typing.Protocol gives the same structural typing,
// checked by the type checker only.

// lineSource yields input lines. *LineEditor implements it.
type lineSource interface {
	GetLine(prompt string) (string, error)
	IsInteractive() bool
}

// session ties the parser and applier to the output streams.
type session struct {
	parser  *modbusline.CommandParser
	applier *shmsync.Applier

	// out receives passthrough lines, diag everything else.
	out  io.Writer
	diag io.Writer

	passthrough bool
}

// newSession builds the parser and applier for the opened resources.
func newSession(args arguments, res *resources, stdout, stderr io.Writer) *session {
	return newSessionWithBanks(args, res.memory, res.handshake(), stdout, stderr)
}

// newSessionWithBanks is newSession for arbitrary register banks.
func newSessionWithBanks(args arguments, banks shmsync.Banks, hs shmsync.Handshake, stdout, stderr io.Writer) *session {
	s := &session{
		parser:      modbusline.NewCommandParser(args.addressBase, args.valueBase),
		applier:     shmsync.NewApplier(banks, hs, args.semaphoreTimeout),
		out:         stdout,
		diag:        stderr,
		passthrough: args.passthrough,
	}
	if args.verbose {
		s.parser.Trace = stderr
		s.applier.Written = func(inst modbusline.Instruction) {
			printWritten(stderr, inst)
		}
	}
	return s
}

// GO CONCEPT: Sentinel Errors
// ---------------------------
// A package-level error value compared by identity. errExit never leaves
// this file: run translates it into a clean nil return.
//
// Compare with Python: raising a private exception class to unwind a
// loop and catching it right outside.

// errExit ends the loop on the interactive "exit" command.
var errExit = errors.New("exit")

// run processes lines from src until the loop ends. It returns nil on end
// of input or "exit", the cancellation cause if ctx is done, and otherwise
// the error that stopped the loop.
func (s *session) run(ctx context.Context, src lineSource) error {
	for {
		// Cancellation is checked once per line.
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		line, err := nextLine(ctx, src)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		err = s.handle(ctx, line, src.IsInteractive())
		if err == errExit {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// GO CONCEPT: Select on a Blocking Read
// -------------------------------------
// A read from stdin cannot be interrupted by a context. The read runs in
// its own goroutine and the loop waits for whichever comes first, the line
// or cancellation. After cancellation the goroutine stays blocked in the
// read until the process exits; the buffered channel lets it finish
// without a receiver.
//
// Compare with Swift: withTaskCancellationHandler around a blocking read
// has the same problem; the read itself keeps running.
//
// Compare with Python: asyncio.wait({read_task, cancel_event},
// return_when=FIRST_COMPLETED).

// nextLine reads one line from src, giving up when ctx is done.
func nextLine(ctx context.Context, src lineSource) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := src.GetLine(prompt)
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", context.Cause(ctx)
	case r := <-ch:
		return r.line, r.err
	}
}

// GO CONCEPT: Writers as Dependencies
// -----------------------------------
// session writes to io.Writer fields instead of os.Stdout and os.Stderr.
// run passes the real streams, tests pass bytes.Buffer values and read
// back what was printed.
//
// Compare with Python: passing file=sys.stderr to print, or
// contextlib.redirect_stdout in tests.

// handle processes a single line. Only fatal errors are returned.
func (s *session) handle(ctx context.Context, line string, interactive bool) error {
	trimmed := strings.TrimSpace(line)

	if interactive {
		switch strings.ToLower(trimmed) {
		case "exit", "quit":
			return errExit
		case "help":
			printLineHelp(s.diag)
			return nil
		}
	}

	if trimmed != "" {
		if err := s.apply(ctx, line); err != nil {
			return err
		}
	}

	if s.passthrough {
		fmt.Fprintln(s.out, line)
	}
	return nil
}

// apply parses line and writes the result.
func (s *session) apply(ctx context.Context, line string) error {
	batch, err := s.parser.Parse(line)
	if err != nil {
		printDiscard(s.diag, line, err)
		return nil
	}

	report, err := s.applier.Apply(ctx, batch)
	if err != nil {
		return err
	}
	for _, discarded := range report.Discarded {
		printDiscard(s.diag, line, discarded)
	}
	return nil
}
