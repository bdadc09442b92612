// =============================================================================
// main.go - stdin2shm Entry Point
// =============================================================================
//
// stdin2shm reads register write commands, one per line, and writes them to
// the shared memory register banks of a Modbus server process:
//
//	echo "ao:0:3.14:f32_abcd" | stdin2shm -n modbus_
//
// Two flows run concurrently. The input flow reads, parses and applies one
// line at a time (repl.go). The supervisory flow waits for SIGINT/SIGTERM
// and, with --pid, for the exit of a coordinating process. Both share one
// cancellable context; whichever ends first decides the exit code.
//
// Exit codes follow sysexits.h:
//
//	 0  end of input, "exit", or a termination signal
//	64  usage error
//	69  the process given with --pid is gone
//	70  the semaphore stayed unavailable (contention ceiling)
//	71  shared memory or semaphore could not be opened
//	74  reading the input failed
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/stdin2shm/stdin2shm/modbusline"
	"github.com/stdin2shm/stdin2shm/shmsync"
)

// GO CONCEPT: Constants
// ---------------------
// "const" declares compile-time constants, grouped in a parenthesized
// block. They are untyped until used, so exitUsage can be passed to
// os.Exit (an int) without a conversion.
//
// Compare with Swift: "let" also holds values computed at runtime; Go
// constants are limited to numbers, strings and booleans known at compile
// time.
//
// Compare with Python: there is no const keyword. UPPER_CASE names such as
// EX_USAGE = 64 are a convention, and os.EX_USAGE exists on Unix.
const (
	// version is the current release of stdin2shm.
	version = "1.4.0"

	// appName is the executable name used in usage and diagnostics.
	appName = "stdin2shm"
)

// Exit codes, see sysexits.h.
const (
	exitOK          = 0
	exitUsage       = 64
	exitUnavailable = 69
	exitSoftware    = 70
	exitOSErr       = 71
	exitIOErr       = 74
)

// fullTitle returns the application name with version.
func fullTitle() string {
	return fmt.Sprintf("%s v%s", appName, version)
}

// =============================================================================
// Command-Line Arguments
// =============================================================================

// GO CONCEPT: Zero Values as "Not Configured"
// -------------------------------------------
// An empty semaphore name means "no cross-process handshake" and a pid of 0
// means "no liveness monitor". The zero value of the struct is therefore a
// valid configuration apart from the name prefix and timeout, which
// defaultArguments fills in.
//
// Compare with Swift: a struct with default property values plays the same
// role, and optionals (String?) express "not configured" explicitly.
//
// Compare with Python: a @dataclass with field defaults, where None is
// typically used for "not configured".

// arguments holds the effective configuration: environment defaults
// (config.go) overridden by command-line flags.
type arguments struct {
	// namePrefix prefixes the shared memory objects DO, DI, AO and AI.
	namePrefix string

	// addressBase and valueBase are the radix of addresses and raw values.
	// 0 detects the base from the literal prefix.
	addressBase int
	valueBase   int

	// semaphore names the POSIX semaphore guarding the register banks.
	semaphore        string
	semaphoreTimeout time.Duration

	// wait is how long to wait for the shared memory objects to appear.
	wait time.Duration

	// pid is the process whose exit terminates stdin2shm.
	pid int

	// passthrough echoes every input line to stdout.
	passthrough bool

	// verbose traces decoded values and written registers to stderr.
	verbose bool

	listTypes   bool
	showHelp    bool
	showVersion bool
}

// defaultArguments returns the built-in defaults.
func defaultArguments() arguments {
	return arguments{
		namePrefix:       "modbus_",
		semaphoreTimeout: shmsync.DefaultHandshakeTimeout,
	}
}

// GO CONCEPT: Closures
// --------------------
// value and noValue below are function literals that capture the loop's
// variables (remaining, inline, hasInline). value advances remaining as a
// side effect, which the enclosing loop then sees. Passing value on to
// parseBase and parseDuration lets them consume the option argument
// without knowing whether it was inline or the next word.
//
// Compare with Swift: closures capture variables by reference in the same
// way: { () throws -> String in ... }.
//
// Compare with Python: nested functions capture too, but assigning to a
// captured variable needs "nonlocal remaining".

// parseArguments parses command-line arguments on top of args.
//
// There are only a dozen flags and no subcommands, so a hand-written parser
// is enough. Every option taking a value accepts both "--flag value" and
// "--flag=value".
func parseArguments(argv []string, args arguments) (arguments, error) {
	remaining := argv

	for len(remaining) > 0 {
		arg := remaining[0]
		remaining = remaining[1:]

		// GO CONCEPT: strings.Cut
		// -----------------------
		// strings.Cut(s, sep) returns the text before and after the first
		// sep and whether sep was found, replacing the older
		// strings.Index + slicing idiom.
		//
		// Compare with Python: arg.partition("=") returns the same three
		// pieces, with the separator instead of a bool.

		// Split "--flag=value" so both spellings share one code path.
		name, inline, hasInline := strings.Cut(arg, "=")
		if !strings.HasPrefix(name, "--") {
			name, hasInline = arg, false
		}

		// value consumes the option argument, inline or from the next word.
		value := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			if len(remaining) == 0 {
				return "", fmt.Errorf("%s requires an argument", name)
			}
			v := remaining[0]
			remaining = remaining[1:]
			return v, nil
		}

		// noValue rejects "--flag=value" for switches.
		noValue := func() error {
			if hasInline {
				return fmt.Errorf("option %s does not take an argument", name)
			}
			return nil
		}

		var err error
		switch name {
		case "-n", "--name-prefix":
			args.namePrefix, err = value()

		case "--address-base":
			args.addressBase, err = parseBase(name, value)

		case "--value-base":
			args.valueBase, err = parseBase(name, value)

		case "-s", "--semaphore":
			args.semaphore, err = value()

		case "--semaphore-timeout":
			args.semaphoreTimeout, err = parseDuration(name, value)

		case "--wait":
			args.wait, err = parseDuration(name, value)

		case "--pid":
			var v string
			if v, err = value(); err == nil {
				args.pid, err = strconv.Atoi(v)
				if err != nil {
					err = fmt.Errorf("%s: invalid process id '%s'", name, v)
				}
			}

		case "-p", "--passthrough":
			args.passthrough, err = true, noValue()

		case "-v", "--verbose":
			args.verbose, err = true, noValue()

		case "--list-types":
			args.listTypes, err = true, noValue()

		case "-h", "--help":
			args.showHelp, err = true, noValue()

		case "--version":
			args.showVersion, err = true, noValue()

		default:
			return args, fmt.Errorf("unknown argument: %s", arg)
		}

		if err != nil {
			return args, err
		}
	}

	return args, validateArguments(args)
}

// parseBase reads a radix option value.
func parseBase(name string, value func() (string, error)) (int, error) {
	v, err := value()
	if err != nil {
		return 0, err
	}
	base, err := strconv.Atoi(v)
	if err != nil || !modbusline.ValidBase(base) {
		return 0, fmt.Errorf("%s: '%s' is not a valid base (0 or 2..%d)", name, v, modbusline.MaxBase)
	}
	return base, nil
}

// parseDuration reads a duration option value such as "250ms".
func parseDuration(name string, value func() (string, error)) (time.Duration, error) {
	v, err := value()
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration '%s'", name, v)
	}
	return d, nil
}

// GO CONCEPT: Switch Without a Condition
// --------------------------------------
// "switch {" with boolean cases is Go's replacement for long if/else-if
// chains. Cases are tried top to bottom and there is no fallthrough
// unless asked for.
//
// Compare with Swift: switch true { case a < 0: ... } is possible but
// unusual; guard statements are the common form.
//
// Compare with Python: an if/elif chain, or match with guards (3.10+).

// validateArguments checks values that may also originate from the
// environment.
func validateArguments(args arguments) error {
	switch {
	case args.namePrefix == "":
		return errors.New("name prefix must not be empty")
	case !modbusline.ValidBase(args.addressBase):
		return fmt.Errorf("address base %d is invalid (0 or 2..%d)", args.addressBase, modbusline.MaxBase)
	case !modbusline.ValidBase(args.valueBase):
		return fmt.Errorf("value base %d is invalid (0 or 2..%d)", args.valueBase, modbusline.MaxBase)
	case args.semaphoreTimeout <= 0:
		return fmt.Errorf("semaphore timeout %s must be positive", args.semaphoreTimeout)
	case args.wait < 0:
		return fmt.Errorf("wait %s must not be negative", args.wait)
	case args.pid < 0:
		return fmt.Errorf("process id %d must not be negative", args.pid)
	}
	return nil
}

// =============================================================================
// Signal Handling
// =============================================================================

// GO CONCEPT: Custom Error Types
// ------------------------------
// Any type with an Error() string method satisfies the built-in error
// interface. Callers recover the concrete type with errors.As, which
// also looks through wrapped errors.
//
// Compare with Swift: a struct conforming to the Error protocol, matched
// with "catch let e as SignalError".
//
// Compare with Python: a subclass of Exception, matched with
// "except SignalError as e".

// signalError is the cancellation cause after SIGINT or SIGTERM.
type signalError struct {
	sig os.Signal
}

func (e *signalError) Error() string {
	return fmt.Sprintf("received %s", e.sig)
}

// GO CONCEPT: Cancellation Causes
// -------------------------------
// context.WithCancelCause lets every party that ends the program say why.
// The signal goroutine cancels with a *signalError, the liveness monitor
// with a *shmsync.LivenessError. The input flow only sees "the context is
// done" and hands context.Cause back to run, which maps it to an exit code.
//
// Compare with Swift: Task cancellation carries no reason; a separate
// property would be needed to record why.
//
// Compare with Python: asyncio's task.cancel(msg) attaches a message to
// the CancelledError, which is the closest equivalent.

// GO CONCEPT: Signals as Channel Values
// -------------------------------------
// signal.Notify delivers signals into a channel instead of running a
// handler asynchronously. The channel must be buffered so a signal that
// arrives before anyone receives is not dropped. The goroutine below
// waits for either a signal or the stop request, whichever comes first.
//
// Compare with Swift: DispatchSource.makeSignalSource after
// signal(SIGINT, SIG_IGN).
//
// Compare with Python: signal.signal(signal.SIGINT, handler) runs the
// handler on the main thread between bytecodes.

// setupSignalHandler cancels ctx on SIGINT or SIGTERM. The returned
// function stops the handler.
func setupSignalHandler(cancel context.CancelCauseFunc) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			cancel(&signalError{sig: sig})
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// GO CONCEPT: errors.As
// ---------------------
// errors.As walks the chain of wrapped errors and stores the first one of
// the target's type. The target is a pointer to a variable of that type,
// here a pointer to a pointer.

// exitCode maps the error that ended the input flow to a process exit code.
func exitCode(err error) int {
	var (
		sigErr        *signalError
		contentionErr *shmsync.ContentionError
		livenessErr   *shmsync.LivenessError
	)
	switch {
	case err == nil, errors.As(err, &sigErr):
		return exitOK
	case errors.As(err, &livenessErr):
		return exitUnavailable
	case errors.As(err, &contentionErr):
		return exitSoftware
	default:
		return exitIOErr
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// GO CONCEPT: defer and os.Exit
// -----------------------------
// Deferred calls run when the surrounding function returns, in reverse
// order. os.Exit ends the process immediately and skips them, so all the
// cleanup lives in run and main only turns its result into an exit code.
//
// Compare with Swift: defer { } blocks behave the same and are also
// skipped by exit().
//
// Compare with Python: try/finally or "with" blocks; sys.exit raises
// SystemExit so they still run, unlike os._exit.

// run is main without os.Exit, so tests can drive it.
func run(argv []string, stdout, stderr io.Writer) int {
	setupColor(stderr)

	defaults, err := loadConfig()
	if err != nil {
		printError(stderr, err.Error())
		return exitUsage
	}

	args, err := parseArguments(argv, defaults)
	if err != nil {
		printError(stderr, err.Error())
		fmt.Fprintf(stderr, "Use '%s --help' for more information.\n", appName)
		return exitUsage
	}

	switch {
	case args.showHelp:
		printUsage(stdout)
		return exitOK
	case args.showVersion:
		fmt.Fprintln(stdout, fullTitle())
		return exitOK
	case args.listTypes:
		printDataTypes(stdout)
		return exitOK
	}

	res, err := openResources(args)
	if err != nil {
		printError(stderr, err.Error())
		return exitOSErr
	}
	defer res.Close()
	if args.verbose {
		res.describe(stderr)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	stopSignals := setupSignalHandler(cancel)
	defer stopSignals()

	// GO CONCEPT: Goroutines
	// -----------------------
	// "go f()" starts f concurrently and returns at once. The monitor
	// stops on its own when ctx is cancelled, so nothing waits for it.
	//
	// Compare with Swift: Task { await monitor.watch() }.
	//
	// Compare with Python: threading.Thread(target=..., daemon=True).
	if args.pid > 0 {
		monitor := shmsync.NewMonitor(args.pid)
		go monitor.Watch(ctx, cancel)
	}

	editor := NewLineEditor()
	defer editor.Close()

	s := newSession(args, res, stdout, stderr)
	err = s.run(ctx, editor)

	// Do not exit while a batch is half applied.
	s.applier.Drain()

	var sigErr *signalError
	if err != nil && !errors.As(err, &sigErr) {
		printError(stderr, err.Error())
	}
	printNotice(stderr, "Terminating ...")

	return exitCode(err)
}
