// =============================================================================
// lineeditor.go - Line Source with Dual-Mode Operation
// =============================================================================
//
// stdin2shm normally sits at the end of a pipe, but it is just as useful to
// poke registers by hand. The LineEditor picks its input method once, at
// construction:
//
//   - Interactive mode (stdin is a TTY): ergochat/readline with Emacs
//     keybindings and a persistent history in ~/.stdin2shm_history.
//   - Non-interactive mode (piped input): bufio.Scanner, no prompt.
//
// stdout may be consumed by the next program in the pipeline (see
// --passthrough), so readline is told to draw its prompt and echo on
// stderr.
//
// =============================================================================

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	// historyFileName is the name of the history file in the user's home
	// directory.
	historyFileName = ".stdin2shm_history"

	// historySize is the maximum number of history entries to retain.
	historySize = 500

	// maxLineLength bounds a single piped input line.
	maxLineLength = 64 * 1024
)

// LineEditor reads input lines either through readline (interactive) or a
// bufio.Scanner (piped).
type LineEditor struct {
	// interactive is true when stdin is a terminal.
	interactive bool

	// rl is the readline instance in interactive mode, nil otherwise.
	rl *readline.Instance

	// scanner reads stdin in non-interactive mode, nil otherwise.
	scanner *bufio.Scanner
}

// NewLineEditor creates a LineEditor, choosing the mode from whether stdin
// is a terminal. If readline cannot be set up the editor falls back to
// plain line reading.
func NewLineEditor() *LineEditor {
	// GO CONCEPT: TTY Detection
	// -------------------------
	// golang.org/x/term.IsTerminal wraps the isatty check. os.Stdin.Fd()
	// returns a uintptr, IsTerminal takes an int.
	//
	// Compare with Swift: isatty(STDIN_FILENO) != 0 from Darwin/Glibc.
	//
	// Compare with Python: sys.stdin.isatty().
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return newScannerEditor(os.Stdin)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:  filepath.Join(homeDir(), historyFileName),
		HistoryLimit: historySize,

		// Only non-empty lines go into the history, see getInteractiveLine.
		DisableAutoSaveHistory: true,

		// Keep stdout free for passthrough output.
		Stdout: os.Stderr,
		Stderr: os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return newScannerEditor(os.Stdin)
	}

	return &LineEditor{
		interactive: true,
		rl:          rl,
	}
}

// GO CONCEPT: bufio.Scanner Limits
// --------------------------------
// A Scanner refuses tokens longer than its buffer and stops with
// bufio.ErrTooLong. Buffer sets the initial size and the maximum it may
// grow to. The default maximum is 64 KiB.
//
// Compare with Python: "for line in sys.stdin" has no line length limit.

// newScannerEditor creates a non-interactive editor reading from r.
func newScannerEditor(r io.Reader) *LineEditor {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	return &LineEditor{scanner: scanner}
}

// GO CONCEPT: io.EOF Is a Value
// -----------------------------
// End of input is reported as the error io.EOF, not as an exception or a
// special line. Callers compare against it and treat it as a normal end.
//
// Compare with Swift: readLine() returns nil at end of input.
//
// Compare with Python: input() raises EOFError; iterating over a file
// simply stops.

// GetLine reads the next line without its line terminator. The prompt is
// only shown in interactive mode.
//
// It returns io.EOF at the end of piped input, on Ctrl-D and on Ctrl-C.
// readline puts the terminal into raw mode, so Ctrl-C arrives as a key
// press rather than as SIGINT.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.interactive {
		return le.getInteractiveLine(prompt)
	}
	return le.getNonInteractiveLine()
}

// getInteractiveLine reads a line using readline.
func (le *LineEditor) getInteractiveLine(prompt string) (string, error) {
	le.rl.SetPrompt(prompt)

	line, err := le.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

// getNonInteractiveLine reads a line from the scanner. A trailing carriage
// return from CRLF input is dropped.
func (le *LineEditor) getNonInteractiveLine() (string, error) {
	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(le.scanner.Text(), "\r"), nil
}

// GO CONCEPT: Idempotent Close
// ----------------------------
// Close is deferred in run and may also be called by tests. Setting rl to
// nil after closing turns a second call into a no-op.

// Close saves the history and releases the terminal. It is safe to call
// more than once.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

// IsInteractive reports whether the editor reads from a terminal.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}

// homeDir returns the current user's home directory, or "" if unknown.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
