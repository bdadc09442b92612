// =============================================================================
// diag.go - Diagnostics on stderr
// =============================================================================
//
// stdout belongs to --passthrough, so every message stdin2shm produces goes
// to stderr. Colors are used only when stderr is a terminal.
//
// =============================================================================

package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/stdin2shm/stdin2shm/modbusline"
)

// GO CONCEPT: Package-Level Variables
// -----------------------------------
// Variables declared outside functions are initialized before main runs
// and shared by the whole package. color.New returns a *color.Color that
// is safe to reuse for every message.
//
// Compare with Python: module-level globals, initialized at import time.
var (
	errorColor   = color.New(color.FgRed, color.Bold)
	discardColor = color.New(color.FgYellow)
	noticeColor  = color.New(color.FgCyan)
	traceColor   = color.New(color.FgHiBlack)
)

// GO CONCEPT: Type Assertions
// ---------------------------
// w.(*os.File) asks whether the interface value holds an *os.File. The
// two-value form reports failure in ok instead of panicking, so buffers in
// tests simply get no colors.
//
// Compare with Swift: "if let f = w as? FileHandle".
//
// Compare with Python: isinstance(w, io.TextIOWrapper).

// setupColor enables colors if w is a terminal and NO_COLOR is unset.
// fatih/color decides from stdout by default, which is the wrong stream here.
func setupColor(w io.Writer) {
	f, ok := w.(*os.File)
	color.NoColor = !ok || !term.IsTerminal(int(f.Fd())) || os.Getenv("NO_COLOR") != ""
}

// printError prints a fatal error message.
func printError(w io.Writer, message string) {
	errorColor.Fprintf(w, "Error: %s\n", message)
}

// printDiscard reports a line, or one register of it, that was not applied.
func printDiscard(w io.Writer, line string, cause error) {
	discardColor.Fprintf(w, "line '%s' discarded: %v\n", line, cause)
}

// printNotice prints an informational message.
func printNotice(w io.Writer, message string) {
	noticeColor.Fprintln(w, message)
}

// printWritten traces one register write in verbose mode.
func printWritten(w io.Writer, inst modbusline.Instruction) {
	traceColor.Fprintf(w, "# %s:%d <- 0x%04x\n", inst.Bank, inst.Address, inst.Word)
}
