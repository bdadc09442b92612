// =============================================================================
// help.go - Usage, Input Format and Data Type Listing
// =============================================================================
//
// Three pieces of help text:
//   - printUsage:     --help, options and environment variables
//   - printLineHelp:  the input grammar, also shown by "help" interactively
//   - printDataTypes: --list-types, every layout with all of its aliases
//
// The data type listing is generated from the modbusline catalog, so it
// cannot drift from what the parser accepts.
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/stdin2shm/stdin2shm/modbusline"
	"github.com/stdin2shm/stdin2shm/shmsync"
)

// GO CONCEPT: Indexed Format Verbs
// --------------------------------
// %[2]d refers to the second argument explicitly, so one argument can
// appear several times in a template. Later plain verbs continue from
// the last index used.
//
// Compare with Python: str.format supports "{0}" and "{1}" the same way.

// printUsage prints the command-line help.
func printUsage(w io.Writer) {
	fmt.Fprintf(w, `USAGE: %[1]s [options]

Read register write commands from stdin and write them to the shared memory
register banks of a Modbus server.

OPTIONS:
  -n, --name-prefix <prefix>     Prefix of the shared memory objects (default modbus_)
      --address-base <base>      Radix of addresses, 0 or 2..%[2]d (default 0 = auto)
      --value-base <base>        Radix of raw register values, 0 or 2..%[2]d (default 0 = auto)
  -s, --semaphore <name>         Named semaphore guarding the register banks
      --semaphore-timeout <dur>  Wait per semaphore attempt (default %[3]s)
      --wait <dur>               Wait for the shared memory objects to appear
      --pid <pid>                Terminate when process <pid> exits
  -p, --passthrough              Echo every input line to stdout
  -v, --verbose                  Trace decoded values and written registers
      --list-types               List the data types and their aliases
  -h, --help                     Show this help
      --version                  Show version

ENVIRONMENT:
  %[4]sNAME_PREFIX, %[4]sADDRESS_BASE, %[4]sVALUE_BASE,
  %[4]sSEMAPHORE, %[4]sSEMAPHORE_TIMEOUT, %[4]sWAIT,
  %[4]sPID, %[4]sPASSTHROUGH, %[4]sVERBOSE
  preset the options above. Command-line options take precedence.

`, appName, modbusline.MaxBase, shmsync.DefaultHandshakeTimeout, envPrefix)

	printLineHelp(w)

	fmt.Fprintf(w, `
EXAMPLES:
  echo "do:5:on" | %[1]s
  echo "ao:0:3.14:f32_abcd" | %[1]s -s /modbus_sem
  some-producer | %[1]s -p --pid $SERVER_PID | some-consumer
`, appName)
}

// printLineHelp prints the input grammar.
func printLineHelp(w io.Writer) {
	fmt.Fprintf(w, `INPUT FORMAT:
  bank:address:value[:type]     one command per line, case-insensitive

  bank     do, di (one byte per register), ao, ai (16 bit registers)
  address  first register to write, 0-%d
  value    a number, a sentinel (min, max, lowest, epsilon, nan, inf, -inf)
           or a named constant (%s)
  type     data type of value, see --list-types. Without a type, value is
           a raw 16 bit register value. Types are not allowed for do and di,
           where every value other than 0 is written as 1.

  Values of types wider than 16 bit occupy consecutive registers.
  A line starting with "f:" is read as "<rest>:%s".
`, modbusline.MaxRegisters-1, strings.Join(constantNames(), ", "), modbusline.LegacyFloatLayout)
}

// printDataTypes prints every layout followed by its aliases.
func printDataTypes(w io.Writer) {
	fmt.Fprintln(w, "DATA TYPES:")
	fmt.Fprintln(w, "  [bytes] lists the register bytes in order, a is the most significant byte.")
	fmt.Fprintln(w)
	for _, l := range catalogLayouts() {
		if p := l.Pattern(); p != "" {
			fmt.Fprintf(w, "  %s [%s]\n", l, p)
		} else {
			fmt.Fprintf(w, "  %s\n", l)
		}
		fmt.Fprintf(w, "      %s\n", strings.Join(modbusline.Synonyms(l), ", "))
	}
}

// GO CONCEPT: sort.Slice
// ----------------------
// sort.Slice takes a "less" closure over indices. Comparing field by field
// in a switch gives a multi-key order.
//
// Compare with Python: sorted(layouts, key=lambda l: (l.bits, l.kind, ...)).

// catalogLayouts returns the distinct layouts ordered by width, kind and
// register arrangement.
func catalogLayouts() []modbusline.Layout {
	seen := make(map[modbusline.Layout]bool)
	var layouts []modbusline.Layout
	for _, alias := range modbusline.Aliases() {
		l, _ := modbusline.LookupLayout(alias)
		if !seen[l] {
			seen[l] = true
			layouts = append(layouts, l)
		}
	}

	sort.Slice(layouts, func(i, j int) bool {
		a, b := layouts[i], layouts[j]
		switch {
		case a.Bits != b.Bits:
			return a.Bits < b.Bits
		case a.Kind != b.Kind:
			return a.Kind < b.Kind
		case a.Placement != b.Placement:
			return a.Placement < b.Placement
		case a.WordOrder != b.WordOrder:
			return a.WordOrder < b.WordOrder
		default:
			return a.ByteOrder < b.ByteOrder
		}
	})
	return layouts
}

// constantNames returns the named value constants in sorted order.
func constantNames() []string {
	constants := modbusline.NamedConstants()
	names := make([]string, 0, len(constants))
	for name := range constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
