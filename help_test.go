// =============================================================================
// help_test.go - Tests for Help Output (help.go)
// =============================================================================
//
// Tests for the help texts, covering:
//   - --help lists every option and environment variable
//   - the input grammar names the constants and the legacy float form
//   - --list-types lists every layout once, with all of its aliases
//
// GO CONCEPT: Writers Instead of stdout
// -------------------------------------
// The help functions take an io.Writer, so tests hand them a
// strings.Builder instead of redirecting os.Stdout.
//
// =============================================================================

package main

import (
	"sort"
	"strings"
	"testing"

	"github.com/stdin2shm/stdin2shm/modbusline"
)

// =============================================================================
// printUsage Tests
// =============================================================================

func TestUsageListsOptions(t *testing.T) {
	var buf strings.Builder
	printUsage(&buf)
	out := buf.String()

	for _, want := range []string{
		"USAGE: stdin2shm [options]",
		"--name-prefix", "--address-base", "--value-base",
		"--semaphore", "--semaphore-timeout", "--wait", "--pid",
		"--passthrough", "--verbose", "--list-types", "--help", "--version",
		"2..36",
		"(default 100ms)",
		"INPUT FORMAT:",
		"EXAMPLES:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

func TestUsageListsEnvironment(t *testing.T) {
	var buf strings.Builder
	printUsage(&buf)
	out := buf.String()

	for _, name := range []string{
		"NAME_PREFIX", "ADDRESS_BASE", "VALUE_BASE", "SEMAPHORE",
		"SEMAPHORE_TIMEOUT", "WAIT", "PID", "PASSTHROUGH", "VERBOSE",
	} {
		if !strings.Contains(out, envPrefix+name) {
			t.Errorf("usage missing environment variable %s%s", envPrefix, name)
		}
	}
	if strings.Contains(out, "%!") {
		t.Errorf("usage contains a formatting error:\n%s", out)
	}
}

// =============================================================================
// printLineHelp Tests
// =============================================================================

func TestLineHelp(t *testing.T) {
	var buf strings.Builder
	printLineHelp(&buf)
	out := buf.String()

	for _, want := range []string{
		"bank:address:value[:type]",
		"do, di", "ao, ai",
		"0-65535",
		`"<rest>:f32_badc"`,
		"nan", "epsilon",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("line help missing %q:\n%s", want, out)
		}
	}
	for _, name := range constantNames() {
		if !strings.Contains(out, name) {
			t.Errorf("line help missing constant %q", name)
		}
	}
}

func TestConstantNamesSorted(t *testing.T) {
	names := constantNames()
	if len(names) != len(modbusline.NamedConstants()) {
		t.Fatalf("got %d names, want %d", len(names), len(modbusline.NamedConstants()))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
}

// =============================================================================
// printDataTypes Tests
// =============================================================================

func TestCatalogLayouts(t *testing.T) {
	layouts := catalogLayouts()

	// 4 per float width, 4 byte layouts, 4 per 16 bit, 8 per 32 and 64 bit
	if len(layouts) != 32 {
		t.Errorf("got %d layouts, want 32", len(layouts))
	}
	for i := 1; i < len(layouts); i++ {
		if layouts[i].Bits < layouts[i-1].Bits {
			t.Errorf("layout %d (%s) is narrower than layout %d (%s)",
				i, layouts[i], i-1, layouts[i-1])
		}
		if layouts[i] == layouts[i-1] {
			t.Errorf("layout %s listed twice", layouts[i])
		}
	}

	first, _ := modbusline.LookupLayout("u8_lo")
	if layouts[0] != first {
		t.Errorf("first layout = %s, want %s", layouts[0], first)
	}
}

// TestDataTypesListEveryAliasOnce verifies that every alias the parser
// accepts appears exactly once in --list-types.
func TestDataTypesListEveryAliasOnce(t *testing.T) {
	var buf strings.Builder
	printDataTypes(&buf)
	out := buf.String()

	if !strings.HasPrefix(out, "DATA TYPES:\n") {
		t.Errorf("missing heading:\n%s", out)
	}

	seen := make(map[string]int)
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "      ") {
			continue
		}
		for _, alias := range strings.Split(strings.TrimSpace(line), ", ") {
			seen[alias]++
		}
	}

	for _, alias := range modbusline.Aliases() {
		if seen[alias] != 1 {
			t.Errorf("alias %q listed %d times, want 1", alias, seen[alias])
		}
	}
	if len(seen) != len(modbusline.Aliases()) {
		t.Errorf("listed %d aliases, catalog has %d", len(seen), len(modbusline.Aliases()))
	}
}

func TestDataTypesDescriptions(t *testing.T) {
	var buf strings.Builder
	printDataTypes(&buf)
	out := buf.String()

	for _, want := range []string{
		"low byte unsigned integer 8 bit",
		"big endian floating point 32 bit",
		"little endian signed integer 64 bit (reversed register order)",
		"f32_badc, f32_little_rev, f32lr",
		"big endian floating point 32 bit (reversed register order) [cdab]",
		"little endian floating point 32 bit (reversed register order) [badc]",
		// 64 bit reversed layouts swap registers within each 32 bit half.
		"big endian floating point 64 bit (reversed register order) [cdabghef]",
		"little endian unsigned integer 64 bit (reversed register order) [fehgbadc]",
		"big endian unsigned integer 16 bit [ab]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("data types missing %q", want)
		}
	}
}
