package modbusline

import "strings"

// namedConstants maps value words to the literal text they stand for.
// Substitution happens before lexing, so a constant is lexed with the
// numeric type of the target layout like any other literal.
var namedConstants = map[string]string{
	"true":    "1",
	"one":     "1",
	"high":    "1",
	"active":  "1",
	"on":      "1",
	"enabled": "1",

	"false":    "0",
	"zero":     "0",
	"low":      "0",
	"inactive": "0",
	"off":      "0",
	"disabled": "0",

	"pi":    "3.14159265358979323846264338327950288",
	"npi":   "-3.14159265358979323846264338327950288",
	"-pi":   "-3.14159265358979323846264338327950288",
	"sqrt2": "1.41421356237309504880168872420969808",
	"sqrt3": "1.73205080756887729352744634150587237",
	"phi":   "1.61803398874989484820458683436563811",
	"ln2":   "0.693147180559945309417232121458176568",
	"e":     "2.71828182845904523536028747135266250",
}

// NamedConstants returns the words recognised as value constants.
func NamedConstants() map[string]string {
	out := make(map[string]string, len(namedConstants))
	for k, v := range namedConstants {
		out[k] = v
	}
	return out
}

// substituteConstant replaces a named constant by its literal text.
// Other values are returned unchanged.
func substituteConstant(value string) string {
	if literal, ok := namedConstants[value]; ok {
		return literal
	}
	return value
}

// normalizeLine lower-cases a line and rewrites the legacy float form
// "f:<bank>:<address>:<value>" to "<bank>:<address>:<value>:f32_badc".
func normalizeLine(line string) string {
	line = strings.ToLower(line)
	if strings.HasPrefix(line, LegacyFloatPrefix) {
		line = line[len(LegacyFloatPrefix):] + Delimiter + LegacyFloatLayout
	}
	return line
}

// splitFields splits a normalized line at the delimiter. A trailing empty
// field is dropped, so "ao:1:5:" has three fields.
func splitFields(line string) []string {
	if line == "" {
		return nil
	}
	fields := strings.Split(line, Delimiter)
	if fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
