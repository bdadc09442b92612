package modbusline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the interpretation of a numeric bit pattern.
type Kind int

const (
	// Unsigned is an unsigned two's complement integer.
	Unsigned Kind = iota
	// Signed is a signed two's complement integer.
	Signed
	// Float is an IEEE-754 binary floating point number.
	Float
)

// NumericType is a kind together with its exact bit width.
type NumericType struct {
	Kind Kind
	Bits int
}

// Numeric types accepted by Lex.
var (
	Uint8   = NumericType{Unsigned, 8}
	Uint16  = NumericType{Unsigned, 16}
	Uint32  = NumericType{Unsigned, 32}
	Uint64  = NumericType{Unsigned, 64}
	Int8    = NumericType{Signed, 8}
	Int16   = NumericType{Signed, 16}
	Int32   = NumericType{Signed, 32}
	Int64   = NumericType{Signed, 64}
	Float32 = NumericType{Float, 32}
	Float64 = NumericType{Float, 64}
)

// String returns the short type name, e.g. "u16" or "f32".
func (t NumericType) String() string {
	prefix := "u"
	switch t.Kind {
	case Signed:
		prefix = "i"
	case Float:
		prefix = "f"
	}
	return prefix + strconv.Itoa(t.Bits)
}

func (t NumericType) mask() uint64 {
	if t.Bits >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(t.Bits) - 1
}

// Number is a lexed value stored as its native bit pattern, zero-extended
// to 64 bits. Signed values are stored in two's complement of their width
// and floats as their exact IEEE-754 encoding, so NaN payloads and signed
// zeros survive unchanged.
type Number struct {
	Type NumericType
	Bits uint64
}

// NewUnsigned creates an unsigned number of the given type.
func NewUnsigned(t NumericType, v uint64) Number {
	return Number{Type: t, Bits: v & t.mask()}
}

// NewSigned creates a signed number of the given type.
func NewSigned(t NumericType, v int64) Number {
	return Number{Type: t, Bits: uint64(v) & t.mask()}
}

// NewFloat32 creates a 32 bit float number.
func NewFloat32(f float32) Number {
	return Number{Type: Float32, Bits: uint64(math.Float32bits(f))}
}

// NewFloat64 creates a 64 bit float number.
func NewFloat64(f float64) Number {
	return Number{Type: Float64, Bits: math.Float64bits(f)}
}

// Uint64 returns the value as an unsigned integer.
func (n Number) Uint64() uint64 {
	return n.Bits
}

// Int64 returns the value sign-extended from its width.
func (n Number) Int64() int64 {
	shift := uint(64 - n.Type.Bits)
	return int64(n.Bits<<shift) >> shift
}

// Float64 returns the value as a float64. For 32 bit floats the value is
// widened, which does not preserve NaN payloads; use Bits for that.
func (n Number) Float64() float64 {
	if n.Type.Bits == 32 {
		return float64(math.Float32frombits(uint32(n.Bits)))
	}
	return math.Float64frombits(n.Bits)
}

// String formats the value according to its type.
func (n Number) String() string {
	switch n.Type.Kind {
	case Signed:
		return strconv.FormatInt(n.Int64(), 10)
	case Float:
		return strconv.FormatFloat(n.Float64(), 'g', -1, n.Type.Bits)
	default:
		return strconv.FormatUint(n.Bits, 10)
	}
}

// Canonical quiet NaN encodings.
const (
	quietNaN32 = 0x7FC00000
	quietNaN64 = 0x7FF8000000000000
)

// Lex converts text into a number of type t. Integers are parsed in the
// given base (0 = detect from prefix); floats are parsed in decimal or
// scientific notation and the base is ignored.
//
// The sentinels "min", "max" and "lowest" yield the bounds of t. Floats
// additionally accept "nan", "inf", "-inf" and "epsilon". The whole token
// must be consumed and the value must fit t exactly.
func Lex(text string, base int, t NumericType) (Number, error) {
	token := strings.ToLower(text)
	if n, ok := sentinel(token, t); ok {
		return n, nil
	}

	switch t.Kind {
	case Unsigned:
		return lexUnsigned(token, base, t)
	case Signed:
		return lexSigned(token, base, t)
	case Float:
		return lexFloat(token, t)
	default:
		return Number{}, fmt.Errorf("unsupported numeric kind %d", t.Kind)
	}
}

func sentinel(token string, t NumericType) (Number, bool) {
	switch t.Kind {
	case Unsigned:
		switch token {
		case "min", "lowest":
			return NewUnsigned(t, 0), true
		case "max":
			return NewUnsigned(t, t.mask()), true
		}
	case Signed:
		switch token {
		case "min", "lowest":
			return NewSigned(t, -1<<uint(t.Bits-1)), true
		case "max":
			return NewSigned(t, 1<<uint(t.Bits-1)-1), true
		}
	case Float:
		if t.Bits == 32 {
			switch token {
			case "nan":
				return Number{Type: t, Bits: quietNaN32}, true
			case "inf":
				return NewFloat32(float32(math.Inf(1))), true
			case "-inf":
				return NewFloat32(float32(math.Inf(-1))), true
			case "min":
				return NewFloat32(math.Float32frombits(0x00800000)), true
			case "max":
				return NewFloat32(math.MaxFloat32), true
			case "lowest":
				return NewFloat32(-math.MaxFloat32), true
			case "epsilon":
				return NewFloat32(math.Float32frombits(0x34000000)), true
			}
			return Number{}, false
		}
		switch token {
		case "nan":
			return Number{Type: t, Bits: quietNaN64}, true
		case "inf":
			return NewFloat64(math.Inf(1)), true
		case "-inf":
			return NewFloat64(math.Inf(-1)), true
		case "min":
			return NewFloat64(math.Float64frombits(0x0010000000000000)), true
		case "max":
			return NewFloat64(math.MaxFloat64), true
		case "lowest":
			return NewFloat64(-math.MaxFloat64), true
		case "epsilon":
			return NewFloat64(math.Float64frombits(0x3CB0000000000000)), true
		}
	}
	return Number{}, false
}

// stripHexPrefix allows "0x" literals when the base is explicitly 16.
func stripHexPrefix(token string, base int) string {
	if base == 16 && len(token) > 2 && token[0] == '0' && token[1] == 'x' {
		return token[2:]
	}
	return token
}

// foreignSyntax reports digits that strconv accepts but the line grammar
// does not: digit separators, and the 0b and 0o prefixes under base 0.
// Only 0x and a leading 0 select the radix.
func foreignSyntax(digits string, base int) bool {
	if strings.Contains(digits, "_") {
		return true
	}
	return base == 0 && (strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0o"))
}

func lexUnsigned(token string, base int, t NumericType) (Number, error) {
	digits := strings.TrimPrefix(token, "+")
	digits = stripHexPrefix(digits, base)
	if digits == "" || digits[0] == '+' || digits[0] == '-' || foreignSyntax(digits, base) {
		return Number{}, newInvalidValueError(token)
	}
	v, err := strconv.ParseUint(digits, base, t.Bits)
	if err != nil {
		return Number{}, numError(err, token, t)
	}
	return NewUnsigned(t, v), nil
}

func lexSigned(token string, base int, t NumericType) (Number, error) {
	sign := ""
	digits := token
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	digits = stripHexPrefix(digits, base)
	if digits == "" || digits[0] == '+' || digits[0] == '-' || foreignSyntax(digits, base) {
		return Number{}, newInvalidValueError(token)
	}
	v, err := strconv.ParseInt(sign+digits, base, t.Bits)
	if err != nil {
		return Number{}, numError(err, token, t)
	}
	return NewSigned(t, v), nil
}

func lexFloat(token string, t NumericType) (Number, error) {
	// ParseFloat also knows "infinity" and hex floats; neither is part of
	// the accepted grammar.
	if token == "" || strings.Contains(token, "x") || strings.Contains(token, "_") ||
		strings.Contains(token, "inf") || strings.Contains(token, "nan") {
		return Number{}, newInvalidValueError(token)
	}
	f, err := strconv.ParseFloat(token, t.Bits)
	if err != nil {
		return Number{}, numError(err, token, t)
	}
	if t.Bits == 32 {
		return NewFloat32(float32(f)), nil
	}
	return NewFloat64(f), nil
}

func numError(err error, token string, t NumericType) error {
	if errors.Is(err, strconv.ErrRange) {
		return newValueRangeError(token, t)
	}
	return newInvalidValueError(token)
}
