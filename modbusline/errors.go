package modbusline

import (
	"errors"
	"fmt"
)

// Error categories. A *ParseError matches exactly one of them with errors.Is.
var (
	// ErrLineFormat indicates a line with the wrong number of fields.
	ErrLineFormat = errors.New("malformed line")

	// ErrField indicates an invalid bank, address, value or layout token.
	ErrField = errors.New("invalid field")

	// ErrRange indicates a value outside the bounds of its target type.
	ErrRange = errors.New("value out of range")
)

// ParseError represents an error that occurred while parsing an instruction
// line. The line is discarded; processing of later lines continues.
type ParseError struct {
	Kind    ParseErrorKind
	Value   string // The token that caused the error
	Message string // Additional context
}

// ParseErrorKind categorizes parsing errors.
type ParseErrorKind int

const (
	// ErrKindLineFormat indicates a wrong number of fields.
	ErrKindLineFormat ParseErrorKind = iota
	// ErrKindInvalidBank indicates an unknown register bank code.
	ErrKindInvalidBank
	// ErrKindInvalidAddress indicates a malformed or overflowing address.
	ErrKindInvalidAddress
	// ErrKindInvalidValue indicates a malformed value literal.
	ErrKindInvalidValue
	// ErrKindValueRange indicates a value that does not fit its target type.
	ErrKindValueRange
	// ErrKindLayoutOnDiscrete indicates a layout suffix on a discrete bank.
	ErrKindLayoutOnDiscrete
	// ErrKindUnknownLayout indicates a layout alias missing from the catalog.
	ErrKindUnknownLayout
	// ErrKindAddressRange indicates a multi-register value whose last
	// register address does not fit in 64 bits.
	ErrKindAddressRange
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	var msg string
	switch e.Kind {
	case ErrKindLineFormat:
		msg = "the input does not contain the appropriate number of delimiters"
	case ErrKindInvalidBank:
		msg = fmt.Sprintf("'%s' is not a valid register type", e.Value)
	case ErrKindInvalidAddress:
		msg = fmt.Sprintf("failed to parse address '%s'", e.Value)
	case ErrKindInvalidValue:
		msg = fmt.Sprintf("failed to parse value '%s'", e.Value)
	case ErrKindValueRange:
		msg = fmt.Sprintf("value '%s' out of range", e.Value)
	case ErrKindLayoutOnDiscrete:
		msg = fmt.Sprintf("data type specification for register type '%s' is not allowed", e.Value)
	case ErrKindUnknownLayout:
		msg = fmt.Sprintf("unknown data type '%s'", e.Value)
	case ErrKindAddressRange:
		msg = fmt.Sprintf("address '%s' out of range", e.Value)
	default:
		msg = fmt.Sprintf("parse error: %s", e.Value)
	}
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// Is maps the error kind onto its category sentinel.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrLineFormat:
		return e.Kind == ErrKindLineFormat
	case ErrRange:
		return e.Kind == ErrKindValueRange || e.Kind == ErrKindAddressRange
	case ErrField:
		return e.Kind != ErrKindLineFormat && e.Kind != ErrKindValueRange && e.Kind != ErrKindAddressRange
	}
	return false
}

func newLineFormatError(fields int) error {
	return &ParseError{Kind: ErrKindLineFormat, Message: fmt.Sprintf("%d fields", fields)}
}

func newInvalidBankError(bank string) error {
	return &ParseError{Kind: ErrKindInvalidBank, Value: bank}
}

func newInvalidAddressError(addr string) error {
	return &ParseError{Kind: ErrKindInvalidAddress, Value: addr}
}

func newInvalidValueError(val string) error {
	return &ParseError{Kind: ErrKindInvalidValue, Value: val}
}

func newValueRangeError(val string, typ NumericType) error {
	return &ParseError{Kind: ErrKindValueRange, Value: val, Message: typ.String()}
}

func newAddressRangeError(addr string) error {
	return &ParseError{Kind: ErrKindAddressRange, Value: addr}
}

func newLayoutOnDiscreteError(bank Bank) error {
	return &ParseError{Kind: ErrKindLayoutOnDiscrete, Value: bank.String()}
}

func newUnknownLayoutError(alias string) error {
	return &ParseError{Kind: ErrKindUnknownLayout, Value: alias}
}
