package modbusline

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// CommandParser converts instruction lines into register writes.
type CommandParser struct {
	// AddressBase is the numeric base of addresses (0 = auto-detect).
	AddressBase int

	// ValueBase is the numeric base of integer values (0 = auto-detect).
	ValueBase int

	// Trace receives one "# <layout>: <value>" line per encoded value
	// when non-nil.
	Trace io.Writer
}

// NewCommandParser creates a new command parser.
func NewCommandParser(addressBase, valueBase int) *CommandParser {
	return &CommandParser{AddressBase: addressBase, ValueBase: valueBase}
}

// Parse parses one line into the instructions it describes, in the order
// they must be applied. The returned error is a *ParseError.
func (p *CommandParser) Parse(line string) ([]Instruction, error) {
	fields := splitFields(normalizeLine(line))
	if len(fields) < MinFields || len(fields) > MaxFields {
		return nil, newLineFormatError(len(fields))
	}

	bank, ok := ParseBank(fields[0])
	if !ok {
		return nil, newInvalidBankError(fields[0])
	}

	address, err := p.parseAddress(fields[1])
	if err != nil {
		return nil, err
	}

	value := substituteConstant(fields[2])

	if len(fields) == MinFields {
		n, err := Lex(value, p.ValueBase, Uint16)
		if err != nil {
			return nil, err
		}
		return []Instruction{NewInstruction(bank, address, uint16(n.Bits))}, nil
	}

	if bank.IsDiscrete() {
		return nil, newLayoutOnDiscreteError(bank)
	}

	l, ok := LookupLayout(fields[3])
	if !ok {
		return nil, newUnknownLayoutError(fields[3])
	}

	n, err := Lex(value, p.ValueBase, l.Type())
	if err != nil {
		return nil, err
	}

	words := Encode(n, l)
	if address > math.MaxUint64-uint64(len(words)-1) {
		return nil, newAddressRangeError(fields[1])
	}

	if p.Trace != nil {
		fmt.Fprintf(p.Trace, "# %s: %s\n", l, n)
	}
	instructions := make([]Instruction, len(words))
	for i, w := range words {
		instructions[i] = NewInstruction(bank, address+uint64(i), w)
	}
	return instructions, nil
}

// parseAddress lexes an address. Sentinels such as "max" are values, not
// addresses, and are rejected.
func (p *CommandParser) parseAddress(text string) (uint64, error) {
	n, err := lexUnsigned(strings.ToLower(text), p.AddressBase, Uint64)
	if err != nil {
		return 0, newInvalidAddressError(text)
	}
	return n.Bits, nil
}
