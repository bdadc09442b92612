package modbusline

import (
	"fmt"
	"strings"
)

// Bank identifies one of the four Modbus register banks.
type Bank int

const (
	// DiscreteOutput holds coils (1 bit per register, stored as one byte).
	DiscreteOutput Bank = iota
	// DiscreteInput holds discrete inputs (1 bit per register).
	DiscreteInput
	// AnalogOutput holds holding registers (16 bit words).
	AnalogOutput
	// AnalogInput holds input registers (16 bit words).
	AnalogInput
)

// Banks lists all register banks in declaration order.
var Banks = []Bank{DiscreteOutput, DiscreteInput, AnalogOutput, AnalogInput}

// String returns the bank code used in instruction lines.
func (b Bank) String() string {
	switch b {
	case DiscreteOutput:
		return "do"
	case DiscreteInput:
		return "di"
	case AnalogOutput:
		return "ao"
	case AnalogInput:
		return "ai"
	default:
		return fmt.Sprintf("bank(%d)", int(b))
	}
}

// Suffix returns the upper case bank code used to name shared memory objects.
func (b Bank) Suffix() string {
	return strings.ToUpper(b.String())
}

// IsDiscrete reports whether the bank stores single bits.
func (b Bank) IsDiscrete() bool {
	return b == DiscreteOutput || b == DiscreteInput
}

// ParseBank resolves a bank code. The match is case-insensitive.
func ParseBank(code string) (Bank, bool) {
	switch strings.ToLower(code) {
	case "do":
		return DiscreteOutput, true
	case "di":
		return DiscreteInput, true
	case "ao":
		return AnalogOutput, true
	case "ai":
		return AnalogInput, true
	default:
		return 0, false
	}
}

// Instruction is a single register write. Multi-register values produce
// several instructions at consecutive addresses which must be applied in
// the order they were produced.
type Instruction struct {
	Bank    Bank
	Address uint64
	Word    uint16
}

// NewInstruction creates an instruction.
func NewInstruction(bank Bank, address uint64, word uint16) Instruction {
	return Instruction{Bank: bank, Address: address, Word: word}
}

// Format returns the instruction as a raw single-register line, which
// parses back to the same instruction with a value base of 0.
func (i Instruction) Format() string {
	return fmt.Sprintf("%s:%d:0x%04x", i.Bank, i.Address, i.Word)
}
