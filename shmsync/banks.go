package shmsync

import "github.com/stdin2shm/stdin2shm/modbusline"

// Banks gives access to the four register banks. Discrete banks store one
// byte per register, analog banks one 16 bit word.
//
// Implementations need not be safe for concurrent use; the Applier
// serializes all access.
type Banks interface {
	// Len returns the number of addressable registers of a bank.
	Len(bank modbusline.Bank) int
	// Read returns the register at addr. addr must be below Len(bank).
	Read(bank modbusline.Bank, addr int) uint16
	// Write stores word at addr. addr must be below Len(bank). Discrete
	// banks store the low byte.
	Write(bank modbusline.Bank, addr int, word uint16)
}

// MemoryBanks is a process-local Banks implementation.
type MemoryBanks struct {
	discrete [2][]byte
	analog   [2][]uint16
}

// NewMemoryBanks allocates banks with the given register counts.
func NewMemoryBanks(do, di, ao, ai int) *MemoryBanks {
	return &MemoryBanks{
		discrete: [2][]byte{make([]byte, do), make([]byte, di)},
		analog:   [2][]uint16{make([]uint16, ao), make([]uint16, ai)},
	}
}

// Len implements Banks.
func (m *MemoryBanks) Len(bank modbusline.Bank) int {
	return bankLen(bank, m.discrete, m.analog)
}

// Read implements Banks.
func (m *MemoryBanks) Read(bank modbusline.Bank, addr int) uint16 {
	return bankRead(bank, addr, m.discrete, m.analog)
}

// Write implements Banks.
func (m *MemoryBanks) Write(bank modbusline.Bank, addr int, word uint16) {
	bankWrite(bank, addr, word, m.discrete, m.analog)
}

func discreteIndex(bank modbusline.Bank) int {
	if bank == modbusline.DiscreteInput {
		return 1
	}
	return 0
}

func analogIndex(bank modbusline.Bank) int {
	if bank == modbusline.AnalogInput {
		return 1
	}
	return 0
}

func bankLen(bank modbusline.Bank, discrete [2][]byte, analog [2][]uint16) int {
	if bank.IsDiscrete() {
		return len(discrete[discreteIndex(bank)])
	}
	return len(analog[analogIndex(bank)])
}

func bankRead(bank modbusline.Bank, addr int, discrete [2][]byte, analog [2][]uint16) uint16 {
	if bank.IsDiscrete() {
		return uint16(discrete[discreteIndex(bank)][addr])
	}
	return analog[analogIndex(bank)][addr]
}

func bankWrite(bank modbusline.Bank, addr int, word uint16, discrete [2][]byte, analog [2][]uint16) {
	if bank.IsDiscrete() {
		discrete[discreteIndex(bank)][addr] = byte(word)
		return
	}
	analog[analogIndex(bank)][addr] = word
}
