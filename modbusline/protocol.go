// Package modbusline implements the line-oriented text format used to
// describe writes to Modbus register banks.
//
// Line Format:
//
//	<bank>:<address>:<value>[:<layout>]
//
// Example Session:
//
//	do:5:true            -> do:5 <- 0x0001
//	ao:10:-1:i16_big     -> ao:10 <- 0xffff
//	ao:0:3.14:f32_abcd   -> ao:0 <- 0x4048, ao:1 <- 0xf5c3
//	f:ao:0:3.14          -> same as ao:0:3.14:f32_badc
package modbusline

// Protocol constants.
const (
	// Delimiter separates the fields of an instruction line.
	Delimiter = ":"

	// MinFields is the field count of a raw single-register write.
	MinFields = 3

	// MaxFields is the field count of a write with a layout suffix.
	MaxFields = 4

	// LegacyFloatPrefix marks lines in the format of the older float
	// converter tool. Such lines are rewritten to use LegacyFloatLayout.
	LegacyFloatPrefix = "f:"

	// LegacyFloatLayout is the layout implied by LegacyFloatPrefix.
	LegacyFloatLayout = "f32_badc"

	// MaxRegisters is the largest number of registers a Modbus bank can
	// address.
	MaxRegisters = 0x10000

	// MaxBase is the largest accepted numeric base.
	MaxBase = 36
)

// ValidBase reports whether base can be used for address or value literals.
// Zero selects auto-detection from the literal's prefix.
func ValidBase(base int) bool {
	return base == 0 || (base >= 2 && base <= MaxBase)
}
