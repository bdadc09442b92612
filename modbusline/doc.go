// Package modbusline parses instruction lines that describe writes to the
// four Modbus register banks and encodes typed values into 16 bit
// registers.
//
// # Line Format
//
// One instruction per line, case-insensitive:
//
//	<bank>:<address>:<value>[:<layout>]
//
// The bank is one of do, di, ao or ai. Without a layout the value is a raw
// 16 bit register value. With a layout the value is lexed as the layout's
// numeric type and encoded into one, two or four consecutive registers.
// Discrete banks (do, di) do not accept a layout.
//
// Values may be integer or float literals, the sentinels min, max and
// lowest (plus nan, inf, -inf and epsilon for floats), or one of the named
// constants (true, false, on, off, pi, e, ...).
//
// # Basic Usage
//
//	parser := modbusline.NewCommandParser(0, 0)
//	instructions, err := parser.Parse("ao:0:3.14:f32_abcd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, inst := range instructions {
//	    fmt.Println(inst.Format())
//	}
//
// # Layouts
//
// Layouts are selected by alias; LookupLayout resolves an alias and Aliases
// lists all of them. Synonymous aliases such as u16_big, u16_ab and u16b
// resolve to the same Layout value and therefore encode identically.
//
// # Errors
//
// Parse returns a *ParseError. Its category can be tested with errors.Is
// against ErrLineFormat, ErrField and ErrRange.
package modbusline
