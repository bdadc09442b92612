package modbusline

import (
	"fmt"
	"sort"
	"strings"
)

// ByteOrder is the order of the bytes of a value before it is split into
// registers.
type ByteOrder int

const (
	// BigEndian places the most significant byte first.
	BigEndian ByteOrder = iota
	// LittleEndian places the least significant byte first.
	LittleEndian
)

// WordOrder is the order of the registers of a multi-register value.
type WordOrder int

const (
	// NaturalOrder keeps the registers in byte order.
	NaturalOrder WordOrder = iota
	// ReversedOrder swaps the registers of each 32 bit group.
	ReversedOrder
)

// Placement selects the register half used by 8 bit values.
type Placement int

const (
	// LowByte stores the value in bits 0-7 of the register.
	LowByte Placement = iota
	// HighByte stores the value in bits 8-15 of the register.
	HighByte
)

// Layout describes how a scalar is encoded into 16 bit registers.
// Layouts are values; the catalog hands out copies.
type Layout struct {
	Bits      int
	Kind      Kind
	ByteOrder ByteOrder
	WordOrder WordOrder
	Placement Placement // 8 bit layouts only
}

// Type returns the numeric type a value must be lexed as for this layout.
func (l Layout) Type() NumericType {
	return NumericType{Kind: l.Kind, Bits: l.Bits}
}

// Registers returns the number of registers an encoded value occupies.
func (l Layout) Registers() int {
	if l.Bits <= 16 {
		return 1
	}
	return l.Bits / 16
}

// String returns a human readable description of the layout.
func (l Layout) String() string {
	kind := "unsigned integer"
	switch l.Kind {
	case Signed:
		kind = "signed integer"
	case Float:
		kind = "floating point"
	}

	if l.Bits == 8 {
		half := "low"
		if l.Placement == HighByte {
			half = "high"
		}
		return fmt.Sprintf("%s byte %s %d bit", half, kind, l.Bits)
	}

	order := "big endian"
	if l.ByteOrder == LittleEndian {
		order = "little endian"
	}
	desc := fmt.Sprintf("%s %s %d bit", order, kind, l.Bits)
	if l.WordOrder == ReversedOrder && l.Bits > 16 {
		desc += " (reversed register order)"
	}
	return desc
}

func layout(bits int, kind Kind, bo ByteOrder, wo WordOrder) Layout {
	return Layout{Bits: bits, Kind: kind, ByteOrder: bo, WordOrder: wo}
}

func byteLayout(kind Kind, p Placement) Layout {
	return Layout{Bits: 8, Kind: kind, Placement: p}
}

var (
	f32Big    = layout(32, Float, BigEndian, NaturalOrder)
	f32Little = layout(32, Float, LittleEndian, NaturalOrder)
	f32BigR   = layout(32, Float, BigEndian, ReversedOrder)
	f32LitR   = layout(32, Float, LittleEndian, ReversedOrder)

	f64Big    = layout(64, Float, BigEndian, NaturalOrder)
	f64Little = layout(64, Float, LittleEndian, NaturalOrder)
	f64BigR   = layout(64, Float, BigEndian, ReversedOrder)
	f64LitR   = layout(64, Float, LittleEndian, ReversedOrder)

	u8Lo = byteLayout(Unsigned, LowByte)
	u8Hi = byteLayout(Unsigned, HighByte)
	i8Lo = byteLayout(Signed, LowByte)
	i8Hi = byteLayout(Signed, HighByte)

	u16Big    = layout(16, Unsigned, BigEndian, NaturalOrder)
	u16Little = layout(16, Unsigned, LittleEndian, NaturalOrder)
	i16Big    = layout(16, Signed, BigEndian, NaturalOrder)
	i16Little = layout(16, Signed, LittleEndian, NaturalOrder)

	u32Big    = layout(32, Unsigned, BigEndian, NaturalOrder)
	u32Little = layout(32, Unsigned, LittleEndian, NaturalOrder)
	u32BigR   = layout(32, Unsigned, BigEndian, ReversedOrder)
	u32LitR   = layout(32, Unsigned, LittleEndian, ReversedOrder)
	i32Big    = layout(32, Signed, BigEndian, NaturalOrder)
	i32Little = layout(32, Signed, LittleEndian, NaturalOrder)
	i32BigR   = layout(32, Signed, BigEndian, ReversedOrder)
	i32LitR   = layout(32, Signed, LittleEndian, ReversedOrder)

	u64Big    = layout(64, Unsigned, BigEndian, NaturalOrder)
	u64Little = layout(64, Unsigned, LittleEndian, NaturalOrder)
	u64BigR   = layout(64, Unsigned, BigEndian, ReversedOrder)
	u64LitR   = layout(64, Unsigned, LittleEndian, ReversedOrder)
	i64Big    = layout(64, Signed, BigEndian, NaturalOrder)
	i64Little = layout(64, Signed, LittleEndian, NaturalOrder)
	i64BigR   = layout(64, Signed, BigEndian, ReversedOrder)
	i64LitR   = layout(64, Signed, LittleEndian, ReversedOrder)
)

// catalog maps every lower case layout alias to its layout.
var catalog = map[string]Layout{
	// 32 bit float
	"f32_abcd": f32Big, "f32_big": f32Big, "f32b": f32Big,
	"f32_dcba": f32Little, "f32_little": f32Little, "f32l": f32Little,
	"f32_cdab": f32BigR, "f32_big_rev": f32BigR, "f32br": f32BigR,
	"f32_badc": f32LitR, "f32_little_rev": f32LitR, "f32lr": f32LitR,

	// 64 bit float
	"f64_abcdefgh": f64Big, "f64_big": f64Big, "f64b": f64Big,
	"f64_hgfedcba": f64Little, "f64_little": f64Little, "f64l": f64Little,
	"f64_ghefcdab": f64BigR, "f64_big_rev": f64BigR, "f64br": f64BigR,
	"f64_badcfehg": f64LitR, "f64_little_rev": f64LitR, "f64lr": f64LitR,

	// 8 bit integer
	"u8_lo": u8Lo, "u8_hi": u8Hi,
	"i8_lo": i8Lo, "i8_hi": i8Hi,

	// 16 bit integer
	"u16_ab": u16Big, "u16_big": u16Big, "u16b": u16Big,
	"u16_ba": u16Little, "u16_little": u16Little, "u16l": u16Little,
	"i16_ab": i16Big, "i16_big": i16Big, "i16b": i16Big,
	"i16_ba": i16Little, "i16_little": i16Little, "i16l": i16Little,

	// 32 bit integer
	"u32_abcd": u32Big, "u32_big": u32Big, "u32b": u32Big,
	"u32_dcba": u32Little, "u32_little": u32Little, "u32l": u32Little,
	"u32_cdab": u32BigR, "u32_big_rev": u32BigR, "u32br": u32BigR,
	"u32_badc": u32LitR, "u32_little_rev": u32LitR, "u32lr": u32LitR,
	"i32_abcd": i32Big, "i32_big": i32Big, "i32b": i32Big,
	"i32_dcba": i32Little, "i32_little": i32Little, "i32l": i32Little,
	"i32_cdab": i32BigR, "i32_big_rev": i32BigR, "i32br": i32BigR,
	"i32_badc": i32LitR, "i32_little_rev": i32LitR, "i32lr": i32LitR,

	// 64 bit integer
	"u64_abcdefgh": u64Big, "u64_big": u64Big, "u64b": u64Big,
	"u64_hgfedcba": u64Little, "u64_little": u64Little, "u64l": u64Little,
	"u64_ghefcdab": u64BigR, "u64_big_rev": u64BigR, "u64br": u64BigR,
	"u64_badcfehg": u64LitR, "u64_little_rev": u64LitR, "u64lr": u64LitR,
	"i64_abcdefgh": i64Big, "i64_big": i64Big, "i64b": i64Big,
	"i64_hgfedcba": i64Little, "i64_little": i64Little, "i64l": i64Little,
	"i64_ghefcdab": i64BigR, "i64_big_rev": i64BigR, "i64br": i64BigR,
	"i64_badcfehg": i64LitR, "i64_little_rev": i64LitR, "i64lr": i64LitR,
}

// LookupLayout resolves a layout alias. The match is case-insensitive.
func LookupLayout(alias string) (Layout, bool) {
	l, ok := catalog[strings.ToLower(alias)]
	return l, ok
}

// Aliases returns all layout aliases in sorted order.
func Aliases() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Synonyms returns the sorted aliases that resolve to l.
func Synonyms(l Layout) []string {
	var names []string
	for name, other := range catalog {
		if other == l {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
