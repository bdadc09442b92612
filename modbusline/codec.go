package modbusline

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
)

// reversedOrder holds the register permutation applied by ReversedOrder,
// keyed by register count. Registers are swapped within each 32 bit group;
// a 64 bit value is not reversed as a whole.
var reversedOrder = map[int][]int{
	2: {1, 0},
	4: {1, 0, 3, 2},
}

// Encode converts n into registers according to l.
//
// The value's bit pattern is laid out as bytes in the layout's byte order,
// consecutive byte pairs form registers (first byte in the high half), and
// ReversedOrder then permutes the registers. 8 bit values occupy one half
// of a single register; the other half is zero.
func Encode(n Number, l Layout) []uint16 {
	if l.Bits == 8 {
		b := uint16(uint8(n.Bits))
		if l.Placement == HighByte {
			return []uint16{b << 8}
		}
		return []uint16{b}
	}

	size := l.Bits / 8
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n.Bits)
	raw := buf[8-size:]
	if l.ByteOrder == LittleEndian {
		slices.Reverse(raw)
	}

	words := make([]uint16, size/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(raw[2*i:])
	}
	if l.WordOrder == ReversedOrder {
		words = permute(words)
	}
	return words
}

// Decode is the inverse of Encode.
func Decode(words []uint16, l Layout) (Number, error) {
	if len(words) != l.Registers() {
		return Number{}, fmt.Errorf("layout %s needs %d registers, got %d", l, l.Registers(), len(words))
	}

	if l.Bits == 8 {
		w := words[0]
		if l.Placement == HighByte {
			w >>= 8
		}
		return Number{Type: l.Type(), Bits: uint64(uint8(w))}, nil
	}

	if l.WordOrder == ReversedOrder {
		// The permutations are involutions.
		words = permute(words)
	}
	raw := make([]byte, 2*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint16(raw[2*i:], w)
	}
	if l.ByteOrder == LittleEndian {
		slices.Reverse(raw)
	}

	var bits uint64
	for _, b := range raw {
		bits = bits<<8 | uint64(b)
	}
	return Number{Type: l.Type(), Bits: bits}, nil
}

// Pattern returns the bytes Encode produces for l, register by register,
// as letters counting from "a" for the most significant byte of the value.
// f32_badc yields "badc"; the 64 bit reversed layouts swap registers within
// each 32 bit half, so f64_ghefcdab yields "cdabghef". 8 bit layouts have
// no pattern.
func (l Layout) Pattern() string {
	if l.Bits == 8 {
		return ""
	}
	var bits uint64
	for i := 0; i < l.Bits/8; i++ {
		bits = bits<<8 | uint64('a'+i)
	}
	var b strings.Builder
	for _, w := range Encode(Number{Type: l.Type(), Bits: bits}, l) {
		b.WriteByte(byte(w >> 8))
		b.WriteByte(byte(w))
	}
	return b.String()
}

func permute(words []uint16) []uint16 {
	perm, ok := reversedOrder[len(words)]
	if !ok {
		return words
	}
	out := make([]uint16, len(words))
	for i, src := range perm {
		out[i] = words[src]
	}
	return out
}
