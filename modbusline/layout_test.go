package modbusline

import (
	"strings"
	"testing"
)

func TestCatalogSize(t *testing.T) {
	if n := len(Aliases()); n < 80 {
		t.Errorf("catalog has %d aliases, want at least 80", n)
	}

	distinct := map[Layout]bool{}
	for _, alias := range Aliases() {
		l, _ := LookupLayout(alias)
		distinct[l] = true
	}
	if len(distinct) != 32 {
		t.Errorf("catalog has %d distinct layouts, want 32", len(distinct))
	}
}

func TestLookupLayoutCaseInsensitive(t *testing.T) {
	lower, ok := LookupLayout("f32_badc")
	if !ok {
		t.Fatal("f32_badc not found")
	}
	upper, ok := LookupLayout("F32_BADC")
	if !ok {
		t.Fatal("F32_BADC not found")
	}
	if lower != upper {
		t.Errorf("case changes layout: %+v vs %+v", lower, upper)
	}
	if _, ok := LookupLayout("f32_xyz"); ok {
		t.Error("unknown alias resolved")
	}
}

func TestLayoutFields(t *testing.T) {
	tests := []struct {
		alias string
		want  Layout
	}{
		{"u8_hi", Layout{Bits: 8, Kind: Unsigned, Placement: HighByte}},
		{"i16l", Layout{Bits: 16, Kind: Signed, ByteOrder: LittleEndian}},
		{"f32_cdab", Layout{Bits: 32, Kind: Float, WordOrder: ReversedOrder}},
		{"u64lr", Layout{Bits: 64, Kind: Unsigned, ByteOrder: LittleEndian, WordOrder: ReversedOrder}},
		{"i64_abcdefgh", Layout{Bits: 64, Kind: Signed}},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			got, ok := LookupLayout(tt.alias)
			if !ok {
				t.Fatalf("alias %q not found", tt.alias)
			}
			if got != tt.want {
				t.Errorf("LookupLayout(%q) = %+v, want %+v", tt.alias, got, tt.want)
			}
		})
	}
}

func TestSynonymGroups(t *testing.T) {
	l, _ := LookupLayout("u16b")
	got := strings.Join(Synonyms(l), ",")
	if got != "u16_ab,u16_big,u16b" {
		t.Errorf("Synonyms(u16b) = %s", got)
	}

	for _, alias := range Aliases() {
		l, _ := LookupLayout(alias)
		n := len(Synonyms(l))
		if l.Bits == 8 && n != 1 {
			t.Errorf("%s: %d synonyms, want 1", alias, n)
		}
		if l.Bits > 8 && n != 3 {
			t.Errorf("%s: %d synonyms, want 3", alias, n)
		}
	}
}

func TestLayoutString(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"f32_badc", "little endian floating point 32 bit (reversed register order)"},
		{"u16b", "big endian unsigned integer 16 bit"},
		{"i8_lo", "low byte signed integer 8 bit"},
	}
	for _, tt := range tests {
		l, _ := LookupLayout(tt.alias)
		if got := l.String(); got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.alias, got, tt.want)
		}
	}
}
