package asm

import (
	"reflect"
	"testing"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		word uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x0123, "SYS 0x123"},
		{0x12A0, "JP 0x2A0"},
		{0x2300, "CALL 0x300"},
		{0x3142, "SE V1, 0x42"},
		{0x4142, "SNE V1, 0x42"},
		{0x5120, "SE V1, V2"},
		{0x63FE, "LD V3, 0xFE"},
		{0x7301, "ADD V3, 0x01"},
		{0x8120, "LD V1, V2"},
		{0x8124, "ADD V1, V2"},
		{0x8106, "SHR V1, V0"},
		{0x812E, "SHL V1, V2"},
		{0x9120, "SNE V1, V2"},
		{0xA500, "LD I, 0x500"},
		{0xB300, "JP V0, 0x300"},
		{0xC50F, "RND V5, 0x0F"},
		{0xD015, "DRW V0, V1, 5"},
		{0xE29E, "SKP V2"},
		{0xE2A1, "SKNP V2"},
		{0xF407, "LD V4, DT"},
		{0xF40A, "LD V4, K"},
		{0xF415, "LD DT, V4"},
		{0xF418, "LD ST, V4"},
		{0xF41E, "ADD I, V4"},
		{0xF429, "LD F, V4"},
		{0xF433, "LD B, V4"},
		{0xF455, "LD [I], V4"},
		{0xF465, "LD V4, [I]"},
		{0x5121, ".WORD 0x5121"},
		{0x8008, ".WORD 0x8008"},
		{0xE000, ".WORD 0xE000"},
		{0xF0FF, ".WORD 0xF0FF"},
	}

	for _, tc := range tests {
		if got := Disassemble(tc.word); got != tc.want {
			t.Errorf("Disassemble(0x%04X) = %q; want %q", tc.word, got, tc.want)
		}
	}
}

// TestDisassembleReassembles checks that every possible word survives a trip
// through the disassembler and back.
func TestDisassembleReassembles(t *testing.T) {
	for w := 0; w <= 0xFFFF; w++ {
		word := uint16(w)
		text := Disassemble(word)
		got, _, err := Assemble(text)
		if err != nil {
			t.Fatalf("Assemble(%q) for 0x%04X: %v", text, word, err)
		}
		if want := encodeWords(word); !reflect.DeepEqual(got, want) {
			t.Fatalf("0x%04X -> %q -> % X", word, text, got)
		}
	}
}

func TestDisassembleROM(t *testing.T) {
	lines := DisassembleROM([]byte{0x00, 0xE0, 0xA2, 0x34, 0x7F})

	want := []Line{
		{Address: 0x200, Word: 0x00E0, Text: "CLS"},
		{Address: 0x202, Word: 0xA234, Text: "LD I, 0x234"},
		{Address: 0x204, Word: 0x007F, Text: ".BYTE 0x7F"},
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("DisassembleROM = %+v; want %+v", lines, want)
	}
	if got := lines[1].String(); got != "0x202  A234  LD I, 0x234" {
		t.Errorf("Line.String() = %q", got)
	}
}
