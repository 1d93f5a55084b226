package asm

import (
	"fmt"

	"gochip8/pkg/chip8"
)

// Disassemble renders one instruction word in the syntax Assemble accepts.
// Words that decode to no instruction come back as a .WORD directive, so the
// output always reassembles to the same word.
func Disassemble(word uint16) string {
	ins := chip8.Decode(word)
	x, y, n := ins.Nibbles[1], ins.Nibbles[2], ins.Nibbles[3]

	switch ins.Family() {
	case 0x0:
		switch word {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
		return fmt.Sprintf("SYS 0x%03X", ins.NNN)
	case 0x1:
		return fmt.Sprintf("JP 0x%03X", ins.NNN)
	case 0x2:
		return fmt.Sprintf("CALL 0x%03X", ins.NNN)
	case 0x3:
		return fmt.Sprintf("SE V%X, 0x%02X", x, ins.NN)
	case 0x4:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, ins.NN)
	case 0x5:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, 0x%02X", x, ins.NN)
	case 0x7:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, ins.NN)
	case 0x8:
		if m, ok := aluMnemonics[n]; ok {
			return fmt.Sprintf("%s V%X, V%X", m, x, y)
		}
	case 0x9:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, 0x%03X", ins.NNN)
	case 0xB:
		return fmt.Sprintf("JP V0, 0x%03X", ins.NNN)
	case 0xC:
		return fmt.Sprintf("RND V%X, 0x%02X", x, ins.NN)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, n)
	case 0xE:
		switch ins.NN {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if format, ok := miscFormats[ins.NN]; ok {
			return fmt.Sprintf(format, x)
		}
	}

	return fmt.Sprintf(".WORD 0x%04X", word)
}

var aluMnemonics = map[uint8]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var miscFormats = map[byte]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}

// Line is one row of a ROM listing.
type Line struct {
	Address uint16
	Word    uint16
	Text    string
}

func (l Line) String() string {
	return fmt.Sprintf("0x%03X  %04X  %s", l.Address, l.Word, l.Text)
}

// DisassembleROM walks rom two bytes at a time from 0x200. A trailing odd
// byte is listed as .BYTE.
func DisassembleROM(rom []byte) []Line {
	lines := make([]Line, 0, len(rom)/2+1)
	for i := 0; i < len(rom); i += 2 {
		addr := chip8.ProgramStart + uint16(i)
		if i+1 == len(rom) {
			lines = append(lines, Line{
				Address: addr,
				Word:    uint16(rom[i]),
				Text:    fmt.Sprintf(".BYTE 0x%02X", rom[i]),
			})
			break
		}
		word := uint16(rom[i])<<8 | uint16(rom[i+1])
		lines = append(lines, Line{Address: addr, Word: word, Text: Disassemble(word)})
	}
	return lines
}
