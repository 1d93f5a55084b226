package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/chip8"
)

// encoder turns the operands of one instruction into its 16 bit word.
type encoder func(a *Assembler, ops []string, lineNo int) (uint16, error)

var encoders = map[string]encoder{
	"CLS":  fixed(0x00E0),
	"RET":  fixed(0x00EE),
	"SYS":  addressOp("SYS", 0x0000),
	"CALL": addressOp("CALL", 0x2000),
	"JP":   encodeJP,
	"SE":   compareOp("SE", 0x3000, 0x5000),
	"SNE":  compareOp("SNE", 0x4000, 0x9000),
	"LD":   encodeLD,
	"ADD":  encodeADD,
	"OR":   registerPairOp(0x8001),
	"AND":  registerPairOp(0x8002),
	"XOR":  registerPairOp(0x8003),
	"SUB":  registerPairOp(0x8005),
	"SUBN": registerPairOp(0x8007),
	"SHR":  shiftOp(0x8006),
	"SHL":  shiftOp(0x800E),
	"RND":  encodeRND,
	"DRW":  encodeDRW,
	"SKP":  keyOp(0xE09E),
	"SKNP": keyOp(0xE0A1),
}

const (
	instructionSize = 2
	addressLimit    = chip8.MemorySize
)

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates source into a ROM image loaded at 0x200. The source
// map is keyed by absolute address and holds 1-based line numbers.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(chip8.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address >= addressLimit {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			if isReserved(key) {
				return fmt.Errorf("label '%s' on line %d shadows a register name", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		var length uint32
		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, lineNo)
			if err != nil {
				return err
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
			continue

		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			length = uint32(len(p.operands))

		case ".WORD":
			if len(p.operands) != 1 {
				return fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			length = instructionSize

		default:
			if _, ok := encoders[p.mnemonic]; !ok {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			length = instructionSize
		}

		if address+length > addressLimit {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		mnemonic := p.mnemonic
		ops := p.operands
		address := chip8.ProgramStart + uint16(len(program))

		if mnemonic == ".ORG" {
			target, err := parseOrigin(ops, lineNo)
			if err != nil {
				return nil, nil, err
			}
			padding := int(target) - int(address)
			if padding < 0 {
				return nil, nil, fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			if padding > 0 {
				program = append(program, make([]byte, padding)...)
			}
			continue
		}

		sourceMap[address] = lineNo

		if mnemonic == ".BYTE" {
			for _, op := range ops {
				val, err := a.parseValue(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue
		}

		if mnemonic == ".WORD" {
			val, err := a.parseValue(ops[0], 0xFFFF, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(val>>8), byte(val))
			continue
		}

		encode, ok := encoders[mnemonic]
		if !ok {
			return nil, nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
		}
		word, err := encode(a, ops, lineNo)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, byte(word>>8), byte(word))
	}

	return program, sourceMap, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// normalizeInstructionText turns operand separators into whitespace. "[I]" is
// kept as a single token.
func normalizeInstructionText(line string) string {
	replacer := strings.NewReplacer(",", " ", "[ ", "[", " ]", "]")
	return replacer.Replace(line)
}

func parseOrigin(ops []string, lineNo int) (uint32, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := strconv.ParseUint(ops[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, ops[0])
	}
	if target < uint64(chip8.ProgramStart) || target >= addressLimit {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, ops[0])
	}
	return uint32(target), nil
}

// parseRegister accepts V0..VF in either case.
func parseRegister(token string, lineNo int) (uint16, error) {
	t := strings.ToUpper(token)
	if len(t) == 2 && t[0] == 'V' {
		if n, err := strconv.ParseUint(t[1:], 16, 8); err == nil {
			return uint16(n), nil
		}
	}
	return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
}

func isRegister(token string) bool {
	_, err := parseRegister(token, 0)
	return err == nil
}

// parseValue resolves a numeric literal or a label and checks it against limit.
func (a *Assembler) parseValue(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("value out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' does not fit on line %d", token, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func expectOperands(mnemonic string, ops []string, n int, lineNo int) error {
	if len(ops) != n {
		return fmt.Errorf("%s expects %d operands on line %d", mnemonic, n, lineNo)
	}
	return nil
}

func fixed(word uint16) encoder {
	return func(a *Assembler, ops []string, lineNo int) (uint16, error) {
		if len(ops) != 0 {
			return 0, fmt.Errorf("unexpected operands on line %d", lineNo)
		}
		return word, nil
	}
}

func addressOp(mnemonic string, base uint16) encoder {
	return func(a *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands(mnemonic, ops, 1, lineNo); err != nil {
			return 0, err
		}
		nnn, err := a.parseValue(ops[0], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return base | nnn, nil
	}
}

// JP addr or JP V0, addr.
func encodeJP(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if len(ops) == 2 {
		if !strings.EqualFold(ops[0], "V0") {
			return 0, fmt.Errorf("JP with offset only accepts V0 on line %d", lineNo)
		}
		nnn, err := a.parseValue(ops[1], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0xB000 | nnn, nil
	}
	return addressOp("JP", 0x1000)(a, ops, lineNo)
}

// compareOp encodes "Vx, byte" with immOp and "Vx, Vy" with regOp.
func compareOp(mnemonic string, immOp, regOp uint16) encoder {
	return func(a *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands(mnemonic, ops, 2, lineNo); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		if isRegister(ops[1]) {
			y, _ := parseRegister(ops[1], lineNo)
			return regOp | x<<8 | y<<4, nil
		}
		nn, err := a.parseValue(ops[1], 0xFF, lineNo)
		if err != nil {
			return 0, err
		}
		return immOp | x<<8 | nn, nil
	}
}

func registerPairOp(base uint16) encoder {
	return func(a *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands("register operation", ops, 2, lineNo); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		y, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return base | x<<8 | y<<4, nil
	}
}

// shiftOp accepts "Vx" or "Vx, Vy". Vy is encoded but ignored at run time.
func shiftOp(base uint16) encoder {
	return func(a *Assembler, ops []string, lineNo int) (uint16, error) {
		if len(ops) == 1 {
			x, err := parseRegister(ops[0], lineNo)
			if err != nil {
				return 0, err
			}
			return base | x<<8, nil
		}
		return registerPairOp(base)(a, ops, lineNo)
	}
}

func keyOp(base uint16) encoder {
	return func(a *Assembler, ops []string, lineNo int) (uint16, error) {
		if err := expectOperands("key skip", ops, 1, lineNo); err != nil {
			return 0, err
		}
		x, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return 0, err
		}
		return base | x<<8, nil
	}
}

func encodeLD(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands("LD", ops, 2, lineNo); err != nil {
		return 0, err
	}
	dst, src := strings.ToUpper(ops[0]), strings.ToUpper(ops[1])

	switch dst {
	case "I":
		nnn, err := a.parseValue(ops[1], 0xFFF, lineNo)
		if err != nil {
			return 0, err
		}
		return 0xA000 | nnn, nil
	case "DT", "ST", "F", "B", "[I]":
		x, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		low := map[string]uint16{"DT": 0x15, "ST": 0x18, "F": 0x29, "B": 0x33, "[I]": 0x55}[dst]
		return 0xF000 | x<<8 | low, nil
	}

	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	switch src {
	case "DT":
		return 0xF007 | x<<8, nil
	case "K":
		return 0xF00A | x<<8, nil
	case "[I]":
		return 0xF065 | x<<8, nil
	}
	if isRegister(src) {
		y, _ := parseRegister(src, lineNo)
		return 0x8000 | x<<8 | y<<4, nil
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0x6000 | x<<8 | nn, nil
}

func encodeADD(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands("ADD", ops, 2, lineNo); err != nil {
		return 0, err
	}
	if strings.EqualFold(ops[0], "I") {
		x, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return 0, err
		}
		return 0xF01E | x<<8, nil
	}
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	if isRegister(ops[1]) {
		y, _ := parseRegister(ops[1], lineNo)
		return 0x8004 | x<<8 | y<<4, nil
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0x7000 | x<<8 | nn, nil
}

func encodeRND(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands("RND", ops, 2, lineNo); err != nil {
		return 0, err
	}
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	nn, err := a.parseValue(ops[1], 0xFF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0xC000 | x<<8 | nn, nil
}

func encodeDRW(a *Assembler, ops []string, lineNo int) (uint16, error) {
	if err := expectOperands("DRW", ops, 3, lineNo); err != nil {
		return 0, err
	}
	x, err := parseRegister(ops[0], lineNo)
	if err != nil {
		return 0, err
	}
	y, err := parseRegister(ops[1], lineNo)
	if err != nil {
		return 0, err
	}
	n, err := a.parseValue(ops[2], 0xF, lineNo)
	if err != nil {
		return 0, err
	}
	return 0xD000 | x<<8 | y<<4 | n, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

// isReserved reports operand keywords that cannot double as labels.
func isReserved(label string) bool {
	switch label {
	case "I", "DT", "ST", "K", "F", "B":
		return true
	}
	return isRegister(label)
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
