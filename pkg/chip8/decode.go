package chip8

// Instruction is a decoded instruction word split into its fields.
type Instruction struct {
	Opcode uint16
	// Nibbles are numbered from the most significant, so Nibbles[0] selects
	// the instruction family.
	Nibbles [4]uint8
	NN      byte
	NNN     uint16
}

func Decode(op uint16) Instruction {
	return Instruction{
		Opcode: op,
		Nibbles: [4]uint8{
			uint8(op>>12) & 0xF,
			opX(op),
			opY(op),
			opN(op),
		},
		NN:  opNN(op),
		NNN: opNNN(op),
	}
}

// Family returns the most significant nibble.
func (ins Instruction) Family() uint8 {
	return ins.Nibbles[0]
}

// Dispatch routes one instruction word to its handler and returns the
// cycles it consumed. PC must already point past the instruction.
func Dispatch(m *Machine, in Input, op uint16) (int, error) {
	ins := Decode(op)

	switch ins.Family() {
	case 0x0:
		switch op {
		case 0x00E0:
			return Execute00E0(m), nil
		case 0x00EE:
			return Execute00EE(m)
		}

	case 0x1:
		return Execute1NNN(m, op), nil

	case 0x2:
		return Execute2NNN(m, op)

	case 0x3:
		return Execute3XNN(m, op), nil

	case 0x4:
		return Execute4XNN(m, op), nil

	case 0x5:
		if ins.Nibbles[3] == 0x0 {
			return Execute5XY0(m, op), nil
		}

	case 0x6:
		return Execute6XNN(m, op), nil

	case 0x7:
		return Execute7XNN(m, op), nil

	case 0x8:
		switch ins.Nibbles[3] {
		case 0x0:
			return Execute8XY0(m, op), nil
		case 0x1:
			return Execute8XY1(m, op), nil
		case 0x2:
			return Execute8XY2(m, op), nil
		case 0x3:
			return Execute8XY3(m, op), nil
		case 0x4:
			return Execute8XY4(m, op), nil
		case 0x5:
			return Execute8XY5(m, op), nil
		case 0x6:
			return Execute8XY6(m, op), nil
		case 0x7:
			return Execute8XY7(m, op), nil
		case 0xE:
			return Execute8XYE(m, op), nil
		}

	case 0x9:
		if ins.Nibbles[3] == 0x0 {
			return Execute9XY0(m, op), nil
		}

	case 0xA:
		return ExecuteANNN(m, op), nil

	case 0xB:
		return ExecuteBNNN(m, op), nil

	case 0xC:
		return ExecuteCXNN(m, op), nil

	case 0xD:
		return ExecuteDXYN(m, op), nil

	case 0xE:
		switch ins.NN {
		case 0x9E:
			return ExecuteEX9E(m, in, op), nil
		case 0xA1:
			return ExecuteEXA1(m, in, op), nil
		}

	case 0xF:
		switch ins.NN {
		case 0x07:
			return ExecuteFX07(m, op), nil
		case 0x0A:
			return ExecuteFX0A(m, in, op), nil
		case 0x15:
			return ExecuteFX15(m, op), nil
		case 0x18:
			return ExecuteFX18(m, op), nil
		case 0x1E:
			return ExecuteFX1E(m, op), nil
		case 0x29:
			return ExecuteFX29(m, op), nil
		case 0x33:
			return ExecuteFX33(m, op), nil
		case 0x55:
			return ExecuteFX55(m, op), nil
		case 0x65:
			return ExecuteFX65(m, op), nil
		}
	}

	return 0, &UnimplementedOpcodeError{Opcode: op}
}

// drawsToScreen reports whether op can change the display bitmap.
func drawsToScreen(op uint16) bool {
	return op == 0x00E0 || op>>12 == 0xD
}
