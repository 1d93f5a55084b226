package chip8

import "gochip8/pkg/grid"

const (
	// DefaultCycles is the cost of every instruction except FX0A.
	DefaultCycles = 1
	// Blocking is returned by FX0A. The wait already happened inside the
	// handler, so the pacer must not be charged for it.
	Blocking = -1

	spriteWidth = 8
)

func opX(op uint16) uint8    { return uint8(op>>8) & 0xF }
func opY(op uint16) uint8    { return uint8(op>>4) & 0xF }
func opN(op uint16) uint8    { return uint8(op) & 0xF }
func opNN(op uint16) byte    { return byte(op) }
func opNNN(op uint16) uint16 { return op & 0x0FFF }

// setWithFlag stores result in VX and then the flag in VF, so the flag
// survives when X is F.
func setWithFlag(m *Machine, x uint8, result byte, flag bool) {
	m.SetV(x, result)
	if flag {
		m.SetV(RegVF, 1)
	} else {
		m.SetV(RegVF, 0)
	}
}

// Execute00E0 clears the screen.
func Execute00E0(m *Machine) int {
	m.ClearDisplay()
	return DefaultCycles
}

// Execute00EE returns from a subroutine.
func Execute00EE(m *Machine) (int, error) {
	pc, err := m.PopStack()
	if err != nil {
		return 0, err
	}
	m.SetPC(pc)
	return DefaultCycles, nil
}

// Execute1NNN jumps to NNN.
func Execute1NNN(m *Machine, op uint16) int {
	m.SetPC(opNNN(op))
	return DefaultCycles
}

// Execute2NNN calls the subroutine at NNN. PC has already been advanced past
// the call, so that is the address pushed.
func Execute2NNN(m *Machine, op uint16) (int, error) {
	if err := m.PushStack(m.PC()); err != nil {
		return 0, err
	}
	m.SetPC(opNNN(op))
	return DefaultCycles, nil
}

func skipIf(m *Machine, cond bool) int {
	if cond {
		m.AdvancePC(2)
	}
	return DefaultCycles
}

// Execute3XNN skips the next instruction if VX == NN.
func Execute3XNN(m *Machine, op uint16) int {
	return skipIf(m, m.V(opX(op)) == opNN(op))
}

// Execute4XNN skips the next instruction if VX != NN.
func Execute4XNN(m *Machine, op uint16) int {
	return skipIf(m, m.V(opX(op)) != opNN(op))
}

// Execute5XY0 skips the next instruction if VX == VY.
func Execute5XY0(m *Machine, op uint16) int {
	return skipIf(m, m.V(opX(op)) == m.V(opY(op)))
}

// Execute9XY0 skips the next instruction if VX != VY.
func Execute9XY0(m *Machine, op uint16) int {
	return skipIf(m, m.V(opX(op)) != m.V(opY(op)))
}

func Execute6XNN(m *Machine, op uint16) int {
	m.SetV(opX(op), opNN(op))
	return DefaultCycles
}

// Execute7XNN adds NN to VX, wrapping. VF is not touched.
func Execute7XNN(m *Machine, op uint16) int {
	x := opX(op)
	m.SetV(x, m.V(x)+opNN(op))
	return DefaultCycles
}

func Execute8XY0(m *Machine, op uint16) int {
	m.SetV(opX(op), m.V(opY(op)))
	return DefaultCycles
}

func Execute8XY1(m *Machine, op uint16) int {
	x := opX(op)
	m.SetV(x, m.V(x)|m.V(opY(op)))
	return DefaultCycles
}

func Execute8XY2(m *Machine, op uint16) int {
	x := opX(op)
	m.SetV(x, m.V(x)&m.V(opY(op)))
	return DefaultCycles
}

func Execute8XY3(m *Machine, op uint16) int {
	x := opX(op)
	m.SetV(x, m.V(x)^m.V(opY(op)))
	return DefaultCycles
}

// Execute8XY4 adds VY to VX. VF is 1 when the sum exceeds 255.
func Execute8XY4(m *Machine, op uint16) int {
	x := opX(op)
	sum := uint16(m.V(x)) + uint16(m.V(opY(op)))
	setWithFlag(m, x, byte(sum), sum > 0xFF)
	return DefaultCycles
}

// Execute8XY5 sets VX = VX - VY. VF is 1 when there is no borrow (VX >= VY).
func Execute8XY5(m *Machine, op uint16) int {
	x := opX(op)
	vx, vy := m.V(x), m.V(opY(op))
	setWithFlag(m, x, vx-vy, vx >= vy)
	return DefaultCycles
}

// Execute8XY6 shifts VX right by one. VF receives the bit shifted out.
func Execute8XY6(m *Machine, op uint16) int {
	x := opX(op)
	vx := m.V(x)
	setWithFlag(m, x, vx>>1, vx&0x01 != 0)
	return DefaultCycles
}

// Execute8XY7 sets VX = VY - VX. VF is 1 when there is no borrow (VY >= VX).
func Execute8XY7(m *Machine, op uint16) int {
	x := opX(op)
	vx, vy := m.V(x), m.V(opY(op))
	setWithFlag(m, x, vy-vx, vy >= vx)
	return DefaultCycles
}

// Execute8XYE shifts VX left by one. VF receives the bit shifted out.
func Execute8XYE(m *Machine, op uint16) int {
	x := opX(op)
	vx := m.V(x)
	setWithFlag(m, x, vx<<1, vx&0x80 != 0)
	return DefaultCycles
}

func ExecuteANNN(m *Machine, op uint16) int {
	m.SetI(opNNN(op))
	return DefaultCycles
}

// ExecuteBNNN jumps to NNN + V0.
func ExecuteBNNN(m *Machine, op uint16) int {
	m.SetPC(opNNN(op) + uint16(m.V(0)))
	return DefaultCycles
}

// ExecuteCXNN sets VX to a uniformly random byte masked with NN.
func ExecuteCXNN(m *Machine, op uint16) int {
	m.SetV(opX(op), m.randomByte()&opNN(op))
	return DefaultCycles
}

// ExecuteDXYN XORs an N row sprite read from I onto the display at
// (VX mod 64, VY mod 32). Pixels past the right or bottom edge are clipped.
// VF is 1 if any lit pixel was turned off.
func ExecuteDXYN(m *Machine, op uint16) int {
	originX := int(m.V(opX(op))) % DisplayWidth
	originY := int(m.V(opY(op))) % DisplayHeight
	height := int(opN(op))

	collision := false
	for row := 0; row < height; row++ {
		y := originY + row
		if !grid.Contains(originX, y, DisplayWidth, DisplayHeight) {
			break
		}
		bits := m.Memory(m.I() + uint16(row))
		for col := 0; col < spriteWidth; col++ {
			x := originX + col
			if !grid.Contains(x, y, DisplayWidth, DisplayHeight) {
				break
			}
			if bits&(0x80>>col) == 0 {
				continue
			}
			lit := m.Pixel(x, y)
			if lit {
				collision = true
			}
			m.SetPixel(x, y, !lit)
		}
	}

	if collision {
		m.SetV(RegVF, 1)
	} else {
		m.SetV(RegVF, 0)
	}
	return DefaultCycles
}

// ExecuteEX9E skips the next instruction if the key in VX is pressed.
func ExecuteEX9E(m *Machine, in Input, op uint16) int {
	return skipIf(m, in.IsPressed(m.V(opX(op))&0xF))
}

// ExecuteEXA1 skips the next instruction if the key in VX is not pressed.
func ExecuteEXA1(m *Machine, in Input, op uint16) int {
	return skipIf(m, !in.IsPressed(m.V(opX(op))&0xF))
}

func ExecuteFX07(m *Machine, op uint16) int {
	m.SetV(opX(op), m.DelayTimer())
	return DefaultCycles
}

// ExecuteFX0A waits for a key press and stores it in VX.
func ExecuteFX0A(m *Machine, in Input, op uint16) int {
	m.SetV(opX(op), in.GetInput()&0xF)
	return Blocking
}

func ExecuteFX15(m *Machine, op uint16) int {
	m.SetDelayTimer(m.V(opX(op)))
	return DefaultCycles
}

func ExecuteFX18(m *Machine, op uint16) int {
	m.SetSoundTimer(m.V(opX(op)))
	return DefaultCycles
}

// ExecuteFX1E adds VX to I. VF is left alone.
func ExecuteFX1E(m *Machine, op uint16) int {
	m.SetI(m.I() + uint16(m.V(opX(op))))
	return DefaultCycles
}

// ExecuteFX29 points I at the font glyph for the low nibble of VX.
func ExecuteFX29(m *Machine, op uint16) int {
	digit := uint16(m.V(opX(op)) & 0xF)
	m.SetI(FontAddress + digit*FontGlyphSize)
	return DefaultCycles
}

// ExecuteFX33 stores the decimal digits of VX at I, I+1 and I+2.
func ExecuteFX33(m *Machine, op uint16) int {
	vx := m.V(opX(op))
	i := m.I()
	m.SetMemory(i, vx/100)
	m.SetMemory(i+1, (vx/10)%10)
	m.SetMemory(i+2, vx%10)
	return DefaultCycles
}

// ExecuteFX55 stores V0..VX at I and leaves I just past the written range.
func ExecuteFX55(m *Machine, op uint16) int {
	x := opX(op)
	i := m.I()
	for r := uint8(0); r <= x; r++ {
		m.SetMemory(i+uint16(r), m.V(r))
	}
	m.SetI(i + uint16(x) + 1)
	return DefaultCycles
}

// ExecuteFX65 loads V0..VX from I and leaves I just past the read range.
func ExecuteFX65(m *Machine, op uint16) int {
	x := opX(op)
	i := m.I()
	for r := uint8(0); r <= x; r++ {
		m.SetV(r, m.Memory(i+uint16(r)))
	}
	m.SetI(i + uint16(x) + 1)
	return DefaultCycles
}
