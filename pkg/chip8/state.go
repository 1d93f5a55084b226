package chip8

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gochip8/pkg/grid"
)

const (
	MemorySize    = 4096
	RegisterCount = 16

	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight

	ProgramStart  uint16 = 0x200
	FontAddress   uint16 = 0x000
	FontGlyphSize        = 5

	// StackAddress is the base of the 96 bytes reserved below the display
	// area (0xEA0-0xEFF). Only StackLevels entries are ever used.
	StackAddress uint16 = 0xEA0
	StackLevels         = 16

	RegVF = 0xF

	addressMask  = MemorySize - 1
	emptyStackSP = -2
)

var (
	ErrEmptyStack    = errors.New("call stack is empty")
	ErrStackOverflow = errors.New("call stack overflow")
	ErrROMTooLarge   = errors.New("rom does not fit in memory")
)

// fontset holds the hexadecimal digit glyphs 0-F, five rows each.
var fontset = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Machine holds every piece of mutable emulator state. It performs no
// decoding; handlers in ops.go are the only code that interprets it.
type Machine struct {
	memory  [MemorySize]byte
	v       [RegisterCount]byte
	index   uint16
	pc      uint16
	sp      int16
	display [DisplaySize]bool

	delayTimer byte
	soundTimer byte

	rng *rand.Rand
}

// Option pre-seeds a Machine, mostly for tests.
type Option func(*Machine)

// WithMemory copies mem into memory starting at address 0. The font table is
// loaded afterwards and always wins over seeded bytes in [0x000, 0x050).
func WithMemory(mem []byte) Option {
	return func(m *Machine) {
		copy(m.memory[:], mem)
	}
}

func WithRegisters(v [RegisterCount]byte) Option {
	return func(m *Machine) {
		m.v = v
	}
}

func WithProgramCounter(pc uint16) Option {
	return func(m *Machine) {
		m.pc = pc
	}
}

func WithIndex(i uint16) Option {
	return func(m *Machine) {
		m.index = i
	}
}

func WithTimers(delay, sound byte) Option {
	return func(m *Machine) {
		m.delayTimer = delay
		m.soundTimer = sound
	}
}

// WithRand replaces the random source used by CXNN.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) {
		m.rng = r
	}
}

// NewMachine creates a machine with PC at ProgramStart, an empty stack, a
// blank display and the font table loaded.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		pc: ProgramStart,
		sp: emptyStackSP,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	copy(m.memory[FontAddress:], fontset[:])
	return m
}

// LoadROM copies rom verbatim into memory at ProgramStart.
func (m *Machine) LoadROM(rom []byte) error {
	if len(rom) > MemorySize-int(ProgramStart) {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrROMTooLarge, len(rom), MemorySize-int(ProgramStart))
	}
	copy(m.memory[ProgramStart:], rom)
	return nil
}

// Fetch assembles the big-endian instruction word at PC. PC is not moved.
func (m *Machine) Fetch() uint16 {
	return uint16(m.Memory(m.pc))<<8 | uint16(m.Memory(m.pc+1))
}

func (m *Machine) V(x uint8) byte {
	return m.v[x&0xF]
}

func (m *Machine) SetV(x uint8, value byte) {
	m.v[x&0xF] = value
}

// Registers returns a copy of V0..VF.
func (m *Machine) Registers() [RegisterCount]byte {
	return m.v
}

func (m *Machine) I() uint16 {
	return m.index
}

func (m *Machine) SetI(value uint16) {
	m.index = value
}

func (m *Machine) PC() uint16 {
	return m.pc
}

func (m *Machine) SetPC(value uint16) {
	m.pc = value
}

// AdvancePC moves PC by n bytes; n may be negative.
func (m *Machine) AdvancePC(n int) {
	m.pc = uint16(int(m.pc) + n)
}

func (m *Machine) DelayTimer() byte {
	return m.delayTimer
}

func (m *Machine) SetDelayTimer(value byte) {
	m.delayTimer = value
}

func (m *Machine) SoundTimer() byte {
	return m.soundTimer
}

func (m *Machine) SetSoundTimer(value byte) {
	m.soundTimer = value
}

// TickTimers decrements both timers toward zero.
func (m *Machine) TickTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// Memory reads a byte. Addresses wrap at 4 KiB.
func (m *Machine) Memory(addr uint16) byte {
	return m.memory[addr&addressMask]
}

func (m *Machine) SetMemory(addr uint16, value byte) {
	m.memory[addr&addressMask] = value
}

// MemorySlice returns a copy of n bytes starting at addr.
func (m *Machine) MemorySlice(addr uint16, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.Memory(addr + uint16(i))
	}
	return out
}

// Pixel reports the display cell at (x, y). Callers keep x in [0,64) and
// y in [0,32).
func (m *Machine) Pixel(x, y int) bool {
	return m.display[grid.GetIndex(x, y, DisplayWidth)]
}

func (m *Machine) SetPixel(x, y int, on bool) {
	m.display[grid.GetIndex(x, y, DisplayWidth)] = on
}

func (m *Machine) ClearDisplay() {
	m.display = [DisplaySize]bool{}
}

// Display returns a copy of the bitmap in row-major order.
func (m *Machine) Display() [DisplaySize]bool {
	return m.display
}

// StackPointer is the byte offset of the top entry inside the stack region,
// or -2 when the stack is empty.
func (m *Machine) StackPointer() int16 {
	return m.sp
}

// StackDepth is the number of pending return addresses.
func (m *Machine) StackDepth() int {
	return int(m.sp-emptyStackSP) / 2
}

func (m *Machine) PushStack(addr uint16) error {
	if m.StackDepth() >= StackLevels {
		return fmt.Errorf("%w: push of 0x%03X at depth %d", ErrStackOverflow, addr, StackLevels)
	}
	m.sp += 2
	base := StackAddress + uint16(m.sp)
	m.memory[base] = byte(addr >> 8)
	m.memory[base+1] = byte(addr)
	return nil
}

func (m *Machine) PopStack() (uint16, error) {
	addr, err := m.PeekStack()
	if err != nil {
		return 0, err
	}
	m.sp -= 2
	return addr, nil
}

func (m *Machine) PeekStack() (uint16, error) {
	if m.sp < 0 {
		return 0, ErrEmptyStack
	}
	base := StackAddress + uint16(m.sp)
	return uint16(m.memory[base])<<8 | uint16(m.memory[base+1]), nil
}

func (m *Machine) randomByte() byte {
	return byte(m.rng.UintN(256))
}
