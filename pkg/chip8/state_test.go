package chip8

import (
	"errors"
	"testing"
)

func TestNewMachineDefaults(t *testing.T) {
	m := NewMachine()

	if m.PC() != 0x200 {
		t.Errorf("PC: expected 0x200, got 0x%03X", m.PC())
	}
	if m.StackPointer() != -2 {
		t.Errorf("StackPointer: expected -2, got %d", m.StackPointer())
	}
	if m.I() != 0 || m.DelayTimer() != 0 || m.SoundTimer() != 0 {
		t.Errorf("expected zeroed I and timers, got I=0x%03X DT=%d ST=%d", m.I(), m.DelayTimer(), m.SoundTimer())
	}
	for i, on := range m.Display() {
		if on {
			t.Fatalf("display cell %d: expected false", i)
		}
	}
	for i, b := range fontset {
		if got := m.Memory(FontAddress + uint16(i)); got != b {
			t.Errorf("font byte %d: expected 0x%02X, got 0x%02X", i, b, got)
		}
	}
}

func TestNewMachineSeeded(t *testing.T) {
	mem := make([]byte, MemorySize)
	for i := range mem {
		mem[i] = 0xAA
	}
	var regs [RegisterCount]byte
	regs[3] = 0x42

	m := NewMachine(
		WithMemory(mem),
		WithRegisters(regs),
		WithProgramCounter(0x300),
		WithIndex(0x123),
		WithTimers(5, 6),
	)

	if m.V(3) != 0x42 {
		t.Errorf("V3: expected 0x42, got 0x%02X", m.V(3))
	}
	if m.PC() != 0x300 || m.I() != 0x123 {
		t.Errorf("PC/I: expected 0x300/0x123, got 0x%03X/0x%03X", m.PC(), m.I())
	}
	if m.DelayTimer() != 5 || m.SoundTimer() != 6 {
		t.Errorf("timers: expected 5/6, got %d/%d", m.DelayTimer(), m.SoundTimer())
	}
	// The font overrides seeded memory, the rest is kept.
	if m.Memory(0x000) != 0xF0 {
		t.Errorf("memory[0x000]: expected font byte 0xF0, got 0x%02X", m.Memory(0x000))
	}
	if m.Memory(0x050) != 0xAA {
		t.Errorf("memory[0x050]: expected seeded 0xAA, got 0x%02X", m.Memory(0x050))
	}
}

func TestStackPushPop(t *testing.T) {
	m := NewMachine()

	before := m.StackPointer()
	if err := m.PushStack(0x2AB); err != nil {
		t.Fatalf("PushStack: %v", err)
	}
	if m.StackDepth() != 1 {
		t.Errorf("StackDepth: expected 1, got %d", m.StackDepth())
	}
	peek, err := m.PeekStack()
	if err != nil || peek != 0x2AB {
		t.Errorf("PeekStack: expected 0x2AB, got 0x%03X (%v)", peek, err)
	}
	got, err := m.PopStack()
	if err != nil {
		t.Fatalf("PopStack: %v", err)
	}
	if got != 0x2AB {
		t.Errorf("PopStack: expected 0x2AB, got 0x%03X", got)
	}
	if m.StackPointer() != before {
		t.Errorf("StackPointer: expected %d after pop, got %d", before, m.StackPointer())
	}
}

func TestStackIsMemoryMapped(t *testing.T) {
	m := NewMachine()
	_ = m.PushStack(0x0ABC)

	if m.Memory(StackAddress) != 0x0A || m.Memory(StackAddress+1) != 0xBC {
		t.Errorf("stack bytes: expected 0A BC, got %02X %02X", m.Memory(StackAddress), m.Memory(StackAddress+1))
	}
}

func TestStackOrder(t *testing.T) {
	m := NewMachine()
	for _, a := range []uint16{0x202, 0x304, 0x406} {
		if err := m.PushStack(a); err != nil {
			t.Fatalf("PushStack(0x%03X): %v", a, err)
		}
	}
	for _, want := range []uint16{0x406, 0x304, 0x202} {
		got, err := m.PopStack()
		if err != nil || got != want {
			t.Errorf("PopStack: expected 0x%03X, got 0x%03X (%v)", want, got, err)
		}
	}
}

func TestStackEmpty(t *testing.T) {
	m := NewMachine()

	if _, err := m.PopStack(); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("PopStack on empty: expected ErrEmptyStack, got %v", err)
	}
	if _, err := m.PeekStack(); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("PeekStack on empty: expected ErrEmptyStack, got %v", err)
	}
	if m.StackPointer() != -2 {
		t.Errorf("StackPointer: expected -2, got %d", m.StackPointer())
	}
}

func TestStackOverflow(t *testing.T) {
	m := NewMachine()
	for i := 0; i < StackLevels; i++ {
		if err := m.PushStack(uint16(0x200 + i*2)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := m.PushStack(0x300); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("17th push: expected ErrStackOverflow, got %v", err)
	}
	if m.StackDepth() != StackLevels {
		t.Errorf("StackDepth: expected %d, got %d", StackLevels, m.StackDepth())
	}
}

func TestLoadROM(t *testing.T) {
	m := NewMachine()
	rom := []byte{0x00, 0xE0, 0x12, 0x00}
	if err := m.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	for i, b := range rom {
		if got := m.Memory(ProgramStart + uint16(i)); got != b {
			t.Errorf("memory[0x%03X]: expected 0x%02X, got 0x%02X", int(ProgramStart)+i, b, got)
		}
	}
	if m.Fetch() != 0x00E0 {
		t.Errorf("Fetch: expected 0x00E0, got 0x%04X", m.Fetch())
	}
}

func TestLoadROMTooLarge(t *testing.T) {
	m := NewMachine()
	rom := make([]byte, MemorySize-int(ProgramStart)+1)
	if err := m.LoadROM(rom); !errors.Is(err, ErrROMTooLarge) {
		t.Errorf("LoadROM: expected ErrROMTooLarge, got %v", err)
	}
	if err := m.LoadROM(rom[:len(rom)-1]); err != nil {
		t.Errorf("LoadROM of exactly 3584 bytes: unexpected error %v", err)
	}
}

func TestMemoryWraps(t *testing.T) {
	m := NewMachine()
	m.SetMemory(0x1005, 0x77)
	if m.Memory(0x005) != 0x77 {
		t.Errorf("memory[0x005]: expected 0x77 after write to 0x1005, got 0x%02X", m.Memory(0x005))
	}
}

func TestTickTimers(t *testing.T) {
	m := NewMachine(WithTimers(2, 0))

	m.TickTimers()
	if m.DelayTimer() != 1 || m.SoundTimer() != 0 {
		t.Errorf("after 1 tick: expected DT=1 ST=0, got DT=%d ST=%d", m.DelayTimer(), m.SoundTimer())
	}
	m.TickTimers()
	m.TickTimers()
	if m.DelayTimer() != 0 {
		t.Errorf("DT: expected to stop at 0, got %d", m.DelayTimer())
	}
}

func TestPixelAccessors(t *testing.T) {
	m := NewMachine()
	m.SetPixel(63, 31, true)
	if !m.Pixel(63, 31) {
		t.Errorf("Pixel(63,31): expected true")
	}
	if !m.Display()[DisplaySize-1] {
		t.Errorf("Display: expected last cell lit")
	}
	m.ClearDisplay()
	if m.Pixel(63, 31) {
		t.Errorf("Pixel(63,31): expected false after ClearDisplay")
	}
}

func TestAdvancePC(t *testing.T) {
	m := NewMachine()
	m.AdvancePC(4)
	if m.PC() != 0x204 {
		t.Errorf("PC: expected 0x204, got 0x%03X", m.PC())
	}
	m.AdvancePC(-2)
	if m.PC() != 0x202 {
		t.Errorf("PC: expected 0x202, got 0x%03X", m.PC())
	}
}
