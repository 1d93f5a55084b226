package chip8

// Input is the keypad capability. Keys are the hexadecimal codes 0x0-0xF.
type Input interface {
	// IsPressed polls a key without blocking.
	IsPressed(key uint8) bool
	// GetInput blocks until the next key press and returns its code.
	GetInput() uint8
}

// Display renders the machine's bitmap. It is called synchronously from the
// frame driver after instructions that can change the screen.
type Display interface {
	UpdateDisplay(m *Machine)
}

// Pacer receives the cycle cost of each executed instruction so the host can
// keep wall-clock time. Blocking steps are never reported.
type Pacer interface {
	Pace(cycles int)
}
