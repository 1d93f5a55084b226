package devices

import (
	"sync"

	"gochip8/pkg/chip8"
)

// MockInput replays a fixed script of key presses. IsPressed reports the
// keys in Held; GetInput returns the next scripted key, then Fallback once
// the script is exhausted.
type MockInput struct {
	Held     [16]bool
	Script   []uint8
	Fallback uint8

	// Waits counts GetInput calls.
	Waits int
}

func NewMockInput(script ...uint8) *MockInput {
	return &MockInput{Script: script}
}

func (in *MockInput) IsPressed(key uint8) bool {
	return in.Held[key&0xF]
}

func (in *MockInput) GetInput() uint8 {
	in.Waits++
	if len(in.Script) == 0 {
		return in.Fallback & 0xF
	}
	key := in.Script[0]
	in.Script = in.Script[1:]
	return key & 0xF
}

// Headless is a Display that keeps the most recent frame in memory. It is
// safe to read Frame from another goroutine.
type Headless struct {
	mu     sync.Mutex
	frame  [chip8.DisplaySize]bool
	frames int
}

func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) UpdateDisplay(m *chip8.Machine) {
	bitmap := m.Display()
	h.mu.Lock()
	h.frame = bitmap
	h.frames++
	h.mu.Unlock()
}

// Frame returns a copy of the last rendered bitmap.
func (h *Headless) Frame() [chip8.DisplaySize]bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// Frames is the number of UpdateDisplay calls received.
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Lit counts the lit pixels of the last frame.
func (h *Headless) Lit() int {
	frame := h.Frame()
	n := 0
	for _, on := range frame {
		if on {
			n++
		}
	}
	return n
}
