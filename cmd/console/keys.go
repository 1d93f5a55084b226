package main

import (
	"strings"
	"time"
	"unicode"

	"gochip8/pkg/chip8"
	"gochip8/pkg/devices"
	"gochip8/pkg/grid"
)

// keyLayout maps the keyboard characters 1234/qwer/asdf/zxcv onto the hex
// keypad rows 123C/456D/789E/A0BF.
const keyLayout = "1234qwerasdfzxcv"

var keypadOrder = [16]uint8{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

func keyFor(r rune) (uint8, bool) {
	i := strings.IndexRune(keyLayout, unicode.ToLower(r))
	if i < 0 {
		return 0, false
	}
	return keypadOrder[i], true
}

// holdDuration is how long a key counts as held after a press. Terminals
// report presses and auto-repeats but never releases.
const holdDuration = 150 * time.Millisecond

// heldKeys turns press-only terminal input into press/release pairs on a
// KeyLatch.
type heldKeys struct {
	latch   *devices.KeyLatch
	expires [16]time.Time
}

func (h *heldKeys) press(key uint8, now time.Time) {
	h.latch.Press(key)
	h.expires[key&0xF] = now.Add(holdDuration)
}

// expire releases every key whose hold has run out.
func (h *heldKeys) expire(now time.Time) {
	for key, at := range h.expires {
		if !at.IsZero() && !now.Before(at) {
			h.latch.Release(uint8(key))
			h.expires[key] = time.Time{}
		}
	}
}

// halfBlock packs two vertically adjacent pixels into one character cell.
func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}

// renderRows draws the bitmap as DisplayHeight/2 lines of half blocks.
func renderRows(frame [chip8.DisplaySize]bool) []string {
	rows := make([]string, 0, chip8.DisplayHeight/2)
	var b strings.Builder
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		b.Reset()
		for x := 0; x < chip8.DisplayWidth; x++ {
			top := frame[grid.GetIndex(x, y, chip8.DisplayWidth)]
			bottom := frame[grid.GetIndex(x, y+1, chip8.DisplayWidth)]
			b.WriteRune(halfBlock(top, bottom))
		}
		rows = append(rows, b.String())
	}
	return rows
}
