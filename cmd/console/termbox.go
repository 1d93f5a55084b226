package main

import (
	"time"

	"github.com/nsf/termbox-go"

	"gochip8/pkg/chip8"
	"gochip8/pkg/devices"
)

const frameInterval = time.Second / 60

// runTermbox renders the session into a termbox screen until Esc or Ctrl-C
// is pressed or the program faults.
func runTermbox(s *devices.Session) error {
	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	held := &heldKeys{latch: s.Keys}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch {
			case ev.Type == termbox.EventError:
				return ev.Err
			case ev.Type != termbox.EventKey:
			case ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC:
				return nil
			default:
				if key, ok := keyFor(ev.Ch); ok {
					held.press(key, time.Now())
				}
			}

		case now := <-ticker.C:
			held.expire(now)
			drawTermbox(s.Screen.Frame(), statusLine(s))
			if err := termbox.Flush(); err != nil {
				return err
			}

		case <-s.Done():
			drawTermbox(s.Screen.Frame(), statusLine(s))
			termbox.Flush()
			// Leave the final frame up until a key is pressed.
			for ev := range events {
				if ev.Type == termbox.EventKey || ev.Type == termbox.EventError {
					return nil
				}
			}
		}
	}
}

func drawTermbox(frame [chip8.DisplaySize]bool, status string) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	rows := renderRows(frame)
	for y, row := range rows {
		for x, r := range []rune(row) {
			termbox.SetCell(x, y, r, termbox.ColorGreen, termbox.ColorDefault)
		}
	}
	for i, r := range []rune(status) {
		termbox.SetCell(i, len(rows), r, termbox.ColorDefault, termbox.ColorDefault)
	}
}
