package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/term"

	"gochip8/pkg/devices"
)

const (
	ansiHome       = "\x1b[H"
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
	ansiGreen      = "\x1b[32m"
	ansiReset      = "\x1b[0m"

	keyEsc   = 0x1B
	keyCtrlC = 0x03
)

// runRaw puts the controlling terminal into raw mode with pkg/term and draws
// frames with plain ANSI escapes. It needs no terminfo database.
func runRaw(s *devices.Session, tty string, out io.Writer) error {
	t, err := term.Open(tty, term.RawMode)
	if err != nil {
		return fmt.Errorf("opening %s: %w", tty, err)
	}
	defer t.Close()
	defer t.Restore()

	fmt.Fprint(out, ansiClear+ansiHideCursor)
	defer fmt.Fprint(out, ansiReset+ansiShowCursor+"\r\n")

	input := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := t.Read(buf)
			if err != nil {
				close(input)
				return
			}
			if n == 1 {
				input <- buf[0]
			}
		}
	}()

	held := &heldKeys{latch: s.Keys}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-input:
			if !ok || b == keyEsc || b == keyCtrlC {
				return nil
			}
			if key, ok := keyFor(rune(b)); ok {
				held.press(key, time.Now())
			}

		case now := <-ticker.C:
			held.expire(now)
			writeANSIFrame(out, s)

		case <-s.Done():
			writeANSIFrame(out, s)
			return nil
		}
	}
}

// writeANSIFrame redraws the whole screen from the top left corner. Raw mode
// disables output post-processing, so lines end in an explicit \r\n.
func writeANSIFrame(out io.Writer, s *devices.Session) {
	var b strings.Builder
	b.WriteString(ansiHome + ansiGreen)
	for _, row := range renderRows(s.Screen.Frame()) {
		b.WriteString(row)
		b.WriteString("\r\n")
	}
	b.WriteString(ansiReset)
	b.WriteString(statusLine(s))
	b.WriteString("\x1b[K")
	io.WriteString(out, b.String())
}

func defaultTTY() string {
	if _, err := os.Stat("/dev/tty"); err == nil {
		return "/dev/tty"
	}
	return os.Stdin.Name()
}
