package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
	"gochip8/pkg/devices"
	"gochip8/pkg/utils"
)

// statusLine is shown under the display.
func statusLine(s *devices.Session) string {
	select {
	case <-s.Done():
		if err := s.Err(); err != nil {
			return "halted: " + err.Error()
		}
		return "stopped"
	default:
	}
	if s.Keys.Waiting() {
		return "waiting for key (1234/qwer/asdf/zxcv, Esc quits)"
	}
	return "running (Esc quits)"
}

func main() {
	hz := flag.Int("hz", clock.DefaultHz, "instructions per second")
	raw := flag.Bool("raw", false, "use a raw tty with ANSI output instead of termbox")
	tty := flag.String("tty", defaultTTY(), "terminal device for -raw")
	tracePath := flag.String("trace", "", "write an instruction trace to this file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: console [flags] rom.ch8")
		flag.PrintDefaults()
		os.Exit(2)
	}

	rom, err := utils.ReadROM(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read ROM: %v", err)
	}

	var opts []chip8.EmulatorOption
	if *tracePath != "" {
		// The terminal is busy with the display, so the trace goes to a file.
		f, err := os.Create(*tracePath)
		if err != nil {
			log.Fatalf("Failed to create trace file: %v", err)
		}
		defer f.Close()
		logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, chip8.WithLogger(logger), chip8.WithDisassembler(asm.Disassemble))
	}

	session, err := devices.NewSession(rom, *hz, opts...)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	session.Start(context.Background())

	if *raw {
		err = runRaw(session, *tty, os.Stdout)
	} else {
		err = runTermbox(session)
	}

	if stopErr := session.Stop(); stopErr != nil {
		log.Printf("Program stopped: %v", stopErr)
	}
	if err != nil {
		log.Fatal(err)
	}
}
