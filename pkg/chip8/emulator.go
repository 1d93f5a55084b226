package chip8

import (
	"context"
	"fmt"
	"log/slog"
)

// TimerDivider is the number of steps between timer decrements. At the
// standard 480 Hz instruction rate the timers tick at 60 Hz.
const TimerDivider = 8

// Emulator drives the fetch-decode-execute loop over a Machine.
type Emulator struct {
	m       *Machine
	input   Input
	display Display
	pacer   Pacer

	logger *slog.Logger
	disasm func(uint16) string

	steps uint64
}

type EmulatorOption func(*Emulator)

// WithPacer reports the cycle cost of every non-blocking step to p.
func WithPacer(p Pacer) EmulatorOption {
	return func(e *Emulator) {
		e.pacer = p
	}
}

// WithLogger enables a debug level trace of every executed instruction.
func WithLogger(l *slog.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = l
	}
}

// WithDisassembler adds a mnemonic to each trace line.
func WithDisassembler(fn func(uint16) string) EmulatorOption {
	return func(e *Emulator) {
		e.disasm = fn
	}
}

// New wires a machine to its collaborators. display may be nil for runs that
// never render.
func New(m *Machine, input Input, display Display, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		m:       m,
		input:   input,
		display: display,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emulator) Machine() *Machine {
	return e.m
}

// Steps is the number of instructions executed so far.
func (e *Emulator) Steps() uint64 {
	return e.steps
}

// Step executes one instruction and returns its cycle cost. Timers are only
// touched between completed instructions, never while FX0A is waiting.
func (e *Emulator) Step() (int, error) {
	pc := e.m.PC()
	op := e.m.Fetch()
	e.m.AdvancePC(2)

	if e.logger != nil {
		e.trace(pc, op)
	}

	cycles, err := Dispatch(e.m, e.input, op)
	if err != nil {
		return 0, fmt.Errorf("executing 0x%04X at 0x%03X: %w", op, pc, err)
	}

	e.steps++
	if e.steps%TimerDivider == 0 {
		e.m.TickTimers()
	}

	if e.display != nil && drawsToScreen(op) {
		e.display.UpdateDisplay(e.m)
	}

	if e.pacer != nil && cycles != Blocking {
		e.pacer.Pace(cycles)
	}
	return cycles, nil
}

// Run steps until ctx is cancelled or an instruction fails. There is no halt
// instruction, so a nil error is never returned.
func (e *Emulator) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := e.Step(); err != nil {
			return err
		}
	}
}

// RunSteps executes at most n instructions, stopping early on error or
// cancellation.
func (e *Emulator) RunSteps(ctx context.Context, n uint64) error {
	for i := uint64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emulator) trace(pc, op uint16) {
	attrs := []any{
		slog.String("pc", fmt.Sprintf("0x%03X", pc)),
		slog.String("op", fmt.Sprintf("%04X", op)),
		slog.String("i", fmt.Sprintf("0x%03X", e.m.I())),
	}
	if e.disasm != nil {
		attrs = append(attrs, slog.String("ins", e.disasm(op)))
	}
	e.logger.Debug("step", attrs...)
}
