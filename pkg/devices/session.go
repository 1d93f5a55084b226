package devices

import (
	"context"
	"errors"
	"sync"

	"gochip8/pkg/chip8"
	"gochip8/pkg/clock"
)

// Session runs an emulator on its own goroutine for interactive front ends.
// The front end writes to Keys and reads frames from Screen; neither side
// touches the Machine directly while the session is running.
type Session struct {
	Keys   *KeyLatch
	Screen *Headless

	emu    *chip8.Emulator
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	started bool
	err     error
}

// NewSession loads rom into a fresh machine paced at hz instructions per
// second. hz <= 0 runs unpaced.
func NewSession(rom []byte, hz int, opts ...chip8.EmulatorOption) (*Session, error) {
	m := chip8.NewMachine()
	if err := m.LoadROM(rom); err != nil {
		return nil, err
	}

	var pacer chip8.Pacer = clock.None
	if hz > 0 {
		pacer = clock.New(hz)
	}

	s := &Session{
		Keys:   NewKeyLatch(),
		Screen: NewHeadless(),
		done:   make(chan struct{}),
	}
	opts = append([]chip8.EmulatorOption{chip8.WithPacer(pacer)}, opts...)
	s.emu = chip8.New(m, s.Keys, s.Screen, opts...)
	return s, nil
}

// Start launches the emulator goroutine. Calls after the first, or after
// Stop, do nothing.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	go func() {
		defer close(s.done)
		err := s.emu.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}()
}

// Done is closed once the emulator goroutine has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err is the fault that stopped the program, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop cancels the run, releases a pending FX0A wait and waits for the
// goroutine to exit. A session that was never started is closed at once.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.started = true
		close(s.done)
		s.mu.Unlock()
		s.Keys.Close()
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.Keys.Close()
	<-s.done
	return s.Err()
}
