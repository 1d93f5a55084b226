package devices

import "sync"

// KeyLatch is the shared keypad state between a front end's input loop and
// the emulator goroutine. The front end is the only writer; the emulator
// polls with IsPressed and blocks in GetInput until the next press.
type KeyLatch struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pressed [16]bool
	last    uint8
	presses uint64
	waiters int
	closed  bool
}

func NewKeyLatch() *KeyLatch {
	k := &KeyLatch{}
	k.cond = sync.NewCond(&k.mu)
	return k
}

// Press marks key as held and wakes any waiting GetInput. Repeated presses of
// a key that is already held do not count as a new press.
func (k *KeyLatch) Press(key uint8) {
	key &= 0xF
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.pressed[key] {
		return
	}
	k.pressed[key] = true
	k.last = key
	k.presses++
	k.cond.Broadcast()
}

func (k *KeyLatch) Release(key uint8) {
	k.mu.Lock()
	k.pressed[key&0xF] = false
	k.mu.Unlock()
}

// Set presses or releases key.
func (k *KeyLatch) Set(key uint8, down bool) {
	if down {
		k.Press(key)
	} else {
		k.Release(key)
	}
}

// ReleaseAll clears every held key. Terminal front ends that only see key
// presses call this after a short hold period.
func (k *KeyLatch) ReleaseAll() {
	k.mu.Lock()
	k.pressed = [16]bool{}
	k.mu.Unlock()
}

func (k *KeyLatch) IsPressed(key uint8) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.pressed[key&0xF]
}

// GetInput blocks until a key is pressed after the call starts. After Close
// it returns 0 immediately.
func (k *KeyLatch) GetInput() uint8 {
	k.mu.Lock()
	defer k.mu.Unlock()

	seen := k.presses
	k.waiters++
	for k.presses == seen && !k.closed {
		k.cond.Wait()
	}
	k.waiters--
	if k.closed {
		return 0
	}
	return k.last
}

// Waiting reports whether a GetInput call is blocked on the next press.
func (k *KeyLatch) Waiting() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.waiters > 0
}

// Close releases any goroutine blocked in GetInput. The host calls it while
// tearing the session down.
func (k *KeyLatch) Close() {
	k.mu.Lock()
	k.closed = true
	k.cond.Broadcast()
	k.mu.Unlock()
}
