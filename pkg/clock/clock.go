// Package clock converts instruction cycles into wall-clock time.
package clock

import "time"

// DefaultHz is the instruction rate at which the timers, ticking every
// eighth step, run at 60 Hz.
const DefaultHz = 480

// maxLag bounds how far behind schedule the pacer may fall before it stops
// trying to catch up, e.g. after the process was suspended.
const maxLag = 100 * time.Millisecond

// Pacer sleeps so that cycles are executed at a fixed rate. Sleeps are
// batched: it only sleeps once the schedule is more than a millisecond ahead
// of the wall clock.
type Pacer struct {
	period time.Duration
	next   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a pacer for hz cycles per second. hz <= 0 selects DefaultHz.
func New(hz int) *Pacer {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &Pacer{
		period: time.Second / time.Duration(hz),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (p *Pacer) Period() time.Duration {
	return p.period
}

func (p *Pacer) Pace(cycles int) {
	if cycles <= 0 {
		return
	}
	now := p.now()
	if p.next.IsZero() || now.Sub(p.next) > maxLag {
		p.next = now
	}
	p.next = p.next.Add(time.Duration(cycles) * p.period)
	if ahead := p.next.Sub(now); ahead > time.Millisecond {
		p.sleep(ahead)
	}
}

type none struct{}

func (none) Pace(int) {}

// None never sleeps.
var None = none{}
