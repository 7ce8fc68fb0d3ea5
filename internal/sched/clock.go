// internal/sched/clock.go

package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock is the monotonic tick source. Ticks must be side-effect free and
// increase monotonically except for wraparound.
type Clock interface {
	Ticks() Tick
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() Tick

func (f ClockFunc) Ticks() Tick { return f() }

// MillisClock counts milliseconds since it was created, starting at an
// offset. Starting close to MaxTime makes the wraparound reachable in minutes
// instead of weeks.
type MillisClock struct {
	epoch time.Time
	start Tick
}

// NewMillisClock creates a clock whose first reading is start.
func NewMillisClock(start Tick) *MillisClock {
	return &MillisClock{
		epoch: time.Now(),
		start: start,
	}
}

// Ticks truncates the elapsed milliseconds to 32 bits.
func (c *MillisClock) Ticks() Tick {
	return c.start + Tick(time.Since(c.epoch).Milliseconds())
}

// TickClock counts ticks atomically. It is either driven by Start or stepped
// by hand with Advance and Set.
type TickClock struct {
	count atomic.Uint32

	mu   sync.Mutex
	stop chan struct{}
}

// NewTickClock creates a stopped clock reading start.
func NewTickClock(start Tick) *TickClock {
	c := &TickClock{}
	c.count.Store(uint32(start))
	return c
}

// Start begins counting one tick per interval. Starting a running clock is a no-op.
func (c *TickClock) Start(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return
	}
	stop := make(chan struct{})
	c.stop = stop

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.count.Add(1)
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts a started clock; the count is kept.
func (c *TickClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
}

// Advance moves the clock forward by n ticks, wrapping.
func (c *TickClock) Advance(n Tick) Tick {
	return Tick(c.count.Add(uint32(n)))
}

// Set jumps the clock to t.
func (c *TickClock) Set(t Tick) { c.count.Store(uint32(t)) }

// Ticks returns the current count.
func (c *TickClock) Ticks() Tick {
	return Tick(c.count.Load())
}
