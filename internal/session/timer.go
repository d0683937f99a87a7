package session

import (
	"sync"
	"time"
)

// Countdown is the session clock: a single owned countdown that ticks once
// per wall-clock second and fires its expiry callback exactly once when it
// reaches zero. Stop tears it down deterministically and suppresses any
// further ticks or expiry.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	expired   bool
	onExpire  func()
	stop      chan struct{}
	done      chan struct{}
}

// NewCountdown creates a countdown holding the given number of seconds.
// onExpire runs synchronously with the tick that reaches zero.
func NewCountdown(seconds int, onExpire func()) *Countdown {
	return &Countdown{
		remaining: seconds,
		onExpire:  onExpire,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the ticking goroutine. A simple repeating one-second ticker
// is sufficient; no drift correction is required.
func (c *Countdown) Start() {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if !c.Tick() {
					return
				}
			}
		}
	}()
}

// Tick consumes one second and reports whether the countdown is still live.
// It is the unit the ticking goroutine drives; tests drive it directly to
// simulate the passage of time.
func (c *Countdown) Tick() bool {
	c.mu.Lock()
	if c.stopped || c.expired || c.remaining <= 0 {
		c.mu.Unlock()
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		c.mu.Unlock()
		return true
	}
	c.expired = true
	fire := c.onExpire
	c.mu.Unlock()

	if fire != nil {
		fire()
	}
	return false
}

// Remaining returns the seconds left on the clock.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop halts the countdown without firing expiry. Safe to call more than
// once and after expiry.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()
	close(c.stop)
}
