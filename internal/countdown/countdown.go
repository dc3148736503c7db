// Package countdown provides a cancellable once-per-second countdown
// used for answer windows and reading windows.
package countdown

import (
	"sync"
	"time"
)

// Countdown ticks once per interval until the duration elapses, then
// fires the completion callback. Stop before expiry guarantees the
// completion callback never fires afterward.
type Countdown struct {
	interval time.Duration

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// Callbacks receive the remaining whole seconds on each tick and a
// single completion signal at zero.
type Callbacks struct {
	OnTick     func(remaining int)
	OnComplete func()
}

// New creates a countdown with a 1s tick interval.
func New() *Countdown {
	return &Countdown{interval: time.Second}
}

// NewWithInterval creates a countdown with a custom tick interval.
// Remaining values are still reported in tick counts.
func NewWithInterval(interval time.Duration) *Countdown {
	return &Countdown{interval: interval}
}

// Start begins counting down from the given number of ticks. It returns
// immediately; callbacks fire from a background goroutine. Starting an
// already-started countdown is a no-op.
func (c *Countdown) Start(ticks int, cb Callbacks) {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	c.stopped = false
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	go c.run(ticks, cb, done)
}

func (c *Countdown) run(ticks int, cb Callbacks, done chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	remaining := ticks
	for remaining > 0 {
		select {
		case <-done:
			return
		case <-ticker.C:
			remaining--
			// Re-check under the lock so a Stop that raced the tick
			// suppresses both callbacks.
			c.mu.Lock()
			stopped := c.stopped
			c.mu.Unlock()
			if stopped {
				return
			}
			if cb.OnTick != nil {
				cb.OnTick(remaining)
			}
		}
	}

	c.mu.Lock()
	stopped := c.stopped
	c.done = nil
	c.mu.Unlock()
	if !stopped && cb.OnComplete != nil {
		cb.OnComplete()
	}
}

// Stop cancels the countdown. After Stop returns, the completion
// callback will not fire. Safe to call multiple times.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopped = true
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.mu.Unlock()
}

// Running reports whether the countdown is active.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}
