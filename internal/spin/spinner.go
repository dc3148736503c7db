// Package spin implements the topic/book spinner: a short cosmetic
// phase of rapidly changing candidates that settles on one uniformly
// random pick from a closed catalog.
package spin

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrEmptyCatalog is returned when the spinner is started with no items.
var ErrEmptyCatalog = errors.New("spin: empty catalog")

// Spinner cycles displayed candidates for a fixed duration, then
// settles on a final pick and invokes the selection callback exactly
// once. The displayed item never repeats on consecutive ticks.
type Spinner struct {
	items    []string
	duration time.Duration
	interval time.Duration
	settle   time.Duration
	rng      *rand.Rand

	mu       sync.Mutex
	running  bool
	cancelCh chan struct{}
}

// Callbacks for the spin phases. OnDisplay fires on every spin tick
// with the transient candidate; OnSelected fires exactly once with the
// final pick.
type Callbacks struct {
	OnDisplay  func(item string)
	OnSelected func(item string)
}

// Option configures a Spinner.
type Option func(*Spinner)

// WithTiming overrides the spin duration, tick interval, and the pause
// between showing the final item and invoking the selection callback.
func WithTiming(duration, interval, settle time.Duration) Option {
	return func(s *Spinner) {
		s.duration = duration
		s.interval = interval
		s.settle = settle
	}
}

// WithSeed fixes the random source, for tests.
func WithSeed(seed int64) Option {
	return func(s *Spinner) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a spinner over a closed catalog. Defaults follow the
// original experience: 3s spin, 300ms ticks, 1s settle.
func New(items []string, opts ...Option) *Spinner {
	s := &Spinner{
		items:    items,
		duration: 3 * time.Second,
		interval: 300 * time.Millisecond,
		settle:   time.Second,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Spin runs the spin synchronously and returns the final pick. The
// spin phase lasts duration-settle; the final item is then displayed
// for the settle pause before OnSelected fires.
func (s *Spinner) Spin(cb Callbacks) (string, error) {
	if len(s.items) == 0 {
		return "", ErrEmptyCatalog
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return "", errors.New("spin: already spinning")
	}
	s.running = true
	cancel := make(chan struct{})
	s.cancelCh = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.cancelCh = nil
		s.mu.Unlock()
	}()

	spinPhase := s.duration - s.settle
	if spinPhase < 0 {
		spinPhase = 0
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(spinPhase)
	defer deadline.Stop()

	prev := ""
	for spinning := true; spinning; {
		select {
		case <-cancel:
			return "", errors.New("spin: cancelled")
		case <-ticker.C:
			item := s.pickOther(prev)
			prev = item
			if cb.OnDisplay != nil {
				cb.OnDisplay(item)
			}
		case <-deadline.C:
			spinning = false
		}
	}

	final := s.items[s.rng.Intn(len(s.items))]
	if cb.OnDisplay != nil {
		cb.OnDisplay(final)
	}

	select {
	case <-cancel:
		return "", errors.New("spin: cancelled")
	case <-time.After(s.settle):
	}

	if cb.OnSelected != nil {
		cb.OnSelected(final)
	}
	return final, nil
}

// Cancel aborts an in-flight spin; the selection callback is not
// invoked. No-op when idle.
func (s *Spinner) Cancel() {
	s.mu.Lock()
	if s.cancelCh != nil {
		close(s.cancelCh)
		s.cancelCh = nil
	}
	s.mu.Unlock()
}

// pickOther picks a random item different from prev. With a single
// item catalog the same item is unavoidable.
func (s *Spinner) pickOther(prev string) string {
	if len(s.items) == 1 {
		return s.items[0]
	}
	for {
		item := s.items[s.rng.Intn(len(s.items))]
		if item != prev {
			return item
		}
	}
}
