package countdown

import (
	"sync"
	"testing"
	"time"
)

func TestCountdown_CompletesAfterAllTicks(t *testing.T) {
	c := NewWithInterval(5 * time.Millisecond)

	var mu sync.Mutex
	var ticks []int
	completed := make(chan struct{})

	c.Start(3, Callbacks{
		OnTick: func(remaining int) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		},
		OnComplete: func() { close(completed) },
	})

	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("countdown never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ticks))
	}
	want := []int{2, 1, 0}
	for i, r := range want {
		if ticks[i] != r {
			t.Errorf("tick %d: expected remaining %d, got %d", i, r, ticks[i])
		}
	}
}

func TestCountdown_StopSuppressesCompletion(t *testing.T) {
	c := NewWithInterval(2 * time.Millisecond)

	var mu sync.Mutex
	tickCount := 0
	completedCh := make(chan struct{}, 1)

	c.Start(60, Callbacks{
		OnTick: func(remaining int) {
			mu.Lock()
			tickCount++
			n := tickCount
			mu.Unlock()
			if n == 10 {
				c.Stop()
			}
		},
		OnComplete: func() { completedCh <- struct{}{} },
	})

	// Give the goroutine far longer than 60 ticks would need.
	select {
	case <-completedCh:
		t.Fatal("completion fired after Stop")
	case <-time.After(400 * time.Millisecond):
	}

	if c.Running() {
		t.Error("countdown still reports running after Stop")
	}
}

func TestCountdown_StopBeforeStartIsSafe(t *testing.T) {
	c := New()
	c.Stop()
	c.Stop()
}

func TestCountdown_DoubleStartIgnored(t *testing.T) {
	c := NewWithInterval(2 * time.Millisecond)
	completions := make(chan struct{}, 2)

	cb := Callbacks{OnComplete: func() { completions <- struct{}{} }}
	c.Start(2, cb)
	c.Start(2, cb)

	select {
	case <-completions:
	case <-time.After(time.Second):
		t.Fatal("countdown never completed")
	}

	select {
	case <-completions:
		t.Fatal("second Start produced a second completion")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCountdown_Restartable(t *testing.T) {
	c := NewWithInterval(2 * time.Millisecond)

	first := make(chan struct{})
	c.Start(1, Callbacks{OnComplete: func() { close(first) }})
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first run never completed")
	}

	second := make(chan struct{})
	c.Start(1, Callbacks{OnComplete: func() { close(second) }})
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second run never completed")
	}
}
