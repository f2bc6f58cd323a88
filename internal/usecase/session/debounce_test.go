package session

import (
	"testing"
	"time"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(DefaultDelay, clock)

	var calls []int
	for i := 1; i <= 5; i++ {
		v := i
		d.Trigger(func() { calls = append(calls, v) })
		clock.Advance(100 * time.Millisecond)
	}
	if len(calls) != 0 {
		t.Fatalf("fired during burst: %v", calls)
	}

	clock.Advance(400 * time.Millisecond)
	if len(calls) != 1 || calls[0] != 5 {
		t.Fatalf("calls = %v, want [5]", calls)
	}
	if d.Pending() {
		t.Fatal("nothing should be pending after firing")
	}
}

func TestDebouncer_FiresAfterExactDelay(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(DefaultDelay, clock)

	fired := false
	d.Trigger(func() { fired = true })
	clock.Advance(499 * time.Millisecond)
	if fired {
		t.Fatal("fired early")
	}
	clock.Advance(time.Millisecond)
	if !fired {
		t.Fatal("did not fire at 500ms")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(DefaultDelay, clock)

	fired := false
	d.Trigger(func() { fired = true })
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	d.Cancel()
	clock.Advance(time.Second)
	if fired {
		t.Fatal("cancelled call fired")
	}
}

func TestDebouncer_RealClock(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, nil)
	done := make(chan struct{})
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("real clock debouncer never fired")
	}
}
