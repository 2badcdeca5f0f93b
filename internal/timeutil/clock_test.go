package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestManualClock_Now(t *testing.T) {
	fixedTime := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewManualClock(fixedTime)

	if now := clock.Now(); !now.Equal(fixedTime) {
		t.Errorf("got %v, want %v", now, fixedTime)
	}
}

func TestManualClock_SetAndAdvance(t *testing.T) {
	clock := NewManualClock(time.Time{})
	start := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	clock.Set(start)
	clock.Advance(1500 * time.Millisecond)

	if got := clock.Since(start); got != 1500*time.Millisecond {
		t.Errorf("Since() = %v, want 1.5s", got)
	}
}

func TestManualClock_SetElapsed(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(epoch)
	clock.SetElapsed(epoch, 12.25)

	if got := clock.Since(epoch); got != 12250*time.Millisecond {
		t.Errorf("Since(epoch) = %v, want 12.25s", got)
	}
}

func TestManualClock_ImplementsClock(t *testing.T) {
	var _ Clock = (*ManualClock)(nil)
	var _ Clock = RealClock{}
}
