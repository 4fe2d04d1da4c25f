package cooldown

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func TestBlockedUntilExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := NewWithClock(120*time.Second, clock.Now)

	if tracker.IsBlocked("actor-1") {
		t.Fatal("fresh actor must not be blocked")
	}

	tracker.SetCooldown("actor-1")
	clock.Advance(60 * time.Second)
	if !tracker.IsBlocked("actor-1") {
		t.Fatal("actor must still be blocked halfway through")
	}
	if got := tracker.RemainingSeconds("actor-1"); got != 60 {
		t.Fatalf("remaining = %d, want 60", got)
	}

	clock.Advance(61 * time.Second)
	if tracker.IsBlocked("actor-1") {
		t.Fatal("actor must unblock past expiry")
	}
	if got := tracker.RemainingSeconds("actor-1"); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestExpiredEntrySelfHealsOnRead(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := NewWithClock(10*time.Second, clock.Now)
	tracker.SetCooldown("actor-1")
	clock.Advance(11 * time.Second)

	if tracker.IsBlocked("actor-1") {
		t.Fatal("expired entry must read as absent")
	}
	// Entry was removed on read, sweep finds nothing.
	if removed := tracker.Sweep(); removed != 0 {
		t.Fatalf("sweep after self-heal removed %d entries", removed)
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := NewWithClock(100*time.Second, clock.Now)
	tracker.SetCooldown("expired")
	clock.Advance(150 * time.Second)
	tracker.SetCooldown("active")

	if removed := tracker.Sweep(); removed != 1 {
		t.Fatalf("sweep removed %d, want 1", removed)
	}
	if !tracker.IsBlocked("active") {
		t.Fatal("active entry must survive the sweep")
	}
}

func TestSetDurationClampsNegative(t *testing.T) {
	t.Parallel()

	tracker := New(-5 * time.Second)
	if tracker.Duration() != 0 {
		t.Fatalf("duration = %v, want 0", tracker.Duration())
	}
	// Zero-duration cooldown never blocks.
	tracker.SetCooldown("actor-1")
	if tracker.IsBlocked("actor-1") {
		t.Fatal("zero-duration cooldown must not block")
	}
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := NewWithClock(time.Hour, clock.Now)
	tracker.SetCooldown("a")
	tracker.SetCooldown("b")

	tracker.Remove("a")
	if tracker.IsBlocked("a") {
		t.Fatal("removed actor must not be blocked")
	}
	tracker.Clear()
	if tracker.IsBlocked("b") {
		t.Fatal("cleared tracker must not block anyone")
	}
}
