// Package cooldown tracks per-actor grant cooldowns.
//
// The expiry table is a concurrent map: every operation is per-key and
// lock-free, no cross-key atomicity is provided. Expired entries heal on
// read and a periodic sweep bounds memory independent of read traffic.
package cooldown

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSweepInterval is how often the background sweep removes expired
// entries.
const DefaultSweepInterval = 5 * time.Minute

// Tracker answers whether an actor is blocked from a new grant.
type Tracker struct {
	entries  sync.Map // actorID string -> expiry time.Time
	duration atomic.Int64
	now      func() time.Time
}

// New returns a tracker with the given cooldown duration. Negative
// durations clamp to zero.
func New(duration time.Duration) *Tracker {
	t := &Tracker{now: time.Now}
	t.SetDuration(duration)
	return t
}

// NewWithClock returns a tracker using the supplied clock, for tests.
func NewWithClock(duration time.Duration, now func() time.Time) *Tracker {
	t := New(duration)
	t.now = now
	return t
}

// SetDuration hot-reloads the cooldown duration, clamped to >= 0. Existing
// entries keep their original expiry.
func (t *Tracker) SetDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.duration.Store(int64(d))
}

// Duration returns the configured cooldown duration.
func (t *Tracker) Duration() time.Duration {
	return time.Duration(t.duration.Load())
}

// IsBlocked reports whether the actor is on cooldown. Expired entries are
// removed opportunistically.
func (t *Tracker) IsBlocked(actorID string) bool {
	v, ok := t.entries.Load(actorID)
	if !ok {
		return false
	}
	expiry := v.(time.Time)
	if !t.now().Before(expiry) {
		t.entries.Delete(actorID)
		return false
	}
	return true
}

// RemainingSeconds returns whole seconds until the actor's cooldown ends,
// 0 when not blocked.
func (t *Tracker) RemainingSeconds(actorID string) int {
	v, ok := t.entries.Load(actorID)
	if !ok {
		return 0
	}
	remaining := v.(time.Time).Sub(t.now())
	if remaining <= 0 {
		t.entries.Delete(actorID)
		return 0
	}
	return int(remaining / time.Second)
}

// SetCooldown starts the actor's cooldown from now.
func (t *Tracker) SetCooldown(actorID string) {
	t.entries.Store(actorID, t.now().Add(t.Duration()))
}

// Remove clears the actor's cooldown, for administrative use.
func (t *Tracker) Remove(actorID string) {
	t.entries.Delete(actorID)
}

// Clear removes every cooldown entry.
func (t *Tracker) Clear() {
	t.entries.Range(func(key, _ any) bool {
		t.entries.Delete(key)
		return true
	})
}

// Sweep removes all expired entries and returns how many were removed.
func (t *Tracker) Sweep() int {
	now := t.now()
	removed := 0
	t.entries.Range(func(key, value any) bool {
		if !now.Before(value.(time.Time)) {
			t.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Run sweeps on a fixed interval until ctx is done. Intervals <= 0 use
// DefaultSweepInterval.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := t.Sweep(); removed > 0 {
				log.Printf("cooldown sweep removed %d expired entries", removed)
			}
		}
	}
}
