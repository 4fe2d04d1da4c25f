// Package ledger keeps process-lifetime roll counters.
//
// The ledger is the synchronous, in-memory side of roll accounting: it is
// updated on every grant before the durable write is enqueued, and it is
// the fallback source of truth for same-session queries when the durable
// store is unavailable. Counters reset on restart by design.
package ledger

import (
	"sort"
	"sync"

	"github.com/bubblecraft/runeforge/internal/reward"
)

// Entry is one leaderboard row.
type Entry struct {
	ActorID string
	Rolls   int
}

// Ledger accumulates roll and spend counters. Safe for concurrent use; all
// counters are monotonically non-decreasing between Resets.
type Ledger struct {
	mu              sync.RWMutex
	totalRolls      int
	tierCounts      map[reward.Tier]int
	actorRolls      map[string]int
	actorTierCounts map[string]map[reward.Tier]int
	actorSpent      map[string]int
}

// New returns an empty ledger.
func New() *Ledger {
	l := &Ledger{}
	l.reset()
	return l
}

func (l *Ledger) reset() {
	l.totalRolls = 0
	l.tierCounts = make(map[reward.Tier]int)
	l.actorRolls = make(map[string]int)
	l.actorTierCounts = make(map[string]map[reward.Tier]int)
	l.actorSpent = make(map[string]int)
}

// RecordRoll increments the total, per-tier, per-actor and per-actor
// per-tier counters for one successful grant.
func (l *Ledger) RecordRoll(actorID string, tier reward.Tier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalRolls++
	l.tierCounts[tier]++
	l.actorRolls[actorID]++
	byTier := l.actorTierCounts[actorID]
	if byTier == nil {
		byTier = make(map[reward.Tier]int)
		l.actorTierCounts[actorID] = byTier
	}
	byTier[tier]++
}

// RecordCurrencySpent adds to the actor's primary-currency spend counter.
func (l *Ledger) RecordCurrencySpent(actorID string, amount int) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actorSpent[actorID] += amount
}

// ShouldTriggerMilestone reports whether the actor's roll count sits
// exactly on the milestone threshold. Edge-triggered: true only on the
// roll that crossed the threshold, never again afterwards.
func (l *Ledger) ShouldTriggerMilestone(actorID string, milestone int) bool {
	if milestone <= 0 {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.actorRolls[actorID] == milestone
}

// TotalRolls returns the process-lifetime roll count.
func (l *Ledger) TotalRolls() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalRolls
}

// TierCount returns the process-lifetime count for one tier.
func (l *Ledger) TierCount(tier reward.Tier) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tierCounts[tier]
}

// PlayerRolls returns the actor's roll count.
func (l *Ledger) PlayerRolls(actorID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.actorRolls[actorID]
}

// PlayerTierCount returns the actor's roll count for one tier.
func (l *Ledger) PlayerTierCount(actorID string, tier reward.Tier) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.actorTierCounts[actorID][tier]
}

// CurrencySpent returns the actor's primary-currency spend total.
func (l *Ledger) CurrencySpent(actorID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.actorSpent[actorID]
}

// RarestTier returns the highest tier the actor has rolled. ok is false
// when the actor has no rolls.
func (l *Ledger) RarestTier(actorID string) (reward.Tier, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	byTier := l.actorTierCounts[actorID]
	for _, tier := range reward.TiersDescending() {
		if byTier[tier] > 0 {
			return tier, true
		}
	}
	return 0, false
}

// TopPlayers returns up to n actors ordered by roll count descending.
// Ties break by actor id for a stable board.
func (l *Ledger) TopPlayers(n int) []Entry {
	if n <= 0 {
		return nil
	}
	entries := l.sortedEntries()
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Rank returns the actor's 1-based leaderboard position. Actors without
// rolls rank after everyone on the board.
func (l *Ledger) Rank(actorID string) int {
	entries := l.sortedEntries()
	for i, e := range entries {
		if e.ActorID == actorID {
			return i + 1
		}
	}
	return len(entries) + 1
}

func (l *Ledger) sortedEntries() []Entry {
	l.mu.RLock()
	entries := make([]Entry, 0, len(l.actorRolls))
	for id, rolls := range l.actorRolls {
		entries = append(entries, Entry{ActorID: id, Rolls: rolls})
	}
	l.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rolls != entries[j].Rolls {
			return entries[i].Rolls > entries[j].Rolls
		}
		return entries[i].ActorID < entries[j].ActorID
	})
	return entries
}

// Reset clears every counter back to zero, for administrative and test
// use.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
}
