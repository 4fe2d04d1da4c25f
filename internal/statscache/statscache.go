// Package statscache keeps a periodically refreshed read snapshot of
// durable roll statistics. Reads never touch the store; they serve
// whatever the last successful refresh produced, which may lag by up
// to one refresh interval.
package statscache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/bubblecraft/runeforge/internal/host"
	"github.com/bubblecraft/runeforge/internal/reward"
	"github.com/bubblecraft/runeforge/internal/storage"
)

const (
	// MinRefreshInterval is the floor for the refresh loop.
	MinRefreshInterval = 5 * time.Second
	// DefaultRefreshInterval applies when no interval is configured.
	DefaultRefreshInterval = 300 * time.Second
	// TopPlayerLimit is the leaderboard depth held per snapshot.
	TopPlayerLimit = 10

	// SentinelName is returned for absent leaderboard positions.
	SentinelName = "N/A"
	// SentinelTier is returned when an actor has no recorded rolls.
	SentinelTier = "None"
)

// Source is the slice of the roll store the cache refreshes from.
type Source interface {
	GetGlobalStats(ctx context.Context) (storage.GlobalStats, error)
	GetTierDistribution(ctx context.Context) (map[reward.Tier]int, error)
	GetTopPlayers(ctx context.Context, limit int) ([]storage.PlayerAggregate, error)
	GetPlayerStats(ctx context.Context, actorID string) (storage.PlayerAggregate, error)
	GetRank(ctx context.Context, actorID string) (int, error)
}

type trackedPlayer struct {
	aggregate storage.PlayerAggregate
	rank      int
}

type snapshot struct {
	global      storage.GlobalStats
	tiers       map[reward.Tier]int
	top         []storage.PlayerAggregate
	players     map[string]trackedPlayer
	refreshedAt time.Time
}

func emptySnapshot() *snapshot {
	tiers := make(map[reward.Tier]int, len(reward.Tiers()))
	for _, tier := range reward.Tiers() {
		tiers[tier] = 0
	}
	return &snapshot{
		tiers:   tiers,
		players: map[string]trackedPlayer{},
	}
}

// Cache serves roll statistics from an immutable snapshot swapped
// whole on each successful refresh.
type Cache struct {
	source   Source
	presence host.Presence
	snap     atomic.Pointer[snapshot]
}

// New builds a cache primed with an empty snapshot, so accessors
// return sentinels until the first refresh lands.
func New(source Source, presence host.Presence) *Cache {
	c := &Cache{source: source, presence: presence}
	c.snap.Store(emptySnapshot())
	return c
}

// Refresh pulls a complete snapshot and swaps it in. On any pull
// failure the previous snapshot stays visible unchanged.
func (c *Cache) Refresh(ctx context.Context) error {
	if c == nil || c.source == nil {
		return fmt.Errorf("stats source is not configured")
	}

	global, err := c.source.GetGlobalStats(ctx)
	if err != nil {
		return fmt.Errorf("refresh global stats: %w", err)
	}
	distribution, err := c.source.GetTierDistribution(ctx)
	if err != nil {
		return fmt.Errorf("refresh tier distribution: %w", err)
	}
	top, err := c.source.GetTopPlayers(ctx, TopPlayerLimit)
	if err != nil {
		return fmt.Errorf("refresh top players: %w", err)
	}

	next := emptySnapshot()
	next.global = global
	for tier, count := range distribution {
		next.tiers[tier] = count
	}
	next.top = top
	next.refreshedAt = time.Now()

	var actorIDs []string
	if c.presence != nil {
		actorIDs = c.presence.OnlineActors(ctx)
	}
	for _, actorID := range actorIDs {
		aggregate, err := c.source.GetPlayerStats(ctx, actorID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("refresh player %s: %w", actorID, err)
		}
		rank, err := c.source.GetRank(ctx, actorID)
		if errors.Is(err, storage.ErrNotFound) {
			rank = 0
		} else if err != nil {
			return fmt.Errorf("refresh rank %s: %w", actorID, err)
		}
		next.players[actorID] = trackedPlayer{aggregate: aggregate, rank: rank}
	}

	c.snap.Store(next)
	return nil
}

// Run refreshes immediately and then on every tick until ctx ends.
// Intervals below the floor are clamped; zero means the default.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if interval < MinRefreshInterval {
		interval = MinRefreshInterval
	}

	if err := c.Refresh(ctx); err != nil {
		log.Printf("stats cache refresh: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				log.Printf("stats cache refresh: %v", err)
			}
		}
	}
}

func (c *Cache) current() *snapshot {
	return c.snap.Load()
}

// RefreshedAt reports when the current snapshot was taken. The zero
// time means no refresh has succeeded yet.
func (c *Cache) RefreshedAt() time.Time {
	return c.current().refreshedAt
}

// GlobalTotalRolls returns the all-time roll count.
func (c *Cache) GlobalTotalRolls() int {
	return c.current().global.TotalRolls
}

// GlobalStats returns the full aggregate view.
func (c *Cache) GlobalStats() storage.GlobalStats {
	return c.current().global
}

// TierCount returns the all-time count for one tier. Unknown tiers
// report zero.
func (c *Cache) TierCount(tier reward.Tier) int {
	return c.current().tiers[tier]
}

// TopPlayerName returns the name at a 1-based leaderboard position.
func (c *Cache) TopPlayerName(pos int) string {
	top := c.current().top
	if pos < 1 || pos > len(top) {
		return SentinelName
	}
	return top[pos-1].ActorName
}

// TopPlayerRolls returns the roll count at a 1-based leaderboard
// position, zero when the position is unfilled.
func (c *Cache) TopPlayerRolls(pos int) int {
	top := c.current().top
	if pos < 1 || pos > len(top) {
		return 0
	}
	return top[pos-1].TotalRolls
}

// PlayerRolls returns a tracked actor's total rolls, zero when the
// actor is untracked.
func (c *Cache) PlayerRolls(actorID string) int {
	return c.current().players[actorID].aggregate.TotalRolls
}

// PlayerTierRolls returns a tracked actor's count for one tier.
func (c *Cache) PlayerTierRolls(actorID string, tier reward.Tier) int {
	player, ok := c.current().players[actorID]
	if !ok {
		return 0
	}
	return player.aggregate.TierRolls[tier]
}

// PlayerRank returns a tracked actor's 1-based rank, zero when
// unranked or untracked.
func (c *Cache) PlayerRank(actorID string) int {
	return c.current().players[actorID].rank
}

// PlayerCurrencySpent returns a tracked actor's lifetime primary
// spend.
func (c *Cache) PlayerCurrencySpent(actorID string) int {
	return c.current().players[actorID].aggregate.TotalPrimarySpent
}

// RarestTierObtained names the rarest tier a tracked actor has ever
// rolled.
func (c *Cache) RarestTierObtained(actorID string) string {
	player, ok := c.current().players[actorID]
	if !ok {
		return SentinelTier
	}
	for _, tier := range reward.TiersDescending() {
		if player.aggregate.TierRolls[tier] > 0 {
			return tier.String()
		}
	}
	return SentinelTier
}
