// Package storage defines persistence contracts for durable roll state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bubblecraft/runeforge/internal/reward"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable indicates the store is not initialized or closed.
	ErrUnavailable = errors.New("store unavailable")
)

// Location records where in the host world a roll happened. The zero
// value means no location context was supplied.
type Location struct {
	World string
	X     float64
	Y     float64
	Z     float64
}

// RollRecord is one append-only history row. Rows are never updated or
// deleted by the engine.
type RollRecord struct {
	ID            int64
	ActorID       string
	ActorName     string
	Tier          reward.Tier
	PrizeID       string
	PrizeName     string
	PrizeLevel    int
	PrimaryCost   int
	SecondaryCost int
	Location      Location
	Timestamp     time.Time
}

// PlayerAggregate is one actor's lifetime totals.
type PlayerAggregate struct {
	ActorID             string
	ActorName           string
	TotalRolls          int
	TotalPrimarySpent   int
	TotalSecondarySpent int
	TierRolls           map[reward.Tier]int
	FirstRoll           time.Time
	LastRoll            time.Time
}

// GlobalStats is the aggregate view over every actor.
type GlobalStats struct {
	TotalRolls          int
	TotalPrimarySpent   int
	TotalSecondarySpent int
	UniqueActors        int
}

// RollStore persists roll history and derived aggregates.
type RollStore interface {
	RecordRoll(ctx context.Context, record RollRecord) error
	RecordRollAsync(record RollRecord)
	GetPlayerStats(ctx context.Context, actorID string) (PlayerAggregate, error)
	GetTopPlayers(ctx context.Context, limit int) ([]PlayerAggregate, error)
	GetRecentRolls(ctx context.Context, actorID string, limit int) ([]RollRecord, error)
	GetGlobalStats(ctx context.Context) (GlobalStats, error)
	GetTierDistribution(ctx context.Context) (map[reward.Tier]int, error)
	GetRank(ctx context.Context, actorID string) (int, error)
	Close() error
}
