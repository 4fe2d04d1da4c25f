package statscache

import (
	"context"
	"errors"
	"testing"

	"github.com/bubblecraft/runeforge/internal/reward"
	"github.com/bubblecraft/runeforge/internal/storage"
)

type fakeSource struct {
	global       storage.GlobalStats
	distribution map[reward.Tier]int
	top          []storage.PlayerAggregate
	players      map[string]storage.PlayerAggregate
	ranks        map[string]int
	fail         bool
}

var errSourceDown = errors.New("source down")

func (f *fakeSource) GetGlobalStats(context.Context) (storage.GlobalStats, error) {
	if f.fail {
		return storage.GlobalStats{}, errSourceDown
	}
	return f.global, nil
}

func (f *fakeSource) GetTierDistribution(context.Context) (map[reward.Tier]int, error) {
	if f.fail {
		return nil, errSourceDown
	}
	return f.distribution, nil
}

func (f *fakeSource) GetTopPlayers(context.Context, int) ([]storage.PlayerAggregate, error) {
	if f.fail {
		return nil, errSourceDown
	}
	return f.top, nil
}

func (f *fakeSource) GetPlayerStats(_ context.Context, actorID string) (storage.PlayerAggregate, error) {
	if f.fail {
		return storage.PlayerAggregate{}, errSourceDown
	}
	agg, ok := f.players[actorID]
	if !ok {
		return storage.PlayerAggregate{}, storage.ErrNotFound
	}
	return agg, nil
}

func (f *fakeSource) GetRank(_ context.Context, actorID string) (int, error) {
	if f.fail {
		return 0, errSourceDown
	}
	rank, ok := f.ranks[actorID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return rank, nil
}

type fakePresence struct {
	online []string
}

func (f fakePresence) OnlineActors(context.Context) []string { return f.online }

func populatedSource() *fakeSource {
	return &fakeSource{
		global: storage.GlobalStats{TotalRolls: 42, TotalPrimarySpent: 9000, UniqueActors: 3},
		distribution: map[reward.Tier]int{
			reward.Common: 30,
			reward.Rare:   12,
		},
		top: []storage.PlayerAggregate{
			{ActorID: "sarah", ActorName: "Sarah", TotalRolls: 25},
			{ActorID: "kim", ActorName: "Kim", TotalRolls: 17},
		},
		players: map[string]storage.PlayerAggregate{
			"sarah": {
				ActorID:           "sarah",
				ActorName:         "Sarah",
				TotalRolls:        25,
				TotalPrimarySpent: 5000,
				TierRolls: map[reward.Tier]int{
					reward.Common: 20,
					reward.Rare:   5,
				},
			},
		},
		ranks: map[string]int{"sarah": 1},
	}
}

func TestAccessorsBeforeFirstRefresh(t *testing.T) {
	t.Parallel()

	cache := New(populatedSource(), fakePresence{})
	if got := cache.GlobalTotalRolls(); got != 0 {
		t.Fatalf("total rolls = %d, want 0", got)
	}
	if got := cache.TopPlayerName(1); got != SentinelName {
		t.Fatalf("top player = %q, want %q", got, SentinelName)
	}
	if got := cache.RarestTierObtained("sarah"); got != SentinelTier {
		t.Fatalf("rarest tier = %q, want %q", got, SentinelTier)
	}
	if !cache.RefreshedAt().IsZero() {
		t.Fatal("unrefreshed cache must report zero refresh time")
	}
}

func TestRefreshPopulatesSnapshot(t *testing.T) {
	t.Parallel()

	cache := New(populatedSource(), fakePresence{online: []string{"sarah", "ghost"}})
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if got := cache.GlobalTotalRolls(); got != 42 {
		t.Fatalf("total rolls = %d, want 42", got)
	}
	if got := cache.TierCount(reward.Rare); got != 12 {
		t.Fatalf("rare count = %d, want 12", got)
	}
	if got := cache.TierCount(reward.Legendary); got != 0 {
		t.Fatalf("legendary count = %d, want 0 for unrolled tier", got)
	}
	if got := cache.TopPlayerName(1); got != "Sarah" {
		t.Fatalf("top player = %q, want Sarah", got)
	}
	if got := cache.TopPlayerRolls(2); got != 17 {
		t.Fatalf("second place rolls = %d, want 17", got)
	}
	if got := cache.TopPlayerName(3); got != SentinelName {
		t.Fatalf("unfilled position = %q, want %q", got, SentinelName)
	}
	if got := cache.PlayerRolls("sarah"); got != 25 {
		t.Fatalf("player rolls = %d, want 25", got)
	}
	if got := cache.PlayerTierRolls("sarah", reward.Rare); got != 5 {
		t.Fatalf("player rare rolls = %d, want 5", got)
	}
	if got := cache.PlayerRank("sarah"); got != 1 {
		t.Fatalf("player rank = %d, want 1", got)
	}
	if got := cache.PlayerCurrencySpent("sarah"); got != 5000 {
		t.Fatalf("currency spent = %d, want 5000", got)
	}
	if got := cache.RarestTierObtained("sarah"); got != "RARE" {
		t.Fatalf("rarest tier = %q, want RARE", got)
	}
	if got := cache.PlayerRolls("ghost"); got != 0 {
		t.Fatalf("untracked actor rolls = %d, want 0", got)
	}
	if cache.RefreshedAt().IsZero() {
		t.Fatal("refreshed cache must report a refresh time")
	}
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	source := populatedSource()
	cache := New(source, fakePresence{online: []string{"sarah"}})
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("priming refresh: %v", err)
	}
	before := cache.RefreshedAt()

	source.fail = true
	if err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if got := cache.GlobalTotalRolls(); got != 42 {
		t.Fatalf("total rolls after failed refresh = %d, want 42", got)
	}
	if got := cache.TopPlayerName(1); got != "Sarah" {
		t.Fatalf("top player after failed refresh = %q, want Sarah", got)
	}
	if got := cache.PlayerRank("sarah"); got != 1 {
		t.Fatalf("rank after failed refresh = %d, want 1", got)
	}
	if !cache.RefreshedAt().Equal(before) {
		t.Fatal("failed refresh must not move the snapshot time")
	}
}

func TestRefreshSkipsActorsWithoutStats(t *testing.T) {
	t.Parallel()

	cache := New(populatedSource(), fakePresence{online: []string{"ghost"}})
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := cache.PlayerRank("ghost"); got != 0 {
		t.Fatalf("rank = %d, want 0 for actor with no stats", got)
	}
}
