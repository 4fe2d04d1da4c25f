// Package catalog holds the hot-reloadable tier configuration: weights,
// cost ranges and prize pools.
//
// The active catalog is an immutable snapshot behind an atomic pointer, so
// a reload never exposes a half-updated view to concurrent readers.
package catalog

import (
	"math"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/bubblecraft/runeforge/internal/reward"
)

// Default primary-cost bounds applied to the built-in fallback tiers,
// mirroring the legacy global cost range.
const (
	DefaultPrimaryCostMin = 1000
	DefaultPrimaryCostMax = 10000
)

// tierConfig is the resolved per-tier configuration inside a snapshot.
type tierConfig struct {
	weight         float64
	primaryCostMin int
	primaryCostMax int
	secondaryCost  int
	hasSecondary   bool
	prizes         []string
}

// cumEntry is one step of the cumulative-weight table used for O(log n)
// weighted sampling.
type cumEntry struct {
	upper float64
	tier  reward.Tier
}

type snapshot struct {
	tiers           map[reward.Tier]tierConfig
	cumulative      []cumEntry
	totalWeight     float64
	globalSecondary int
}

// Catalog is the active tier configuration. The zero value is not usable;
// construct with New.
type Catalog struct {
	snap       atomic.Pointer[snapshot]
	multiplier atomic.Uint64 // float64 bits, applied to cost bounds at read time
}

// New returns a catalog holding the built-in default tiers with a cost
// multiplier of 1.0.
func New() *Catalog {
	c := &Catalog{}
	c.SetMultiplier(1.0)
	c.Reload(Definitions{})
	return c
}

// Reload replaces the active catalog from parsed definitions.
//
// Tiers with weight <= 0 stay queryable for cost and prize lookups but are
// excluded from weighted sampling. When no tier carries a positive weight
// the built-in 4-tier default (60/25/10/5) takes over.
func (c *Catalog) Reload(defs Definitions) {
	next := &snapshot{
		tiers:           make(map[reward.Tier]tierConfig),
		globalSecondary: defs.Economy.SecondaryCost,
	}

	for name, def := range defs.Tiers {
		tier, ok := reward.ParseTier(name)
		if !ok {
			continue
		}
		cfg := tierConfig{
			weight:         def.Weight,
			primaryCostMin: def.PrimaryCost.Min,
			primaryCostMax: def.PrimaryCost.Max,
			prizes:         append([]string(nil), def.Prizes...),
		}
		if cfg.primaryCostMin < 0 {
			cfg.primaryCostMin = 0
		}
		if cfg.primaryCostMax < cfg.primaryCostMin {
			cfg.primaryCostMax = cfg.primaryCostMin
		}
		if def.SecondaryCost != nil {
			cfg.secondaryCost = *def.SecondaryCost
			cfg.hasSecondary = true
			if cfg.secondaryCost < 0 {
				cfg.secondaryCost = 0
			}
		}
		next.tiers[tier] = cfg
	}

	total := 0.0
	for _, tier := range reward.Tiers() {
		cfg, ok := next.tiers[tier]
		if !ok || cfg.weight <= 0 {
			continue
		}
		total += cfg.weight
		next.cumulative = append(next.cumulative, cumEntry{upper: total, tier: tier})
	}

	if len(next.cumulative) == 0 {
		next.applyDefaultTiers()
	} else {
		next.totalWeight = total
	}

	c.snap.Store(next)
}

// applyDefaultTiers installs the built-in 4-tier fallback.
func (s *snapshot) applyDefaultTiers() {
	defaults := []struct {
		tier   reward.Tier
		weight float64
	}{
		{reward.Common, 60},
		{reward.Uncommon, 25},
		{reward.Rare, 10},
		{reward.Legendary, 5},
	}
	total := 0.0
	s.cumulative = s.cumulative[:0]
	for _, d := range defaults {
		if _, exists := s.tiers[d.tier]; !exists {
			s.tiers[d.tier] = tierConfig{
				weight:         d.weight,
				primaryCostMin: DefaultPrimaryCostMin,
				primaryCostMax: DefaultPrimaryCostMax,
			}
		}
		total += d.weight
		s.cumulative = append(s.cumulative, cumEntry{upper: total, tier: d.tier})
	}
	s.totalWeight = total
}

// SetMultiplier sets the global primary-cost multiplier applied at read
// time. Negative values clamp to 0.
func (c *Catalog) SetMultiplier(m float64) {
	if m < 0 || math.IsNaN(m) {
		m = 0
	}
	c.multiplier.Store(math.Float64bits(m))
}

// Multiplier returns the current global primary-cost multiplier.
func (c *Catalog) Multiplier() float64 {
	return math.Float64frombits(c.multiplier.Load())
}

// scaleCost applies the multiplier to a configured cost bound.
func (c *Catalog) scaleCost(v int) int {
	scaled := int(math.Round(float64(v) * c.Multiplier()))
	if scaled < 0 {
		return 0
	}
	return scaled
}

// Has reports whether the tier is present in the active catalog.
func (c *Catalog) Has(tier reward.Tier) bool {
	_, ok := c.snap.Load().tiers[tier]
	return ok
}

// MinCost returns the tier's minimum primary-currency cost after the global
// multiplier. ok is false for tiers absent from the catalog.
func (c *Catalog) MinCost(tier reward.Tier) (int, bool) {
	cfg, ok := c.snap.Load().tiers[tier]
	if !ok {
		return 0, false
	}
	return c.scaleCost(cfg.primaryCostMin), true
}

// MaxCost returns the tier's maximum primary-currency cost after the global
// multiplier, never below MinCost. ok is false for tiers absent from the
// catalog.
func (c *Catalog) MaxCost(tier reward.Tier) (int, bool) {
	cfg, ok := c.snap.Load().tiers[tier]
	if !ok {
		return 0, false
	}
	minCost := c.scaleCost(cfg.primaryCostMin)
	maxCost := c.scaleCost(cfg.primaryCostMax)
	if maxCost < minCost {
		maxCost = minCost
	}
	return maxCost, true
}

// SecondaryCost returns the tier's secondary-currency cost: the per-tier
// override when present, else the global fallback.
func (c *Catalog) SecondaryCost(tier reward.Tier) int {
	snap := c.snap.Load()
	if cfg, ok := snap.tiers[tier]; ok && cfg.hasSecondary {
		return cfg.secondaryCost
	}
	if snap.globalSecondary < 0 {
		return 0
	}
	return snap.globalSecondary
}

// RandomPrizeID picks uniformly from the tier's prize pool. ok is false and
// the NoPrize sentinel returned when the pool is empty.
func (c *Catalog) RandomPrizeID(tier reward.Tier, rng *rand.Rand) (string, bool) {
	cfg, ok := c.snap.Load().tiers[tier]
	if !ok || len(cfg.prizes) == 0 {
		return reward.NoPrize, false
	}
	return cfg.prizes[rng.Intn(len(cfg.prizes))], true
}

// NextTier returns the immediately higher tier, or ok false at the top.
func (c *Catalog) NextTier(tier reward.Tier) (reward.Tier, bool) {
	return tier.Next()
}

// RollTier samples the cumulative-weight table. Weightless tiers never come
// up.
func (c *Catalog) RollTier(rng *rand.Rand) reward.Tier {
	snap := c.snap.Load()
	r := rng.Float64() * snap.totalWeight
	idx := sort.Search(len(snap.cumulative), func(i int) bool {
		return snap.cumulative[i].upper > r
	})
	if idx >= len(snap.cumulative) {
		idx = len(snap.cumulative) - 1
	}
	return snap.cumulative[idx].tier
}

// Tiers returns the tiers present in the active catalog, lowest to highest.
func (c *Catalog) Tiers() []reward.Tier {
	snap := c.snap.Load()
	out := make([]reward.Tier, 0, len(snap.tiers))
	for _, tier := range reward.Tiers() {
		if _, ok := snap.tiers[tier]; ok {
			out = append(out, tier)
		}
	}
	return out
}
