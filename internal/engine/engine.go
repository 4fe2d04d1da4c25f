// Package engine grants reward tokens. A grant walks a fixed sequence
// of states (validate, deduct, create, commit) and either finishes with
// a delivered token or fails having restored every balance it touched.
package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bubblecraft/runeforge/internal/catalog"
	"github.com/bubblecraft/runeforge/internal/cooldown"
	"github.com/bubblecraft/runeforge/internal/host"
	"github.com/bubblecraft/runeforge/internal/ledger"
	"github.com/bubblecraft/runeforge/internal/platform/errors"
	"github.com/bubblecraft/runeforge/internal/random"
	"github.com/bubblecraft/runeforge/internal/reward"
	"github.com/bubblecraft/runeforge/internal/storage"
)

const tracerName = "github.com/bubblecraft/runeforge/internal/engine"

// Milestone pairs a lifetime roll count with the tier of the bonus
// token granted when an actor reaches it.
type Milestone struct {
	Rolls int
	Tier  reward.Tier
}

// Options carries the engine's collaborators. Catalog, Primary and
// Inventory are required; everything else has a working default.
type Options struct {
	Catalog   *catalog.Catalog
	Cooldowns *cooldown.Tracker
	Ledger    *ledger.Ledger
	Store     storage.RollStore
	Primary   host.PrimaryCurrency
	Secondary host.SecondaryCurrency
	Inventory host.Inventory

	// SecondaryCurrencyID names the balance charged on the optional
	// economy, for example "gems".
	SecondaryCurrencyID string
	Milestones          []Milestone

	Rand *rand.Rand
	Now  func() time.Time
}

// Engine coordinates one grant at a time per actor. Callers must
// serialize Grant calls that touch the same actor's host state; the
// engine itself adds no per-actor locking.
type Engine struct {
	catalog    *catalog.Catalog
	cooldowns  *cooldown.Tracker
	ledger     *ledger.Ledger
	store      storage.RollStore
	primary    host.PrimaryCurrency
	secondary  host.SecondaryCurrency
	inventory  host.Inventory
	currencyID string
	milestones []Milestone
	tracer     trace.Tracer
	now        func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds an engine from its collaborators.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if opts.Primary == nil {
		return nil, fmt.Errorf("primary currency provider is required")
	}
	if opts.Inventory == nil {
		return nil, fmt.Errorf("inventory provider is required")
	}
	cooldowns := opts.Cooldowns
	if cooldowns == nil {
		cooldowns = cooldown.New(0)
	}
	rollLedger := opts.Ledger
	if rollLedger == nil {
		rollLedger = ledger.New()
	}
	// One capability probe decides whether the secondary economy is
	// live for this engine's lifetime.
	secondary := host.ProbeSecondary(context.Background(), opts.Secondary)
	rng := opts.Rand
	if rng == nil {
		var err error
		rng, err = random.NewRand()
		if err != nil {
			return nil, fmt.Errorf("seed rng: %w", err)
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	milestones := make([]Milestone, len(opts.Milestones))
	copy(milestones, opts.Milestones)
	sort.Slice(milestones, func(i, j int) bool {
		return milestones[i].Rolls < milestones[j].Rolls
	})

	return &Engine{
		catalog:    opts.Catalog,
		cooldowns:  cooldowns,
		ledger:     rollLedger,
		store:      opts.Store,
		primary:    opts.Primary,
		secondary:  secondary,
		inventory:  opts.Inventory,
		currencyID: opts.SecondaryCurrencyID,
		milestones: milestones,
		tracer:     otel.Tracer(tracerName),
		now:        now,
		rng:        rng,
	}, nil
}

// GrantRequest describes one grant attempt.
type GrantRequest struct {
	ActorID   string
	ActorName string
	Tier      reward.Tier
	Location  storage.Location

	// Preview conceals the prize until the token is revealed.
	Preview bool
}

// GrantResult reports a finished grant. Milestones lists any bonus
// tokens delivered alongside the main one.
type GrantResult struct {
	Token         reward.Token
	Tier          reward.Tier
	PrizeID       string
	PrimaryCost   int
	SecondaryCost int
	Milestones    []reward.Token
}

func (e *Engine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(n)
}

// Grant runs the full state machine for one token. On any failure past
// deduction both balances are restored before the error returns; a
// non-nil error always means the actor holds exactly what they held
// before the call.
func (e *Engine) Grant(ctx context.Context, req GrantRequest) (GrantResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Grant")
	defer span.End()
	span.SetAttributes(attribute.String("grant.tier", req.Tier.String()))

	result, err := e.grant(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("grant.outcome", string(errors.CodeOf(err))))
		return GrantResult{}, err
	}
	span.SetAttributes(
		attribute.String("grant.outcome", "OK"),
		attribute.Int("grant.primary_cost", result.PrimaryCost),
		attribute.Int("grant.secondary_cost", result.SecondaryCost),
	)
	return result, nil
}

func (e *Engine) grant(ctx context.Context, req GrantRequest) (GrantResult, error) {
	if err := ctx.Err(); err != nil {
		return GrantResult{}, err
	}

	// Validating
	if req.ActorID == "" {
		return GrantResult{}, errors.New(errors.CodeInvalidTier, "actor id is required")
	}
	if !req.Tier.Valid() || !e.catalog.Has(req.Tier) {
		return GrantResult{}, errors.WithMetadata(errors.CodeInvalidTier, "tier is not configured", map[string]string{
			"tier": strconv.Itoa(int(req.Tier)),
		})
	}
	if e.cooldowns.IsBlocked(req.ActorID) {
		return GrantResult{}, errors.WithMetadata(errors.CodeBlocked, "actor is on cooldown", map[string]string{
			"remaining_seconds": strconv.Itoa(e.cooldowns.RemainingSeconds(req.ActorID)),
		})
	}

	minCost, ok := e.catalog.MinCost(req.Tier)
	if !ok {
		return GrantResult{}, errors.New(errors.CodeInvalidTier, "tier is not configured")
	}
	maxCost, _ := e.catalog.MaxCost(req.Tier)

	balance, err := e.primary.PrimaryBalance(ctx, req.ActorID)
	if err != nil {
		return GrantResult{}, errors.Wrap(errors.CodeUnknown, "read primary balance", err)
	}
	if balance < minCost {
		return GrantResult{}, errors.WithMetadata(errors.CodeInsufficientPrimary, "primary balance below tier cost", map[string]string{
			"balance":  strconv.Itoa(balance),
			"min_cost": strconv.Itoa(minCost),
		})
	}

	secondaryCost := 0
	if e.secondary.Enabled() {
		secondaryCost = e.catalog.SecondaryCost(req.Tier)
	}
	if secondaryCost > 0 {
		secondaryBalance, err := e.secondary.SecondaryBalance(ctx, req.ActorID, e.currencyID)
		if err != nil {
			return GrantResult{}, errors.Wrap(errors.CodeUnknown, "read secondary balance", err)
		}
		if secondaryBalance < secondaryCost {
			return GrantResult{}, errors.WithMetadata(errors.CodeInsufficientSecondary, "secondary balance below tier cost", map[string]string{
				"balance": strconv.Itoa(secondaryBalance),
				"cost":    strconv.Itoa(secondaryCost),
			})
		}
	}

	hasSpace, err := e.inventory.HasSpace(ctx, req.ActorID)
	if err != nil {
		return GrantResult{}, errors.Wrap(errors.CodeUnknown, "check inventory space", err)
	}
	if !hasSpace {
		return GrantResult{}, errors.New(errors.CodeNoSpace, "no inventory space for token")
	}

	// Deducting. The draw ceiling is clamped to the live balance so the
	// deduction can never go negative.
	upper := maxCost
	if balance < upper {
		upper = balance
	}
	cost := minCost
	if upper > minCost {
		cost += e.intn(upper - minCost + 1)
	}
	if err := e.primary.SetPrimaryBalance(ctx, req.ActorID, balance-cost); err != nil {
		return GrantResult{}, errors.Wrap(errors.CodeUnknown, "deduct primary balance", err)
	}
	if secondaryCost > 0 {
		if err := e.secondary.DeductSecondary(ctx, req.ActorID, e.currencyID, secondaryCost); err != nil {
			if restoreErr := e.primary.SetPrimaryBalance(ctx, req.ActorID, balance); restoreErr != nil {
				log.Printf("restore primary balance for %s: %v", req.ActorID, restoreErr)
			}
			return GrantResult{}, errors.Wrap(errors.CodeSecondaryDeductFailed, "secondary deduction failed", err)
		}
	}

	// Creating
	prizeID, _ := e.randomPrize(req.Tier)
	var token reward.Token
	if req.Preview {
		token = reward.NewPreviewToken(req.Tier, prizeID)
	} else {
		token = reward.NewToken(req.Tier, prizeID)
	}

	// Committing
	if err := e.inventory.AddToken(ctx, req.ActorID, token); err != nil {
		e.refund(ctx, req.ActorID, balance, secondaryCost)
		return GrantResult{}, errors.Wrap(errors.CodeCreationFailed, "deliver token", err)
	}

	e.ledger.RecordRoll(req.ActorID, req.Tier)
	e.ledger.RecordCurrencySpent(req.ActorID, cost)
	if e.store != nil {
		e.store.RecordRollAsync(storage.RollRecord{
			ActorID:       req.ActorID,
			ActorName:     req.ActorName,
			Tier:          req.Tier,
			PrizeID:       prizeID,
			PrizeName:     prizeID,
			PrizeLevel:    token.PrizeLevel(),
			PrimaryCost:   cost,
			SecondaryCost: secondaryCost,
			Location:      req.Location,
			Timestamp:     e.now(),
		})
	}
	e.cooldowns.SetCooldown(req.ActorID)
	awarded := e.deliverMilestones(ctx, req.ActorID)

	return GrantResult{
		Token:         token,
		Tier:          req.Tier,
		PrizeID:       prizeID,
		PrimaryCost:   cost,
		SecondaryCost: secondaryCost,
		Milestones:    awarded,
	}, nil
}

// refund restores both balances after a failure past the Deducting
// state. Refund failures are logged; there is nothing further to
// unwind.
func (e *Engine) refund(ctx context.Context, actorID string, primaryBefore, secondaryCost int) {
	if err := e.primary.SetPrimaryBalance(ctx, actorID, primaryBefore); err != nil {
		log.Printf("refund primary balance for %s: %v", actorID, err)
	}
	if secondaryCost > 0 {
		if err := e.secondary.AddSecondary(ctx, actorID, e.currencyID, secondaryCost); err != nil {
			log.Printf("refund secondary balance for %s: %v", actorID, err)
		}
	}
}

func (e *Engine) randomPrize(tier reward.Tier) (string, bool) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.catalog.RandomPrizeID(tier, e.rng)
}

func (e *Engine) deliverMilestones(ctx context.Context, actorID string) []reward.Token {
	var awarded []reward.Token
	for _, milestone := range e.milestones {
		if !e.ledger.ShouldTriggerMilestone(actorID, milestone.Rolls) {
			continue
		}
		token, err := e.CreateToken(milestone.Tier)
		if err != nil {
			log.Printf("create milestone token for %s at %d rolls: %v", actorID, milestone.Rolls, err)
			continue
		}
		if err := e.inventory.AddToken(ctx, actorID, token); err != nil {
			log.Printf("deliver milestone token for %s at %d rolls: %v", actorID, milestone.Rolls, err)
			continue
		}
		awarded = append(awarded, token)
	}
	return awarded
}

// CreateToken mints a token outside the grant path, bypassing cost and
// cooldown checks. Administrative and merge flows use it.
func (e *Engine) CreateToken(tier reward.Tier) (reward.Token, error) {
	if !tier.Valid() || !e.catalog.Has(tier) {
		return reward.Token{}, errors.New(errors.CodeInvalidTier, "tier is not configured")
	}
	prizeID, _ := e.randomPrize(tier)
	return reward.NewToken(tier, prizeID), nil
}

// HighestAffordableTier scans from highest to lowest rarity and returns
// the first tier the actor can pay for. ok is false when no tier is
// within reach.
func (e *Engine) HighestAffordableTier(ctx context.Context, actorID string) (reward.Tier, bool, error) {
	affordable, err := e.affordableTiers(ctx, actorID)
	if err != nil {
		return 0, false, err
	}
	if len(affordable) == 0 {
		return 0, false, nil
	}
	return affordable[len(affordable)-1], true, nil
}

// RandomAffordableTier picks uniformly among every tier the actor can
// pay for.
func (e *Engine) RandomAffordableTier(ctx context.Context, actorID string) (reward.Tier, bool, error) {
	affordable, err := e.affordableTiers(ctx, actorID)
	if err != nil {
		return 0, false, err
	}
	if len(affordable) == 0 {
		return 0, false, nil
	}
	return affordable[e.intn(len(affordable))], true, nil
}

// affordableTiers returns affordable tiers in ascending rarity order.
// It reads balances once; Grant re-validates independently because the
// balance can move between selection and grant.
func (e *Engine) affordableTiers(ctx context.Context, actorID string) ([]reward.Tier, error) {
	balance, err := e.primary.PrimaryBalance(ctx, actorID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "read primary balance", err)
	}
	secondaryBalance := 0
	secondaryEnabled := e.secondary.Enabled()
	if secondaryEnabled {
		secondaryBalance, err = e.secondary.SecondaryBalance(ctx, actorID, e.currencyID)
		if err != nil {
			return nil, errors.Wrap(errors.CodeUnknown, "read secondary balance", err)
		}
	}

	var affordable []reward.Tier
	for _, tier := range e.catalog.Tiers() {
		minCost, ok := e.catalog.MinCost(tier)
		if !ok || balance < minCost {
			continue
		}
		if secondaryEnabled {
			if cost := e.catalog.SecondaryCost(tier); cost > 0 && secondaryBalance < cost {
				continue
			}
		}
		affordable = append(affordable, tier)
	}
	return affordable, nil
}

// RollTier samples the catalog's weighted table.
func (e *Engine) RollTier() reward.Tier {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.catalog.RollTier(e.rng)
}

// RollTierWithLuck rolls 1 + floor(luck*3) weighted samples and keeps
// the rarest. luck is clamped to [0, 1]; zero luck is a plain roll.
func (e *Engine) RollTierWithLuck(luck float64) reward.Tier {
	if luck <= 0 {
		return e.RollTier()
	}
	if luck > 1 {
		luck = 1
	}
	samples := 1 + int(luck*3)

	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	best := e.catalog.RollTier(e.rng)
	for i := 1; i < samples; i++ {
		if tier := e.catalog.RollTier(e.rng); tier > best {
			best = tier
		}
	}
	return best
}
