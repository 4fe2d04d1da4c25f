// Package host declares the collaborator interfaces the reward engine
// expects from the embedding process. The engine never talks to the
// platform directly; every outbound call goes through one of these.
package host

import (
	"context"

	"github.com/bubblecraft/runeforge/internal/reward"
)

// PrimaryCurrency exposes the host's built-in balance. The engine reads
// and writes whole balances so refunds restore the exact prior value.
type PrimaryCurrency interface {
	PrimaryBalance(ctx context.Context, actorID string) (int, error)
	SetPrimaryBalance(ctx context.Context, actorID string, value int) error
}

// SecondaryCurrency is the optional external economy. Implementations
// come from third-party integrations and may be absent or incompatible;
// callers obtain one through ProbeSecondary rather than constructing
// adapters directly.
type SecondaryCurrency interface {
	// Enabled reports whether the provider is live. The null provider
	// returns false and the engine skips secondary charging entirely.
	Enabled() bool
	SecondaryBalance(ctx context.Context, actorID, currencyID string) (int, error)
	DeductSecondary(ctx context.Context, actorID, currencyID string, amount int) error
	AddSecondary(ctx context.Context, actorID, currencyID string, amount int) error
	// Probe performs one no-op capability check against the backing
	// integration. It is called once at startup.
	Probe(ctx context.Context) error
}

// Inventory hands minted tokens to the actor.
type Inventory interface {
	HasSpace(ctx context.Context, actorID string) (bool, error)
	AddToken(ctx context.Context, actorID string, token reward.Token) error
}

// Presence reports which actors are currently connected. The stats
// cache uses it to decide whose aggregates to keep warm.
type Presence interface {
	OnlineActors(ctx context.Context) []string
}
