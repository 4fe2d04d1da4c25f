// Package hostfakes provides in-memory host collaborator fakes for
// tests.
package hostfakes

import (
	"context"
	"fmt"

	"github.com/bubblecraft/runeforge/internal/reward"
)

// Currency is an in-memory primary and secondary currency fake.
type Currency struct {
	Primary   map[string]int
	Secondary map[string]int

	// Live mirrors a healthy external economy; set false to act as the
	// null provider.
	Live bool
	// FailDeduct makes every secondary deduction fail.
	FailDeduct bool
	// FailProbe makes the startup capability probe fail.
	FailProbe bool
}

// NewCurrency constructs a Currency fake with initialized balance maps.
func NewCurrency() *Currency {
	return &Currency{
		Primary:   make(map[string]int),
		Secondary: make(map[string]int),
		Live:      true,
	}
}

func (c *Currency) PrimaryBalance(_ context.Context, actorID string) (int, error) {
	return c.Primary[actorID], nil
}

func (c *Currency) SetPrimaryBalance(_ context.Context, actorID string, value int) error {
	c.Primary[actorID] = value
	return nil
}

func (c *Currency) Enabled() bool { return c.Live }

func (c *Currency) SecondaryBalance(_ context.Context, actorID, _ string) (int, error) {
	return c.Secondary[actorID], nil
}

func (c *Currency) DeductSecondary(_ context.Context, actorID, _ string, amount int) error {
	if c.FailDeduct {
		return fmt.Errorf("economy backend unreachable")
	}
	if c.Secondary[actorID] < amount {
		return fmt.Errorf("balance below %d", amount)
	}
	c.Secondary[actorID] -= amount
	return nil
}

func (c *Currency) AddSecondary(_ context.Context, actorID, _ string, amount int) error {
	c.Secondary[actorID] += amount
	return nil
}

func (c *Currency) Probe(context.Context) error {
	if c.FailProbe {
		return fmt.Errorf("probe rejected")
	}
	return nil
}

// Inventory is an in-memory token inventory fake.
type Inventory struct {
	Tokens map[string][]reward.Token

	// Capacity caps tokens per actor; zero means unlimited.
	Capacity int
	// FailAdd makes every token delivery fail.
	FailAdd bool
}

// NewInventory constructs an Inventory fake with initialized state.
func NewInventory() *Inventory {
	return &Inventory{Tokens: make(map[string][]reward.Token)}
}

func (i *Inventory) HasSpace(_ context.Context, actorID string) (bool, error) {
	if i.Capacity <= 0 {
		return true, nil
	}
	return len(i.Tokens[actorID]) < i.Capacity, nil
}

func (i *Inventory) AddToken(_ context.Context, actorID string, token reward.Token) error {
	if i.FailAdd {
		return fmt.Errorf("inventory rejected token")
	}
	i.Tokens[actorID] = append(i.Tokens[actorID], token)
	return nil
}

// Presence is a fixed online-actor set fake.
type Presence struct {
	Online []string
}

func (p Presence) OnlineActors(context.Context) []string { return p.Online }
