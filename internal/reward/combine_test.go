package reward

import "testing"

func TestCombineTwoCommonsYieldsOneUncommon(t *testing.T) {
	t.Parallel()

	stacks := []Stack{
		{Token: NewToken(Common, "mending"), Amount: 1},
		{Token: NewToken(Common, "sharpness"), Amount: 1},
	}
	upgraded, remaining, ok := Combine(stacks, 2)
	if !ok {
		t.Fatal("combine must succeed with exactly the required amount")
	}
	tier, genuine := upgraded.Tier()
	if !genuine || tier != Uncommon {
		t.Fatalf("upgraded tier = %v, want UNCOMMON", tier)
	}
	if len(remaining) != 0 {
		t.Fatalf("both inputs must be fully consumed, %d stacks remain", len(remaining))
	}
}

func TestCombineConsumesInStackOrder(t *testing.T) {
	t.Parallel()

	stacks := []Stack{
		{Token: NewToken(Rare, "fortune"), Amount: 3},
		{Token: NewToken(Rare, "fortune"), Amount: 2},
	}
	_, remaining, ok := Combine(stacks, 4)
	if !ok {
		t.Fatal("combine must succeed")
	}
	if len(remaining) != 1 || remaining[0].Amount != 1 {
		t.Fatalf("remaining = %+v, want one stack of 1", remaining)
	}
}

func TestCombineRequiresSharedTier(t *testing.T) {
	t.Parallel()

	stacks := []Stack{
		{Token: NewToken(Common, "mending"), Amount: 1},
		{Token: NewToken(Uncommon, "mending"), Amount: 1},
	}
	if _, _, ok := Combine(stacks, 2); ok {
		t.Fatal("mixed-tier stacks must not combine")
	}
}

func TestCombineRejectsForgedTokens(t *testing.T) {
	t.Parallel()

	stacks := []Stack{
		{Token: NewToken(Common, "mending"), Amount: 1},
		{Token: Token{}.WithDisplay(Display{Name: "COMMON Rune"}), Amount: 1},
	}
	if _, _, ok := Combine(stacks, 2); ok {
		t.Fatal("forged token must not participate in a combine")
	}
}

func TestCombineTopTierCannotUpgrade(t *testing.T) {
	t.Parallel()

	stacks := []Stack{{Token: NewToken(VerySpecial, NoPrize), Amount: 2}}
	if _, _, ok := Combine(stacks, 2); ok {
		t.Fatal("top tier must not combine")
	}
}

func TestCombineInsufficientAmountConsumesNothing(t *testing.T) {
	t.Parallel()

	stacks := []Stack{{Token: NewToken(Common, "mending"), Amount: 1}}
	_, remaining, ok := Combine(stacks, 2)
	if ok {
		t.Fatal("combine must fail below the required amount")
	}
	if len(remaining) != 1 || remaining[0].Amount != 1 {
		t.Fatalf("failed combine must leave inputs untouched, got %+v", remaining)
	}
}

func TestCombineClampsRequirementToMinimum(t *testing.T) {
	t.Parallel()

	stacks := []Stack{{Token: NewToken(Common, "mending"), Amount: 2}}
	if _, _, ok := Combine(stacks, 1); !ok {
		t.Fatal("requirement of 1 must clamp to 2 and still combine")
	}
	stacks = []Stack{{Token: NewToken(Common, "mending"), Amount: 1}}
	if _, _, ok := Combine(stacks, 0); ok {
		t.Fatal("single token must not satisfy the clamped requirement")
	}
}
