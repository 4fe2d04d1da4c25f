package reward

import "testing"

func TestNewTokenIsGenuineWithTier(t *testing.T) {
	t.Parallel()

	tok := NewToken(Rare, "sharpness")
	if !tok.Genuine() {
		t.Fatal("minted token must be genuine")
	}
	tier, ok := tok.Tier()
	if !ok || tier != Rare {
		t.Fatalf("tier = %v, %v, want RARE, true", tier, ok)
	}
	prize, ok := tok.PrizeID()
	if !ok || prize != "sharpness" {
		t.Fatalf("prize = %q, %v, want sharpness, true", prize, ok)
	}
}

func TestForgedTokenIsNotGenuine(t *testing.T) {
	t.Parallel()

	// Same display text as a real legendary token, no provenance.
	forged := Token{}.WithDisplay(Display{Name: "LEGENDARY Rune", Lore: []string{"A rare find"}})
	if forged.Genuine() {
		t.Fatal("token without provenance must not be genuine")
	}
	if _, ok := forged.Tier(); ok {
		t.Fatal("forged token must not report a tier")
	}
	if _, ok := forged.PrizeID(); ok {
		t.Fatal("forged token must not report a prize")
	}
}

func TestDisplayDoesNotAffectProvenance(t *testing.T) {
	t.Parallel()

	tok := NewToken(Common, "mending").WithDisplay(Display{Name: "VERYSPECIAL Rune"})
	tier, ok := tok.Tier()
	if !ok || tier != Common {
		t.Fatalf("tier = %v, want COMMON despite display text", tier)
	}
}

func TestPreviewTokenConcealsPrizeUntilReveal(t *testing.T) {
	t.Parallel()

	tok := NewPreviewToken(Epic, "fortune")
	if !tok.Concealed() {
		t.Fatal("preview token must start concealed")
	}
	if prize, ok := tok.PrizeID(); ok || prize != NoPrize {
		t.Fatalf("concealed prize leaked: %q, %v", prize, ok)
	}

	revealed, prize, ok := tok.Reveal()
	if !ok || prize != "fortune" {
		t.Fatalf("reveal = %q, %v, want fortune, true", prize, ok)
	}
	if revealed.Concealed() {
		t.Fatal("revealed token must not stay concealed")
	}
	if got, ok := revealed.PrizeID(); !ok || got != "fortune" {
		t.Fatalf("revealed prize = %q, %v", got, ok)
	}
}

func TestRevealOnPlainTokenFails(t *testing.T) {
	t.Parallel()

	if _, _, ok := NewToken(Common, "mending").Reveal(); ok {
		t.Fatal("plain token must not reveal")
	}
	if _, _, ok := (Token{}).Reveal(); ok {
		t.Fatal("forged token must not reveal")
	}
}

func TestEmptyPrizeNormalizesToNone(t *testing.T) {
	t.Parallel()

	prize, ok := NewToken(Common, "").PrizeID()
	if !ok || prize != NoPrize {
		t.Fatalf("prize = %q, want %q", prize, NoPrize)
	}
}
