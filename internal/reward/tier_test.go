package reward

import "testing"

func TestTierOrderAndNext(t *testing.T) {
	t.Parallel()

	order := Tiers()
	if len(order) != 7 {
		t.Fatalf("expected 7 tiers, got %d", len(order))
	}
	for i := 0; i < len(order)-1; i++ {
		next, ok := order[i].Next()
		if !ok {
			t.Fatalf("%v must have a next tier", order[i])
		}
		if next != order[i+1] {
			t.Fatalf("next of %v = %v, want %v", order[i], next, order[i+1])
		}
	}
	if _, ok := VerySpecial.Next(); ok {
		t.Fatal("top tier must not have a next tier")
	}
}

func TestParseTierRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tier := range Tiers() {
		got, ok := ParseTier(tier.String())
		if !ok || got != tier {
			t.Fatalf("ParseTier(%q) = %v, %v", tier.String(), got, ok)
		}
		got, ok = ParseTier(tier.Key())
		if !ok || got != tier {
			t.Fatalf("ParseTier(%q) = %v, %v", tier.Key(), got, ok)
		}
	}
	if _, ok := ParseTier("mythic"); ok {
		t.Fatal("unknown tier name must not parse")
	}
}

func TestTiersDescendingMirrorsAscending(t *testing.T) {
	t.Parallel()

	asc := Tiers()
	desc := TiersDescending()
	for i := range asc {
		if asc[i] != desc[len(desc)-1-i] {
			t.Fatalf("descending order mismatch at %d", i)
		}
	}
}
