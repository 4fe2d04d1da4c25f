package random

import "testing"

func TestNewSeedVaries(t *testing.T) {
	t.Parallel()

	first, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	second, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	if first == second {
		t.Fatal("consecutive seeds must differ")
	}
}

func TestNewRandIsUsable(t *testing.T) {
	t.Parallel()

	rng, err := NewRand()
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	if rng.Intn(10) < 0 {
		t.Fatal("generator out of range")
	}
}
