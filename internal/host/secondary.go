package host

import (
	"context"
	"log"

	"github.com/bubblecraft/runeforge/internal/platform/errors"
)

// NullSecondary is the disabled secondary economy. It reports zero
// balances and accepts every mutation as a no-op, so call sites never
// need nil checks.
type NullSecondary struct{}

func (NullSecondary) Enabled() bool { return false }

func (NullSecondary) SecondaryBalance(context.Context, string, string) (int, error) {
	return 0, nil
}

func (NullSecondary) DeductSecondary(context.Context, string, string, int) error { return nil }

func (NullSecondary) AddSecondary(context.Context, string, string, int) error { return nil }

func (NullSecondary) Probe(context.Context) error { return nil }

// ProbeSecondary runs the provider's capability probe once and decides
// whether the secondary economy stays live. Any probe failure downgrades
// the process to the null provider for its remaining lifetime, so
// grants proceed primary-only instead of failing per call.
func ProbeSecondary(ctx context.Context, provider SecondaryCurrency) SecondaryCurrency {
	if provider == nil {
		return NullSecondary{}
	}
	if err := provider.Probe(ctx); err != nil {
		wrapped := errors.Wrap(errors.CodeProviderIncompatible, "secondary currency probe failed", err)
		log.Printf("disabling secondary currency: %v", wrapped)
		return NullSecondary{}
	}
	return provider
}
