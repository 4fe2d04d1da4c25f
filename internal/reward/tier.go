// Package reward holds the tier lattice and the reward token value object.
//
// Tokens carry opaque provenance set only at mint time. Authenticity and
// tier are answered from that provenance, never from display text, so a
// token that merely looks like a reward does not pass as one.
package reward

import "strings"

// Tier is an ordered rarity rank, lowest to highest.
type Tier int

const (
	Common Tier = iota
	Uncommon
	Rare
	Epic
	Legendary
	Special
	VerySpecial
)

// Tiers returns all tiers ordered from lowest to highest rarity.
func Tiers() []Tier {
	return []Tier{Common, Uncommon, Rare, Epic, Legendary, Special, VerySpecial}
}

// TiersDescending returns all tiers ordered from highest to lowest rarity.
func TiersDescending() []Tier {
	return []Tier{VerySpecial, Special, Legendary, Epic, Rare, Uncommon, Common}
}

func (t Tier) String() string {
	switch t {
	case Common:
		return "COMMON"
	case Uncommon:
		return "UNCOMMON"
	case Rare:
		return "RARE"
	case Epic:
		return "EPIC"
	case Legendary:
		return "LEGENDARY"
	case Special:
		return "SPECIAL"
	case VerySpecial:
		return "VERYSPECIAL"
	default:
		return "UNKNOWN"
	}
}

// Key returns the lowercase configuration key for the tier.
func (t Tier) Key() string {
	return strings.ToLower(t.String())
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= Common && t <= VerySpecial
}

// Next returns the immediately higher tier. ok is false at the top of the
// lattice.
func (t Tier) Next() (Tier, bool) {
	if !t.Valid() || t == VerySpecial {
		return 0, false
	}
	return t + 1, true
}

// ParseTier maps a tier name (any case) back to its Tier value.
func ParseTier(name string) (Tier, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "COMMON":
		return Common, true
	case "UNCOMMON":
		return Uncommon, true
	case "RARE":
		return Rare, true
	case "EPIC":
		return Epic, true
	case "LEGENDARY":
		return Legendary, true
	case "SPECIAL":
		return Special, true
	case "VERYSPECIAL":
		return VerySpecial, true
	default:
		return 0, false
	}
}
