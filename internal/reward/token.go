package reward

// NoPrize is the sentinel prize identifier for tokens minted without a
// concrete prize attached (milestone bonuses, merge results).
const NoPrize = "none"

// Display is cosmetic presentation for a token. It is never consulted when
// deciding authenticity or tier.
type Display struct {
	Name string
	Lore []string
}

// provenance is the opaque mint marker. Only this package can set it, so a
// Token assembled anywhere else reports as not genuine.
type provenance struct {
	genuine bool
	tier    Tier
}

// Token is a grantable reward of a given tier.
//
// The zero Token is a blank, non-genuine item. Tokens are immutable values;
// WithDisplay and Reveal return copies.
type Token struct {
	prizeID    string
	prizeLevel int
	concealed  bool
	display    Display
	mark       provenance
}

// NewToken mints a genuine token of the given tier carrying prizeID.
// An empty prizeID is normalized to NoPrize.
func NewToken(tier Tier, prizeID string) Token {
	if prizeID == "" {
		prizeID = NoPrize
	}
	return Token{
		prizeID:    prizeID,
		prizeLevel: 1,
		mark:       provenance{genuine: true, tier: tier},
	}
}

// NewPreviewToken mints a genuine token whose prize stays concealed until
// Reveal is called. The concealed prize id rides in token metadata, not in
// display text.
func NewPreviewToken(tier Tier, concealedPrizeID string) Token {
	t := NewToken(tier, concealedPrizeID)
	t.concealed = true
	return t
}

// Genuine reports whether the token was minted by this package.
func (t Token) Genuine() bool {
	return t.mark.genuine
}

// Tier returns the tier recorded in the token's provenance. ok is false for
// non-genuine tokens.
func (t Token) Tier() (Tier, bool) {
	if !t.mark.genuine {
		return 0, false
	}
	return t.mark.tier, true
}

// Concealed reports whether the token's prize is hidden pending a reveal.
func (t Token) Concealed() bool {
	return t.concealed
}

// PrizeID returns the visible prize identifier. Concealed and non-genuine
// tokens report NoPrize with ok false.
func (t Token) PrizeID() (string, bool) {
	if !t.mark.genuine || t.concealed {
		return NoPrize, false
	}
	return t.prizeID, true
}

// PrizeLevel returns the prize level, 1 for freshly minted tokens.
func (t Token) PrizeLevel() int {
	if !t.mark.genuine {
		return 0
	}
	return t.prizeLevel
}

// Reveal converts a concealed token into its revealed form and returns the
// prize id that was hidden. ok is false when the token is not a genuine
// concealed token.
func (t Token) Reveal() (Token, string, bool) {
	if !t.mark.genuine || !t.concealed {
		return t, NoPrize, false
	}
	revealed := t
	revealed.concealed = false
	return revealed, t.prizeID, true
}

// Display returns the cosmetic presentation attached to the token.
func (t Token) Display() Display {
	return t.display
}

// WithDisplay returns a copy of the token with cosmetic presentation
// attached. Display never affects Genuine or Tier.
func (t Token) WithDisplay(d Display) Token {
	t.display = d
	return t
}
