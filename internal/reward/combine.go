package reward

// MinCombineTokens is the smallest allowed merge requirement.
const MinCombineTokens = 2

// Stack is a quantity of identical tokens, the unit the merge mechanic
// consumes from.
type Stack struct {
	Token  Token
	Amount int
}

// Combine consumes required same-tier tokens across the provided stacks and
// yields one token of the next tier.
//
// Rules, matching the anvil mechanic this engine serves:
//   - required below MinCombineTokens is raised to MinCombineTokens;
//   - every stack must hold genuine tokens of one shared tier;
//   - the top tier cannot be upgraded;
//   - stacks are consumed in slice order, fully drained stacks are dropped
//     from the returned remainder.
//
// When ok is false nothing was consumed and the input stacks are returned
// unchanged.
func Combine(stacks []Stack, required int) (upgraded Token, remaining []Stack, ok bool) {
	if required < MinCombineTokens {
		required = MinCombineTokens
	}
	if len(stacks) == 0 {
		return Token{}, stacks, false
	}

	tier, tierOK := stacks[0].Token.Tier()
	if !tierOK {
		return Token{}, stacks, false
	}
	total := 0
	for _, s := range stacks {
		st, genuine := s.Token.Tier()
		if !genuine || st != tier || s.Amount < 0 {
			return Token{}, stacks, false
		}
		total += s.Amount
	}
	if total < required {
		return Token{}, stacks, false
	}

	next, hasNext := tier.Next()
	if !hasNext {
		return Token{}, stacks, false
	}

	remaining = make([]Stack, 0, len(stacks))
	take := required
	for _, s := range stacks {
		if take > 0 {
			n := s.Amount
			if n > take {
				n = take
			}
			take -= n
			s.Amount -= n
		}
		if s.Amount > 0 {
			remaining = append(remaining, s)
		}
	}

	return NewToken(next, NoPrize), remaining, true
}
