// internal/game/tokens.go
package game

// TokenKind is one of the four bonus-token currencies a judge can hand out
// after a round.
type TokenKind string

const (
	TokenMindReader    TokenKind = "mind_reader"    // drawing closest to what the judge imagined
	TokenCrowdFavorite TokenKind = "crowd_favorite" // biggest table reaction
	TokenQuickDraw     TokenKind = "quick_draw"     // first finished drawing
	TokenDarkHorse     TokenKind = "dark_horse"     // most surprising interpretation
)

// TokenDrainOrder is the canonical order kinds are consumed in when a player
// spends tokens. Spending never cares which kind is used, but the drain order
// is fixed so results are reproducible.
var TokenDrainOrder = []TokenKind{TokenMindReader, TokenCrowdFavorite, TokenQuickDraw, TokenDarkHorse}

// Fixed costs for token-funded actions.
const (
	RerollCost = 1
	StealCost  = 3
)

// TokenLedger tracks one player's token counts per kind.
type TokenLedger struct {
	counts map[TokenKind]int
}

// NewTokenLedger returns an empty ledger with every kind at zero.
func NewTokenLedger() *TokenLedger {
	counts := make(map[TokenKind]int, len(TokenDrainOrder))
	for _, k := range TokenDrainOrder {
		counts[k] = 0
	}
	return &TokenLedger{counts: counts}
}

// Award increments the count for the given kind. Unknown kinds are ignored.
func (tl *TokenLedger) Award(kind TokenKind) {
	if _, ok := tl.counts[kind]; !ok {
		return
	}
	tl.counts[kind]++
}

// Count returns the count for a single kind.
func (tl *TokenLedger) Count(kind TokenKind) int {
	return tl.counts[kind]
}

// Total returns the sum across all kinds.
func (tl *TokenLedger) Total() int {
	total := 0
	for _, n := range tl.counts {
		total += n
	}
	return total
}

// Deduct removes exactly n tokens, draining kinds in TokenDrainOrder and
// allowing partial-kind consumption. It is all-or-nothing: if the ledger
// holds fewer than n tokens in total, nothing is removed and false is
// returned.
func (tl *TokenLedger) Deduct(n int) bool {
	if n < 0 || tl.Total() < n {
		return false
	}
	remaining := n
	for _, kind := range TokenDrainOrder {
		if remaining == 0 {
			break
		}
		take := tl.counts[kind]
		if take > remaining {
			take = remaining
		}
		tl.counts[kind] -= take
		remaining -= take
	}
	return true
}

// Snapshot returns a plain map copy of the counts for serialization.
func (tl *TokenLedger) Snapshot() map[TokenKind]int {
	out := make(map[TokenKind]int, len(tl.counts))
	for k, n := range tl.counts {
		out[k] = n
	}
	return out
}

// ValidTokenKind reports whether s names one of the four kinds.
func ValidTokenKind(s string) bool {
	for _, k := range TokenDrainOrder {
		if string(k) == s {
			return true
		}
	}
	return false
}
