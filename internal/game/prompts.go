// internal/game/prompts.go
package game

import (
	"math/rand"
)

// PromptPool holds the remaining shuffled prompts for one room. Prompts are
// drawn as candidates (peeked, not removed) and only leave the pool for good
// once the judge commits to one, so a reroll quietly returns the previous
// candidates to eligibility.
type PromptPool struct {
	prompts []string
	rng     *rand.Rand
}

// NewPromptPool concatenates the named decks, removes duplicate prompts, and
// shuffles the result. Unknown deck names are skipped; the caller is expected
// to validate deck selection before starting a game.
func NewPromptPool(deckNames []string, rng *rand.Rand) *PromptPool {
	seen := make(map[string]struct{})
	var prompts []string
	for _, name := range deckNames {
		for _, p := range DeckPrompts(name) {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			prompts = append(prompts, p)
		}
	}
	rng.Shuffle(len(prompts), func(i, j int) {
		prompts[i], prompts[j] = prompts[j], prompts[i]
	})
	return &PromptPool{prompts: prompts, rng: rng}
}

// Remaining returns how many prompts are still drawable.
func (pp *PromptPool) Remaining() int {
	return len(pp.prompts)
}

// DrawCandidates picks n distinct prompts at random without removing them
// from the pool. Returns false if fewer than n remain; the round cannot
// proceed and the caller surfaces that to the host.
func (pp *PromptPool) DrawCandidates(n int) ([]string, bool) {
	if len(pp.prompts) < n {
		return nil, false
	}
	idxs := pp.rng.Perm(len(pp.prompts))[:n]
	out := make([]string, n)
	for i, idx := range idxs {
		out[i] = pp.prompts[idx]
	}
	return out, true
}

// Remove permanently deletes a prompt from the pool. Returns false if the
// prompt was not present (already removed or never drawn).
func (pp *PromptPool) Remove(prompt string) bool {
	for i, p := range pp.prompts {
		if p == prompt {
			pp.prompts = append(pp.prompts[:i], pp.prompts[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the prompt is still in the pool.
func (pp *PromptPool) Contains(prompt string) bool {
	for _, p := range pp.prompts {
		if p == prompt {
			return true
		}
	}
	return false
}
