// internal/game/prompts_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPoolDedupesAcrossDecks(t *testing.T) {
	RegisterDeck("dupes-a", []string{"a cat", "a hat"})
	RegisterDeck("dupes-b", []string{"a hat", "a bat"})

	pool := NewPromptPool([]string{"dupes-a", "dupes-b"}, rand.New(rand.NewSource(1)))
	assert.Equal(t, 3, pool.Remaining())
}

func TestPromptPoolDrawPeeksWithoutRemoving(t *testing.T) {
	pool := NewPromptPool([]string{"classic"}, rand.New(rand.NewSource(7)))
	before := pool.Remaining()

	candidates, ok := pool.DrawCandidates(3)
	require.True(t, ok)
	require.Len(t, candidates, 3)
	assert.Equal(t, before, pool.Remaining())

	for _, c := range candidates {
		assert.True(t, pool.Contains(c))
	}
}

func TestPromptPoolRemove(t *testing.T) {
	pool := NewPromptPool([]string{"classic"}, rand.New(rand.NewSource(3)))
	candidates, ok := pool.DrawCandidates(3)
	require.True(t, ok)

	before := pool.Remaining()
	require.True(t, pool.Remove(candidates[0]))
	assert.Equal(t, before-1, pool.Remaining())
	assert.False(t, pool.Contains(candidates[0]))
	assert.False(t, pool.Remove(candidates[0]))
}

func TestPromptPoolExhaustion(t *testing.T) {
	RegisterDeck("tiny", []string{"one", "two"})
	pool := NewPromptPool([]string{"tiny"}, rand.New(rand.NewSource(5)))

	_, ok := pool.DrawCandidates(3)
	assert.False(t, ok)
}

func TestRegisterDeckAndLookup(t *testing.T) {
	RegisterDeck("custom-pack", []string{"a dragon", "a castle"})
	assert.True(t, DeckExists("custom-pack"))
	assert.Equal(t, []string{"a dragon", "a castle"}, DeckPrompts("custom-pack"))
	assert.False(t, DeckExists("never-registered"))
	assert.Contains(t, DeckNames(), "classic")
}
