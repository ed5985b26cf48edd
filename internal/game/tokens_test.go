// internal/game/tokens_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLedgerAwardAndCount(t *testing.T) {
	tl := NewTokenLedger()
	assert.Equal(t, 0, tl.Total())

	tl.Award(TokenMindReader)
	tl.Award(TokenMindReader)
	tl.Award(TokenDarkHorse)

	assert.Equal(t, 2, tl.Count(TokenMindReader))
	assert.Equal(t, 1, tl.Count(TokenDarkHorse))
	assert.Equal(t, 0, tl.Count(TokenQuickDraw))
	assert.Equal(t, 3, tl.Total())
}

func TestTokenLedgerDeductAllOrNothing(t *testing.T) {
	tl := NewTokenLedger()
	tl.Award(TokenMindReader)
	tl.Award(TokenCrowdFavorite)

	// Short by one: nothing is spent.
	require.False(t, tl.Deduct(3))
	assert.Equal(t, 2, tl.Total())
	assert.Equal(t, 1, tl.Count(TokenMindReader))

	require.True(t, tl.Deduct(2))
	assert.Equal(t, 0, tl.Total())
}

func TestTokenLedgerDrainOrder(t *testing.T) {
	tl := NewTokenLedger()
	tl.Award(TokenDarkHorse)
	tl.Award(TokenQuickDraw)
	tl.Award(TokenMindReader)
	tl.Award(TokenMindReader)

	// Drains mind_reader first, then partially into quick_draw.
	require.True(t, tl.Deduct(3))
	assert.Equal(t, 0, tl.Count(TokenMindReader))
	assert.Equal(t, 0, tl.Count(TokenQuickDraw))
	assert.Equal(t, 1, tl.Count(TokenDarkHorse))
}

func TestTokenLedgerSnapshotIsCopy(t *testing.T) {
	tl := NewTokenLedger()
	tl.Award(TokenQuickDraw)

	snap := tl.Snapshot()
	snap[TokenQuickDraw] = 99
	assert.Equal(t, 1, tl.Count(TokenQuickDraw))
}

func TestValidTokenKind(t *testing.T) {
	for _, kind := range TokenDrainOrder {
		assert.True(t, ValidTokenKind(string(kind)))
	}
	assert.False(t, ValidTokenKind("golden_crayon"))
	assert.False(t, ValidTokenKind(""))
}
