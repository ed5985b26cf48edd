// internal/game/alignment_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollAlignmentAvoidsImmediateRepeat(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	repeats := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		prev := Alignments[rng.Intn(len(Alignments))]
		drawn, attempts := rollAlignment(rng, prev)
		assert.GreaterOrEqual(t, attempts, 1)
		assert.LessOrEqual(t, attempts, maxAlignmentRetries)
		if drawn == prev {
			repeats++
		}
	}
	// A repeat survives only if all 5 attempts land on the previous value:
	// (1/10)^5 per trial, so effectively never in 2000 trials.
	assert.Less(t, repeats, 3)
}

func TestRollAlignmentNoPrevious(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, attempts := rollAlignment(rng, "")
	assert.Equal(t, 1, attempts)
}

func TestValidAlignment(t *testing.T) {
	assert.True(t, ValidAlignment("LG"))
	assert.True(t, ValidAlignment("CE"))
	assert.False(t, ValidAlignment("JUDGE_CHOICE"))
	assert.False(t, ValidAlignment("XX"))
	assert.False(t, ValidAlignment(""))
}
