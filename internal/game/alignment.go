// internal/game/alignment.go
package game

import "math/rand"

// Alignment frames how drawings should interpret the round's prompt. Nine
// concrete alignments plus "Judge's Choice", which sends the judge to pick
// one explicitly.
type Alignment string

const (
	AlignLG Alignment = "LG" // lawful good
	AlignNG Alignment = "NG"
	AlignCG Alignment = "CG"
	AlignLN Alignment = "LN"
	AlignTN Alignment = "TN" // true neutral
	AlignCN Alignment = "CN"
	AlignLE Alignment = "LE"
	AlignNE Alignment = "NE"
	AlignCE Alignment = "CE" // chaotic evil

	AlignJudgeChoice Alignment = "JUDGE_CHOICE"
)

// Alignments is the full roll table, Judge's Choice included.
var Alignments = []Alignment{
	AlignLG, AlignNG, AlignCG,
	AlignLN, AlignTN, AlignCN,
	AlignLE, AlignNE, AlignCE,
	AlignJudgeChoice,
}

// maxAlignmentRetries bounds the redraw-on-repeat rule. The 5th attempt is
// accepted regardless, so back-to-back repeats stay possible but rare.
const maxAlignmentRetries = 5

// rollAlignment draws uniformly from the roll table, redrawing up to
// maxAlignmentRetries times while the result matches the previous round's
// alignment. Returns the accepted alignment and how many attempts it took.
func rollAlignment(rng *rand.Rand, previous Alignment) (Alignment, int) {
	var drawn Alignment
	attempts := 0
	for attempts < maxAlignmentRetries {
		drawn = Alignments[rng.Intn(len(Alignments))]
		attempts++
		if previous == "" || drawn != previous {
			break
		}
	}
	return drawn, attempts
}

// ValidAlignment reports whether s is a concrete (judge-selectable)
// alignment. Judge's Choice itself is not a valid final selection.
func ValidAlignment(s string) bool {
	for _, a := range Alignments {
		if a == AlignJudgeChoice {
			continue
		}
		if string(a) == s {
			return true
		}
	}
	return false
}
