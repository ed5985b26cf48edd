// internal/game/modifiers.go
package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Modifier is an immutable curse-card catalog entry. A drawn modifier is
// assigned to a target for exactly one future round, or held by its drawer
// for later.
type Modifier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// modifierCatalog is the fixed curse deck. Drawn with replacement; the same
// curse can show up in multiple rounds.
var modifierCatalog = []Modifier{
	{ID: "wrong_hand", Name: "Wrong Hand", Description: "Draw with your non-dominant hand.", Icon: "hand"},
	{ID: "eyes_shut", Name: "Eyes Shut", Description: "Draw with your eyes closed.", Icon: "eye-off"},
	{ID: "one_line", Name: "One Line", Description: "Draw without lifting your finger.", Icon: "pen-line"},
	{ID: "upside_down", Name: "Upside Down", Description: "Draw everything upside down.", Icon: "rotate"},
	{ID: "tiny_canvas", Name: "Tiny Canvas", Description: "Your drawing must fit inside a quarter of the canvas.", Icon: "minimize"},
	{ID: "mirror_mode", Name: "Mirror Mode", Description: "Your strokes are mirrored horizontally.", Icon: "flip"},
	{ID: "speed_demon", Name: "Speed Demon", Description: "You get half the drawing time.", Icon: "timer"},
	{ID: "straight_edge", Name: "Straight Edge", Description: "Straight lines only, no curves.", Icon: "ruler"},
	{ID: "two_colors", Name: "Two Colors", Description: "You may only use two colors.", Icon: "palette"},
	{ID: "no_erase", Name: "No Erase", Description: "The eraser is disabled for you.", Icon: "eraser-off"},
	{ID: "shaky_hands", Name: "Shaky Hands", Description: "Your brush jitters while you draw.", Icon: "waves"},
	{ID: "thick_brush", Name: "Thick Brush", Description: "Maximum brush size only.", Icon: "brush"},
}

// drawModifier picks a random catalog entry.
func drawModifier(rng *rand.Rand) Modifier {
	return modifierCatalog[rng.Intn(len(modifierCatalog))]
}

// PendingModifier is a curse staged during the Modifier phase. It becomes
// active on its target at the next round advance and lasts that one round.
type PendingModifier struct {
	CurserID uuid.UUID `json:"curserId"`
	TargetID uuid.UUID `json:"targetId"`
	Modifier Modifier  `json:"modifier"`
}
