// internal/game/player.go
package game

import (
	"strings"
	"unicode"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// MaxNameLen caps sanitized player names.
const MaxNameLen = 20

// Avatars is the fixed set a room's players choose from. Each avatar is
// unique within a room.
var Avatars = []string{
	"fox", "owl", "frog", "bear", "cat", "dog",
	"panda", "koala", "tiger", "whale", "sloth", "axolotl",
}

// Player is one seat in a room. The slice order of Room.Players is the judge
// rotation order.
type Player struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	Score  int       `json:"score"`

	Tokens    *TokenLedger `json:"-"`
	Connected bool         `json:"connected"`
	IsJudge   bool         `json:"isJudge"`

	// ActiveModifiers are the curses in effect for the current round, applied
	// in staging order at round advance.
	ActiveModifiers []Modifier `json:"activeModifiers"`

	// HeldCurse is a deferred curse the player chose to keep for a future
	// round. At most one; holding again overwrites it.
	HeldCurse *Modifier `json:"heldCurse,omitempty"`

	Conn *websocket.Conn `json:"-"`
}

// NewPlayer builds a connected player with an empty ledger.
func NewPlayer(name, avatar string) *Player {
	id, _ := uuid.NewRandom()
	return &Player{
		ID:        id,
		Name:      name,
		Avatar:    avatar,
		Tokens:    NewTokenLedger(),
		Connected: true,
	}
}

// SanitizeName trims, strips control characters, and truncates a requested
// display name. Returns the empty string if nothing printable remains.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > MaxNameLen {
		out = out[:MaxNameLen]
	}
	return strings.TrimSpace(out)
}

// ValidAvatar reports whether the avatar is in the fixed set.
func ValidAvatar(avatar string) bool {
	for _, a := range Avatars {
		if a == avatar {
			return true
		}
	}
	return false
}
