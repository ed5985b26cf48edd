// internal/game/player_test.go
package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Ava", SanitizeName("  Ava  "))
	assert.Equal(t, "AvaBen", SanitizeName("Ava\x00\x1fBen"))
	assert.Equal(t, "", SanitizeName("\t\n "))

	long := strings.Repeat("x", MaxNameLen+10)
	assert.Len(t, SanitizeName(long), MaxNameLen)
}

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer("Ava", Avatars[0])
	assert.NotEqual(t, "", p.ID.String())
	assert.Equal(t, 0, p.Score)
	assert.Equal(t, 0, p.Tokens.Total())
	assert.True(t, p.Connected)
	assert.False(t, p.IsJudge)
	assert.Nil(t, p.HeldCurse)
}

func TestValidAvatar(t *testing.T) {
	for _, a := range Avatars {
		assert.True(t, ValidAvatar(a))
	}
	assert.False(t, ValidAvatar("unknown"))
	assert.False(t, ValidAvatar(""))
}
