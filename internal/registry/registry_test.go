// internal/registry/registry_test.go
package registry

import (
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlecourt/doodlecourt/internal/game"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCodeFormat(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		code := newCode(rng)
		require.Len(t, code, CodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch),
				"code %q contains %q outside the alphabet", code, ch)
		}
		// The ambiguous glyphs never appear.
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "L")
	}
}

func TestCreateRoomUniqueCodes(t *testing.T) {
	reg := New(quietLogger())
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		room := reg.CreateRoom()
		require.False(t, seen[room.Code], "duplicate code %q", room.Code)
		seen[room.Code] = true
	}
	assert.Equal(t, 100, reg.Count())
}

func TestGetAndRemoveRoom(t *testing.T) {
	reg := New(quietLogger())
	room := reg.CreateRoom()

	got, ok := reg.GetRoom(room.Code)
	require.True(t, ok)
	assert.Same(t, room, got)

	reg.RemoveRoom(room.Code)
	_, ok = reg.GetRoom(room.Code)
	assert.False(t, ok)
	assert.True(t, room.Closed())

	// Removing twice is harmless.
	reg.RemoveRoom(room.Code)
}

func TestLastPlayerLeavingEvictsRoom(t *testing.T) {
	reg := New(quietLogger())
	room := reg.CreateRoom()

	join, err := room.AddPlayer("Solo", game.Avatars[0])
	require.NoError(t, err)
	_, err = room.RemovePlayer(join.Player.ID)
	require.NoError(t, err)

	_, ok := reg.GetRoom(room.Code)
	assert.False(t, ok)
	assert.True(t, room.Closed())
}

func TestListInactiveRooms(t *testing.T) {
	reg := New(quietLogger())
	idle := reg.CreateRoom()
	active := reg.CreateRoom()

	time.Sleep(20 * time.Millisecond)
	_, err := active.AddPlayer("Ava", game.Avatars[0])
	require.NoError(t, err)

	codes := reg.ListInactiveRooms(10 * time.Millisecond)
	assert.Contains(t, codes, idle.Code)
	assert.NotContains(t, codes, active.Code)
}
