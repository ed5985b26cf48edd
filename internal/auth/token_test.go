// internal/auth/token_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconnectTokenRoundTrip(t *testing.T) {
	require.NoError(t, Init())

	playerID := uuid.New().String()
	token, err := CreateReconnectToken("ABCD", playerID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := VerifyReconnectToken(token, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, playerID, sub)
}

func TestReconnectTokenWrongRoom(t *testing.T) {
	require.NoError(t, Init())

	token, err := CreateReconnectToken("ABCD", uuid.New().String())
	require.NoError(t, err)

	_, err = VerifyReconnectToken(token, "WXYZ")
	assert.Error(t, err)
}

func TestReconnectTokenGarbage(t *testing.T) {
	require.NoError(t, Init())

	_, err := VerifyReconnectToken("not.a.jwt", "ABCD")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Setenv("RECONNECT_TOKEN_TTL", "-1s")
	require.NoError(t, Init())

	token, err := CreateReconnectToken("ABCD", uuid.New().String())
	require.NoError(t, err)

	_, err = VerifyReconnectToken(token, "ABCD")
	assert.Error(t, err)
}
