// internal/auth/token.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// privateKey and publicKey sign and verify reconnect tokens. Keys are
// per-process: a restart invalidates outstanding tokens, which matches the
// engine's no-persistence model.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	tokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair and reads RECONNECT_TOKEN_TTL
// (Go duration string, default 2h).
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	tokenTTL = 2 * time.Hour
	if raw := os.Getenv("RECONNECT_TOKEN_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to parse RECONNECT_TOKEN_TTL: %w", err)
		}
		tokenTTL = d
	}
	return nil
}

// CreateReconnectToken issues a signed token binding a player to a room.
// Clients present it to reclaim their seat after a dropped connection.
func CreateReconnectToken(roomCode, playerID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": playerID,
		"aud": roomCode,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// VerifyReconnectToken checks the signature and room binding, returning the
// player ID the token was issued for.
func VerifyReconnectToken(tokenString, roomCode string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	}, jwt.WithAudience(roomCode))
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	playerID, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return playerID, nil
}
