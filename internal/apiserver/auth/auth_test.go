package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestTokenRoundtrip(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}

	token, err := GenerateToken(cfg, "user-1")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenExpired(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: -time.Minute}

	token, err := GenerateToken(cfg, "user-1")
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(Config{JWTSecret: "a", TokenTTL: time.Hour}, "user-1")
	require.NoError(t, err)

	_, err = ParseToken(Config{JWTSecret: "b", TokenTTL: time.Hour}, token)
	assert.Error(t, err)
}
