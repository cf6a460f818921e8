package utils

import (
	"testing"

	"discuss-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, VerifyPassword("s3cret!", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}

func TestToken(t *testing.T) {
	config.Set(config.Default())

	token, err := GenerateToken(42, "alice")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)

	_, err = ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_RejectsNonPositiveUser(t *testing.T) {
	config.Set(config.Default())

	token, err := GenerateToken(0, "nobody")
	require.NoError(t, err)
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_Expired(t *testing.T) {
	cfg := config.Default()
	cfg.JWT.ExpireHours = -1
	config.Set(cfg)

	token, err := GenerateToken(1, "alice")
	require.NoError(t, err)
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
