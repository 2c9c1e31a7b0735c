// internal/auth/auth_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePasscode(t *testing.T) {
	hash, err := HashPasscode("uno-night")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := ComparePasscode("uno-night", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePasscode("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPasscode("same")
	require.NoError(t, err)
	h2, err := HashPasscode("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestComparePasscodeBadHash(t *testing.T) {
	_, err := ComparePasscode("x", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	Init()

	playerID := uuid.NewString()
	token, err := CreateSessionToken(playerID, "Alice")
	require.NoError(t, err)

	sub, name, err := AuthenticateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, playerID, sub)
	assert.Equal(t, "Alice", name)
}

func TestAuthenticateSessionTokenRejectsGarbage(t *testing.T) {
	Init()
	_, _, err := AuthenticateSessionToken("garbage.token.here")
	assert.Error(t, err)
}
