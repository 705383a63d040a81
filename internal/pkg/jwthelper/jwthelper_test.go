package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSigningKey, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseToken(testSigningKey, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	token, err := GenerateToken(testSigningKey, 42)
	require.NoError(t, err)

	_, err = ParseToken("another-key", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSigningKey, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsMissingUserID(t *testing.T) {
	token, err := GenerateToken(testSigningKey, 0)
	require.NoError(t, err)

	_, err = ParseToken(testSigningKey, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
