package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("u1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestValidateToken_RejectsWrongKey(t *testing.T) {
	token, err := GenerateToken("u1")
	require.NoError(t, err)

	SetSecret("rotated")
	defer SetSecret("dev_secret_change_me")

	_, err = ValidateToken(token)
	require.Error(t, err)
}
