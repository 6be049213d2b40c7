package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULIDProviderGeneratesUniqueSortedIDs(t *testing.T) {
	provider := NewULIDProvider()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := provider.NewID()
		assert.Len(t, id, 26)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	other, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestDashboardTokenRoundtrip(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateDashboardToken(secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", claims["role"])
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateDashboardToken("right-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "wrong-secret")
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	token, err := GenerateDashboardToken("secret", -time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret")
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token", "secret")
	assert.Error(t, err)
}
