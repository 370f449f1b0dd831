package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncTokenRoundTrip(t *testing.T) {
	secret := []byte("shared-secret-for-tests")
	token, err := GenerateSyncToken(secret, "Corner Mart", time.Now())
	require.NoError(t, err)

	claims, err := ValidateSyncToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "Corner Mart", claims.StoreName)
	assert.Equal(t, SyncTokenIssuer, claims.Issuer)
}

func TestSyncTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateSyncToken([]byte("one"), "", time.Now())
	require.NoError(t, err)

	_, err = ValidateSyncToken([]byte("two"), token)
	assert.Error(t, err)
}

func TestSyncTokenRejectsExpired(t *testing.T) {
	secret := []byte("shared-secret-for-tests")
	token, err := GenerateSyncToken(secret, "", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ValidateSyncToken(secret, token)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b ,"))
	assert.Nil(t, SplitList(""))
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("MART_TEST_INT", "42")
	t.Setenv("MART_TEST_BAD_INT", "forty")
	t.Setenv("MART_TEST_DURATION", "1500ms")
	t.Setenv("MART_TEST_BOOL", "TRUE")

	assert.Equal(t, 42, GetenvInt("MART_TEST_INT", 1))
	assert.Equal(t, 1, GetenvInt("MART_TEST_BAD_INT", 1))
	assert.Equal(t, 1500*time.Millisecond, GetenvDuration("MART_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetenvDuration("MART_TEST_UNSET", time.Second))
	assert.True(t, GetenvBool("MART_TEST_BOOL", false))
	assert.Equal(t, "fallback", Getenv("MART_TEST_UNSET", "fallback"))
}
