package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, exp, err := tm.GenerateToken(7, "admin@example.com", []string{RoleAdmin})
	require.NoError(t, err)

	claims, err := DecodePayload(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.False(t, claims.ExpiredAt(time.Now()))
}

func TestDecodePayload_DoesNotCheckSignatureOrExpiry(t *testing.T) {
	tm := NewTokenManager("one-secret", time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken(1, "a@b.c", []string{RoleUser})
	require.NoError(t, err)

	claims, err := DecodePayload(token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiredAt(time.Now()))
	assert.False(t, claims.IsAdmin())
}

func TestDecodePayload_Malformed(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	cases := map[string]string{
		"empty":          "",
		"one segment":    "abc",
		"two segments":   "abc.def",
		"bad base64":     header + ".!!!.sig",
		"payload not js": header + "." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".sig",
		"missing exp":    header + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"roles":["ROLE_ADMIN"]}`)) + ".sig",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePayload(token)
			assert.Error(t, err)
		})
	}
}

func TestClaims_ExpiredAtBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tm := NewTokenManager("s", time.Minute)
	tm.now = func() time.Time { return now.Add(-time.Minute) }
	token, _, err := tm.GenerateToken(1, "", nil)
	require.NoError(t, err)

	claims, err := DecodePayload(token)
	require.NoError(t, err)
	// exp == now is no longer strictly in the future.
	assert.True(t, claims.ExpiredAt(now))
	assert.False(t, claims.ExpiredAt(now.Add(-time.Second)))
}

func TestTokenManager_ParseToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.GenerateToken(3, "x@y.z", []string{RoleAdmin})
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "x@y.z", claims.Email)

	other := NewTokenManager("other", time.Hour)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
