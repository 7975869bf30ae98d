package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("moonlight")
	require.NoError(t, err)
	assert.NotEqual(t, "moonlight", h)
	assert.True(t, CheckPassword(h, "moonlight"))
	assert.False(t, CheckPassword(h, "sunlight"))
	assert.False(t, CheckPassword("not-a-hash", "moonlight"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Equal(t, "password must be at least 6 characters", err.Error())
}

func TestHashPasswordLength(t *testing.T) {
	h, err := HashPassword(strings.Repeat("p", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, strings.Repeat("p", MaxPasswordBytes)))

	_, err = HashPassword(strings.Repeat("p", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestIssueAndVerify(t *testing.T) {
	iss, err := NewIssuer("secret", 0)
	require.NoError(t, err)

	tok, err := iss.Issue("user-1", "luna@example.com")
	require.NoError(t, err)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "luna@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyRejects(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	tok, err := other.Issue("user-1", "a@b.c")
	require.NoError(t, err)
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	_, err = iss.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, err = iss.Issue("user-1", "a@b.c")
	require.NoError(t, err)
	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}

func TestNewIssuerEmptySecret(t *testing.T) {
	_, err := NewIssuer("", 0)
	assert.Error(t, err)
}
