package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "qa-forum", time.Hour, 15*time.Minute)
	tok, exp, err := tm.IssueAccess("user-1", "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := tm.ParseAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.UserID)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, TypeAccess, c.Type)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	tm := NewTokenManager("secret", "qa-forum", time.Hour, 15*time.Minute)
	reset, _, err := tm.IssueReset("user-1", "$2a$hash")
	require.NoError(t, err)
	access, _, err := tm.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	_, err = tm.ParseAccess(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseReset(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	c, err := tm.ParseReset(reset)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint("$2a$hash"), c.Fingerprint)
	assert.NotEqual(t, Fingerprint("$2a$other"), c.Fingerprint)
}

func TestRejectsForeignSecretIssuerAndExpiry(t *testing.T) {
	tm := NewTokenManager("secret", "qa-forum", time.Hour, time.Minute)

	other := NewTokenManager("other-secret", "qa-forum", time.Hour, time.Minute)
	tok, _, err := other.IssueAccess("u", "x")
	require.NoError(t, err)
	_, err = tm.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewTokenManager("secret", "someone-else", time.Hour, time.Minute)
	tok, _, err = wrongIssuer.IssueAccess("u", "x")
	require.NoError(t, err)
	_, err = tm.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("secret", "qa-forum", -time.Minute, time.Minute)
	tok, _, err = expired.IssueAccess("u", "x")
	require.NoError(t, err)
	_, err = tm.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.ParseAccess("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword("correct horse", h))
	assert.Error(t, VerifyPassword("wrong horse", h))
}
