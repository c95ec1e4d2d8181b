package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	j := &JWTer{Secret: []byte("access"), Issuer: "bytebazaar", TTL: AccessTokenTTL}

	tok, issued, err := j.Issue("u1", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, issued.ID, c.ID)
	assert.WithinDuration(t, c.IssuedAt.Add(15*time.Minute), c.ExpiresAt.Time, time.Second)
}

func TestExpiredTokenNeverVerifies(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	j := &JWTer{Secret: []byte("access"), TTL: time.Minute, Now: func() time.Time { return past }}
	tok, _, err := j.Issue("u1", "Alice")
	require.NoError(t, err)

	_, err = Verify(tok, []byte("access"))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecretIsInvalid(t *testing.T) {
	svc := NewTokenService("access", "refresh", "", 0, 0)
	refresh, err := svc.IssueRefreshToken("u1", "Alice")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	c, err := svc.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), c.ExpiresAt.Time, time.Minute)
}

func TestMalformedToken(t *testing.T) {
	_, err := Verify("not.a.jwt", []byte("x"))
	assert.ErrorIs(t, err, ErrTokenInvalid)

	j := &JWTer{Secret: []byte("x"), TTL: time.Minute}
	tok, _, err := j.Issue("u1", "A")
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	_, err = Verify(parts[0]+"."+parts[1]+".tampered", []byte("x"))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	d := NewMemoryDenylist()
	d.Now = func() time.Time { return now }

	require.NoError(t, d.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "old", now.Add(-time.Minute)))

	ok, _ := d.IsRevoked(ctx, "a")
	assert.True(t, ok)
	ok, _ = d.IsRevoked(ctx, "old")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = d.IsRevoked(ctx, "a")
	assert.False(t, ok, "entry lapses with the token")
}
