package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("super-secret"), 30*time.Minute)

	tok, err := s.Issue("alice", time.Hour)
	require.NoError(t, err)

	subject, err := s.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestIssueDefault_UsesConfiguredLifetime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService([]byte("k"), 30*time.Minute, WithClock(func() time.Time { return now }))

	tok, err := s.IssueDefault("bob")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	assert.Equal(t, "bob", claims.Subject)
	assert.Equal(t, now.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, 30*time.Minute, s.DefaultTTL())
}

func TestValidate_ZeroTTLIsExpired(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"), time.Minute)

	tok, err := s.Issue("u1", 0)
	require.NoError(t, err)

	_, err = s.Validate(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestValidate_ExpiresWhenClockAdvances(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService([]byte("secret"), time.Minute, WithClock(func() time.Time { return now }))

	tok, err := s.IssueDefault("u1")
	require.NoError(t, err)

	_, err = s.Validate(tok)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Validate(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret"), time.Hour).IssueDefault("u2")
	require.NoError(t, err)

	_, err = NewTokenService([]byte("wrong-secret"), time.Hour).Validate(tok)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestValidate_TamperedPayload(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("secret"), time.Hour)
	alice, err := s.IssueDefault("alice")
	require.NoError(t, err)
	mallory, err := s.IssueDefault("mallory")
	require.NoError(t, err)

	a := strings.Split(alice, ".")
	m := strings.Split(mallory, ".")
	forged := strings.Join([]string{a[0], m[1], a[2]}, ".")

	_, err = s.Validate(forged)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString(secret)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	s := NewTokenService(secret, time.Hour)
	for _, tok := range []string{hs384, none} {
		_, err := s.Validate(tok)
		assert.ErrorIs(t, err, common.ErrInvalidSignature)
	}
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("k"), time.Hour)
	for _, tok := range []string{"", "garbage-token", "not.a.jwt"} {
		_, err := s.Validate(tok)
		assert.ErrorIs(t, err, common.ErrMalformedToken, "token %q", tok)
	}
}

func TestValidate_MissingExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenService(secret, time.Hour).Validate(tok)
	assert.ErrorIs(t, err, common.ErrMalformedToken)
}

func TestValidate_MissingSubject(t *testing.T) {
	t.Parallel()

	s := NewTokenService([]byte("k"), time.Hour)
	tok, err := s.IssueDefault("")
	require.NoError(t, err)

	_, err = s.Validate(tok)
	assert.True(t, errors.Is(err, common.ErrMissingSubject), "got %v", err)
}
