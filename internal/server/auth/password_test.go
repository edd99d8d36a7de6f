package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	for _, pw := range []string{"pw123", "correct horse battery staple", "пароль", ""} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, h.Verify(pw, hash), "password %q", pw)
	}
}

func TestBcryptHasher_WrongPassword(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	hash, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.False(t, h.Verify("pw124", hash))
	assert.False(t, h.Verify("", hash))
}

func TestBcryptHasher_SaltedOutputs(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	t.Parallel()

	h := newTestHasher()
	assert.False(t, h.Verify("pw", ""))
	assert.False(t, h.Verify("pw", "not-a-bcrypt-hash"))
}

func TestBcryptHasher_TooLong(t *testing.T) {
	t.Parallel()

	_, err := newTestHasher().Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 12, NewBcryptHasher(12).Cost())

	var _ PasswordHasher = NewBcryptHasher(bcrypt.MinCost)
}
