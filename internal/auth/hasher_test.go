package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.ErrorIs(t, h.Compare(hash, "secret2"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Compare(hash, ""), ErrPasswordMismatch)
}

func TestPasswordHasher_FreshSalt(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_LongPassword(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)
	long := strings.Repeat("x", 1024)

	hash, err := h.Hash(long)
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, long))
}

func TestPasswordHasher_LongPasswordsDifferPastBcryptLimit(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)
	stored := strings.Repeat("a", 100)

	hash, err := h.Hash(stored)
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, stored))
	assert.ErrorIs(t, h.Compare(hash, strings.Repeat("a", 99)+"b"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Compare(hash, strings.Repeat("a", 72)), ErrPasswordMismatch)
}

func TestPasswordHasher_ShortPasswordsUsePlainBcrypt(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)
	exact := strings.Repeat("z", 72)

	legacy, err := bcrypt.GenerateFromPassword([]byte(exact), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, h.Compare(string(legacy), exact))
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	err := h.Compare("not-a-bcrypt-hash", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
