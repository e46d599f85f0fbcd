package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("hash is never the plaintext", func(t *testing.T) {
		hash, err := hasher.Hash("1234")
		require.NoError(t, err)
		assert.NotEqual(t, "1234", hash)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
	})

	t.Run("same password produces different hashes", func(t *testing.T) {
		h1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		h2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correct")
		require.NoError(t, err)
		ok, err := hasher.Compare(hash, "correct")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password is a mismatch, not an error", func(t *testing.T) {
		hash, err := hasher.Hash("correct")
		require.NoError(t, err)
		ok, err := hasher.Compare(hash, "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed hash is an error", func(t *testing.T) {
		_, err := hasher.Compare("not-a-hash", "whatever")
		assert.Error(t, err)
	})
}

func TestNewBcryptHasherCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 10, NewBcryptHasher(10).cost)

	hash, err := NewBcryptHasher(0).Hash("1234")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestBcryptHasherLongPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	long := strings.Repeat("a", 80)

	hash, err := hasher.Hash(long)
	require.NoError(t, err)

	ok, err := hasher.Compare(hash, long)
	require.NoError(t, err)
	assert.True(t, ok)

	// 先頭 72 バイトが同じでも別のパスワードとして扱う
	ok, err = hasher.Compare(hash, strings.Repeat("a", 72)+"bbbbbbbb")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = hasher.Compare(hash, strings.Repeat("a", 72))
	require.NoError(t, err)
	assert.False(t, ok)
}
