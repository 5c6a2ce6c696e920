package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{Cost: 4} // min cost keeps the test fast

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "correct horse battery staple", hash)

	ok, err := hasher.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBcryptHasher_WrongPasswordIsFalseNotError(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{Cost: 4}

	hash, err := hasher.Hash("p1")
	require.NoError(t, err)

	ok, err := hasher.Verify("p2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_RandomSaltPerCall(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{Cost: 4}

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	for _, hash := range []string{first, second} {
		ok, err := hasher.Verify("same password", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestBcryptHasher_MalformedHashIsError(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{}

	_, err := hasher.Verify("anything", "not-a-bcrypt-hash")
	assert.Error(t, err)
}
