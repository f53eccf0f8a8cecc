package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrNoEmptyString)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.NoError(t, ComparePasswordAndHash("correct horse battery staple", hash))
	assert.ErrorIs(t, ComparePasswordAndHash("wrong password", hash), ErrMismatchedHashAndPassword)
}

func TestRandomPasswordHash_IsNotVerifiableAsEmpty(t *testing.T) {
	hash := RandomPasswordHash()
	require.NotEmpty(t, hash)
	assert.Error(t, ComparePasswordAndHash("", hash))
}
