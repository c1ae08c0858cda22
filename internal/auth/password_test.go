package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.Len(t, hash, saltSize+keySize)

	ok, err := CheckPassword(hash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "S3cret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a[:saltSize], b[:saltSize])
	assert.NotEqual(t, a, b)
}

func TestCheckPassword_Malformed(t *testing.T) {
	_, err := CheckPassword([]byte("short"), "x")
	assert.ErrorIs(t, err, ErrMalformedHash)
}
