package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, Verify("correct-horse", hash))
	assert.False(t, Verify("wrong-password", hash))
	assert.False(t, Verify("correct-horse", "not-a-bcrypt-hash"))
}

func TestHash_Salted(t *testing.T) {
	h1, err := Hash("same-password")
	require.NoError(t, err)
	h2, err := Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "bcrypt salts every hash")
	assert.True(t, Verify("same-password", h1))
	assert.True(t, Verify("same-password", h2))
}

func TestHashToken(t *testing.T) {
	h := HashToken("some-refresh-token")

	assert.Len(t, h, 64, "hex-encoded SHA256")
	assert.Equal(t, h, HashToken("some-refresh-token"), "deterministic")
	assert.NotEqual(t, h, HashToken("another-token"))
}
