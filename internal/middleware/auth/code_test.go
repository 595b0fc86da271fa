package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyCode(t *testing.T) {
	hash, err := HashCode("AbC123xyZ0")
	require.NoError(t, err)
	assert.NotEqual(t, "AbC123xyZ0", hash)

	assert.True(t, VerifyCode(hash, "AbC123xyZ0"))
	assert.False(t, VerifyCode(hash, "abc123xyz0"))
	assert.False(t, VerifyCode("", "AbC123xyZ0"))
	assert.False(t, VerifyCode("not-a-bcrypt-hash", "AbC123xyZ0"))
}
