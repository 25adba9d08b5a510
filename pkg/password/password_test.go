package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, h.Verify("s3cret-pass", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.Verify("s3cret-pass", ""))
	assert.False(t, h.Verify("s3cret-pass", "not-a-bcrypt-hash"))
}

func TestBcryptRejectsBadInput(t *testing.T) {
	_, err := NewBcrypt(2)
	require.Error(t, err)

	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	_, err = h.Hash(strings.Repeat("x", 80))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}
