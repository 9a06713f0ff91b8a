package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_HashAndMatch(t *testing.T) {
	h := &Bcrypt{Cost: bcrypt.MinCost}

	hashed, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hashed)

	assert.True(t, h.Matches(hashed, "secret1"))
	assert.False(t, h.Matches(hashed, "secret2"))
	assert.False(t, h.Matches("not-a-hash", "secret1"))
}
