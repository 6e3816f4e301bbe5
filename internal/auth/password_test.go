package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigerapp/oficina-api/internal/auth"
)

func TestHasher(t *testing.T) {
	h := auth.NewHasher(4)

	hash, err := h.Hash("segredo123")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", hash)

	assert.NoError(t, h.Verify(hash, "segredo123"))
	assert.ErrorIs(t, h.Verify(hash, "errada"), auth.ErrPasswordMismatch)
	assert.Error(t, h.Verify("not-a-hash", "segredo123"))
}
