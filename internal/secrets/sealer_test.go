package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	s, err := NewSealer("correct horse battery staple")
	require.NoError(t, err)

	sealed, err := s.Seal("ghp_abc123", "u_1")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ghp_abc123")

	plain, err := s.Open(sealed, "u_1")
	require.NoError(t, err)
	assert.Equal(t, "ghp_abc123", plain)

	again, err := s.Seal("ghp_abc123", "u_1")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)
}

func TestOpenRejectsOtherOwnerAndKey(t *testing.T) {
	s, err := NewSealer("key-one")
	require.NoError(t, err)
	sealed, err := s.Seal("ghp_abc123", "u_1")
	require.NoError(t, err)

	_, err = s.Open(sealed, "u_2")
	assert.ErrorIs(t, err, ErrCorrupt)

	other, err := NewSealer("key-two")
	require.NoError(t, err)
	_, err = other.Open(sealed, "u_1")
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.Open("not base64!", "u_1")
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = s.Open(strings.Repeat("A", 8), "u_1")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestNewSealerNeedsKey(t *testing.T) {
	_, err := NewSealer("  ")
	assert.ErrorIs(t, err, ErrNoKey)
}
