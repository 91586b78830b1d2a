package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Length(t *testing.T) {
	shortID, err := Generate(12)
	require.NoError(t, err)
	assert.Len(t, shortID, 12)
}

func TestGenerate_DefaultLength(t *testing.T) {
	shortID, err := Generate(0)
	require.NoError(t, err)
	assert.Len(t, shortID, DefaultLength)
}

func TestGenerateWithPrefix(t *testing.T) {
	sid, err := GenerateWithPrefix(PrefixSubscription, 12)
	require.NoError(t, err)
	assert.True(t, HasPrefix(sid, PrefixSubscription))
	assert.Len(t, sid, len(PrefixSubscription)+1+12)
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		shortID, err := Generate(12)
		require.NoError(t, err)
		assert.False(t, seen[shortID], "generated duplicate ID %s", shortID)
		seen[shortID] = true
	}
}
