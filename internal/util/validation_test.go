package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID("123E4567-E89B-12D3-A456-426614174000"))
}

func TestIsValidPlayerID(t *testing.T) {
	t.Run("accepts typical ids", func(t *testing.T) {
		assert.True(t, IsValidPlayerID("player-1"))
		assert.True(t, IsValidPlayerID("User_42"))
		assert.True(t, IsValidPlayerID("a.b.c"))
	})

	t.Run("rejects empty and oversized", func(t *testing.T) {
		assert.False(t, IsValidPlayerID(""))
		assert.False(t, IsValidPlayerID(strings.Repeat("x", 65)))
	})

	t.Run("rejects unsafe characters", func(t *testing.T) {
		assert.False(t, IsValidPlayerID("p1 p2"))
		assert.False(t, IsValidPlayerID("p1/../p2"))
		assert.False(t, IsValidPlayerID("p1\n"))
	})
}
