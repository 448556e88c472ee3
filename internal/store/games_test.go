package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

func newGame(matchID string, now time.Time, players ...string) *model.GameSession {
	state := &model.GameState{
		Players: make(map[string]*model.PlayerState),
		World:   model.WorldState{Bounds: model.Vec2{X: 100, Y: 100}},
	}
	var pair [2]string
	copy(pair[:], players)
	for _, p := range players {
		state.Players[p] = &model.PlayerState{Health: 100}
	}
	return &model.GameSession{
		MatchID:    matchID,
		Players:    pair,
		State:      state,
		StartedAt:  now,
		LastUpdate: now,
	}
}

func TestGameStore_Create(t *testing.T) {
	now := time.Now()
	s := NewGameStore()

	t.Run("creates once", func(t *testing.T) {
		assert.True(t, s.Create(newGame("m1", now, "a", "b")))
		assert.Equal(t, 1, s.Count())
	})

	t.Run("duplicate create is rejected", func(t *testing.T) {
		assert.False(t, s.Create(newGame("m1", now, "a", "b")))
		assert.Equal(t, 1, s.Count())
	})
}

func TestGameStore_Mutate(t *testing.T) {
	now := time.Now()
	s := NewGameStore()
	s.Create(newGame("m1", now, "a", "b"))

	t.Run("snapshot taken before mutation is unaffected", func(t *testing.T) {
		before := s.Find("m1").State

		err := s.Mutate("m1", func(g *model.GameSession) error {
			next := g.State.Clone()
			next.Players["a"].Position = model.Vec2{X: 5, Y: 5}
			g.State = next
			g.LastUpdate = now.Add(time.Second)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, model.Vec2{}, before.Players["a"].Position)
		after := s.Find("m1")
		assert.Equal(t, model.Vec2{X: 5, Y: 5}, after.State.Players["a"].Position)
		assert.Equal(t, now.Add(time.Second), after.LastUpdate)
	})

	t.Run("unknown match returns ErrNoSession", func(t *testing.T) {
		err := s.Mutate("ghost", func(*model.GameSession) error { return nil })
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestGameStore_Remove(t *testing.T) {
	now := time.Now()
	s := NewGameStore()
	s.Create(newGame("m1", now, "a", "b"))

	removed := s.Remove("m1")
	require.NotNil(t, removed)
	assert.Equal(t, "m1", removed.MatchID)
	assert.Nil(t, s.Find("m1"))
	assert.Nil(t, s.Remove("m1"))
}

func TestGameStore_IdleBefore(t *testing.T) {
	now := time.Now()
	s := NewGameStore()
	s.Create(newGame("idle", now.Add(-10*time.Minute), "a", "b"))
	s.Create(newGame("busy", now, "c", "d"))

	ids := s.IdleBefore(now.Add(-5 * time.Minute))
	assert.Equal(t, []string{"idle"}, ids)
}
