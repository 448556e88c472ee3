package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

func newEntry(playerID string, latency int, at time.Time) *model.QueueEntry {
	return &model.QueueEntry{
		PlayerID:   playerID,
		Data:       model.PlayerData{LatencyMS: latency},
		EnqueuedAt: at,
	}
}

func TestQueue_Add(t *testing.T) {
	now := time.Now()
	q := NewQueue()

	t.Run("adds new entry", func(t *testing.T) {
		assert.True(t, q.Add(newEntry("p1", 30, now)))
		assert.Equal(t, 1, q.Len())
	})

	t.Run("duplicate join is rejected and keeps original entry", func(t *testing.T) {
		assert.False(t, q.Add(newEntry("p1", 99, now.Add(time.Minute))))

		entry := q.Find("p1")
		require.NotNil(t, entry)
		assert.Equal(t, 30, entry.Data.LatencyMS)
		assert.Equal(t, now, entry.EnqueuedAt)
	})

	t.Run("rejoining clears a stale resolution", func(t *testing.T) {
		q.Take("p1", model.QueueStateMatched, "m1", now)
		require.NotNil(t, q.Resolution("p1"))

		assert.True(t, q.Add(newEntry("p1", 30, now)))
		assert.Nil(t, q.Resolution("p1"))
	})
}

func TestQueue_Snapshot(t *testing.T) {
	now := time.Now()
	q := NewQueue()

	q.Add(newEntry("slow", 120, now))
	q.Add(newEntry("fast", 10, now.Add(time.Second)))
	q.Add(newEntry("earlier", 40, now))
	q.Add(newEntry("later", 40, now.Add(2*time.Second)))
	q.Add(newEntry("tie-b", 40, now))

	t.Run("orders by latency then enqueue time then id", func(t *testing.T) {
		snap := q.Snapshot()
		ids := make([]string, len(snap))
		for i, e := range snap {
			ids[i] = e.PlayerID
		}
		assert.Equal(t, []string{"fast", "earlier", "tie-b", "later", "slow"}, ids)
	})

	t.Run("repeat snapshots agree", func(t *testing.T) {
		assert.Equal(t, q.Snapshot(), q.Snapshot())
	})

	t.Run("position follows snapshot order", func(t *testing.T) {
		assert.Equal(t, 0, q.Position("fast"))
		assert.Equal(t, 4, q.Position("slow"))
		assert.Equal(t, -1, q.Position("ghost"))
	})
}

func TestQueue_Take(t *testing.T) {
	now := time.Now()
	q := NewQueue()
	q.Add(newEntry("p1", 20, now))

	t.Run("removes entry and records resolution", func(t *testing.T) {
		entry := q.Take("p1", model.QueueStateMatched, "m42", now)
		require.NotNil(t, entry)
		assert.Equal(t, 0, q.Len())

		res := q.Resolution("p1")
		require.NotNil(t, res)
		assert.Equal(t, model.QueueStateMatched, res.State)
		assert.Equal(t, "m42", res.MatchID)
	})

	t.Run("missing entry returns nil", func(t *testing.T) {
		assert.Nil(t, q.Take("p1", model.QueueStateMatched, "m43", now))
	})
}

func TestQueue_Remove(t *testing.T) {
	now := time.Now()
	q := NewQueue()
	q.Add(newEntry("p1", 20, now))

	t.Run("removes without a resolution", func(t *testing.T) {
		require.NotNil(t, q.Remove("p1"))
		assert.Nil(t, q.Resolution("p1"))
		assert.Equal(t, 0, q.Len())
	})

	t.Run("missing entry returns nil", func(t *testing.T) {
		assert.Nil(t, q.Remove("p1"))
	})
}

func TestQueue_EvictStale(t *testing.T) {
	now := time.Now()
	q := NewQueue()
	q.Add(newEntry("stale", 10, now.Add(-3*time.Minute)))
	q.Add(newEntry("fresh", 10, now))

	evicted := q.EvictStale(now.Add(-2*time.Minute), now)
	require.Len(t, evicted, 1)
	assert.Equal(t, "stale", evicted[0].PlayerID)
	assert.Equal(t, 1, q.Len())

	res := q.Resolution("stale")
	require.NotNil(t, res)
	assert.Equal(t, model.QueueStateExpired, res.State)
	assert.Empty(t, res.MatchID)
}

func TestQueue_SweepResolutions(t *testing.T) {
	now := time.Now()
	q := NewQueue()
	q.Add(newEntry("p1", 10, now.Add(-time.Hour)))
	q.Add(newEntry("p2", 10, now))
	q.Take("p1", model.QueueStateMatched, "m1", now.Add(-30*time.Minute))
	q.Take("p2", model.QueueStateMatched, "m2", now)

	dropped := q.SweepResolutions(now.Add(-10 * time.Minute))
	assert.Equal(t, 1, dropped)
	assert.Nil(t, q.Resolution("p1"))
	assert.NotNil(t, q.Resolution("p2"))
}
