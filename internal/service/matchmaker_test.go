package service

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

func TestMatchmakerRunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("pairs players by latency, lowest first", func(t *testing.T) {
		env := newTestEnv(t)
		for pid, latency := range map[string]int{
			"slow": 80, "fast": 10, "mid-a": 30, "mid-b": 40,
		} {
			env.connect(t, pid)
			env.join(t, pid, latency)
		}

		assert.Equal(t, 2, env.maker.RunCycle(ctx))
		assert.Equal(t, 0, env.queueSvc.Depth())

		fastMatch, ok := env.matches.ActiveMatch("fast")
		require.True(t, ok)
		slowMatch, ok := env.matches.ActiveMatch("slow")
		require.True(t, ok)
		assert.NotEqual(t, fastMatch, slowMatch)

		// fast (10) pairs with mid-a (30), mid-b (40) with slow (80).
		match := env.matches.Find(fastMatch)
		require.NotNil(t, match)
		assert.ElementsMatch(t, []string{"fast", "mid-a"}, match.Players[:])

		match = env.matches.Find(slowMatch)
		require.NotNil(t, match)
		assert.ElementsMatch(t, []string{"mid-b", "slow"}, match.Players[:])
	})

	t.Run("trailing odd player stays queued", func(t *testing.T) {
		env := newTestEnv(t)
		for pid, latency := range map[string]int{
			"a": 10, "b": 20, "c": 30,
		} {
			env.connect(t, pid)
			env.join(t, pid, latency)
		}

		assert.Equal(t, 1, env.maker.RunCycle(ctx))
		assert.Equal(t, 1, env.queueSvc.Depth())

		status, err := env.queueSvc.Status(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, model.QueueStateWaiting, status.State)
	})

	t.Run("fewer than two players proposes nothing", func(t *testing.T) {
		env := newTestEnv(t)
		assert.Equal(t, 0, env.maker.RunCycle(ctx))

		env.connect(t, "lonely")
		env.join(t, "lonely", 10)
		assert.Equal(t, 0, env.maker.RunCycle(ctx))
		assert.Equal(t, 1, env.queueSvc.Depth())
	})

	t.Run("proposal starts pending with a confirmation deadline", func(t *testing.T) {
		env := newTestEnv(t)
		match := env.proposeMatch(t, "p1", "p2")

		assert.Equal(t, model.MatchStatusProposed, match.Status)
		for _, pid := range match.Players {
			assert.Equal(t, model.ConfirmStatusPending, match.Confirmations[pid])
		}
		assert.WithinDuration(t, time.Now().Add(defaultTimeouts().confirmTimeout), match.Deadline, time.Second)
	})

	t.Run("queue entries resolve to matched", func(t *testing.T) {
		env := newTestEnv(t)
		match := env.proposeMatch(t, "p1", "p2")

		for _, pid := range match.Players {
			status, err := env.queueSvc.Status(ctx, pid)
			require.NoError(t, err)
			assert.Equal(t, model.QueueStateMatched, status.State)
			assert.Equal(t, match.ID, status.MatchID)
		}
	})

	t.Run("notifies each player with their opponent", func(t *testing.T) {
		env := newTestEnv(t)
		env.connect(t, "p1")
		env.connect(t, "p2")

		client := env.broker.Subscribe("p1")
		defer env.broker.Unsubscribe(client)

		env.join(t, "p1", 20)
		env.join(t, "p2", 30)
		require.Equal(t, 1, env.maker.RunCycle(ctx))

		ev := nextEvent(t, client)
		assert.Equal(t, string(model.EventMatchProposed), ev.Type)

		var payload model.GameEvent
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		assert.Equal(t, "p2", payload.Data["opponentId"])

		opponent, ok := payload.Data["opponent"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(30), opponent["latencyMs"])
	})

	t.Run("paired players are claimed and cannot rejoin", func(t *testing.T) {
		env := newTestEnv(t)
		env.proposeMatch(t, "p1", "p2")

		_, err := env.queueSvc.Join(ctx, "p1", model.PlayerData{LatencyMS: 5})
		assert.Error(t, err)
	})
}

// TestQueueAndMatchMutuallyExclusive drives a reproducible random
// operation sequence and checks after every step that no player is both
// waiting in the queue and claimed by a match.
func TestQueueAndMatchMutuallyExclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	players := []string{"p1", "p2", "p3", "p4", "p5"}
	for _, pid := range players {
		env.connect(t, pid)
	}

	for step := 0; step < 500; step++ {
		pid := players[rng.Intn(len(players))]
		switch rng.Intn(7) {
		case 0:
			_, _ = env.queueSvc.Join(ctx, pid, model.PlayerData{LatencyMS: rng.Intn(100)})
		case 1:
			_, _ = env.queueSvc.Leave(ctx, pid)
		case 2:
			env.maker.RunCycle(ctx)
		case 3:
			if matchID, ok := env.matches.ActiveMatch(pid); ok {
				_, _ = env.matchSvc.Confirm(ctx, matchID, pid, true)
			}
		case 4:
			if matchID, ok := env.matches.ActiveMatch(pid); ok {
				_, _ = env.matchSvc.Confirm(ctx, matchID, pid, false)
			}
		case 5:
			_ = env.sessionSvc.Disconnect(ctx, pid)
		case 6:
			_, _ = env.sessionSvc.Connect(ctx, pid, nil)
		}

		for _, p := range players {
			queued := env.queue.Position(p) >= 0
			_, claimed := env.matches.ActiveMatch(p)
			if queued && claimed {
				t.Fatalf("step %d: player %s is queued and claimed by a match", step, p)
			}
		}
	}
}
