package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Roy9957/GAME-SERVER/internal/metrics"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/realtime"
	"github.com/Roy9957/GAME-SERVER/internal/sse"
	"github.com/Roy9957/GAME-SERVER/internal/store"
)

type envTimeouts struct {
	confirmTimeout time.Duration
	queueStaleTTL  time.Duration
	playerIdleTTL  time.Duration
	matchIdleTTL   time.Duration
}

func defaultTimeouts() envTimeouts {
	return envTimeouts{
		confirmTimeout: 15 * time.Second,
		queueStaleTTL:  2 * time.Minute,
		playerIdleTTL:  time.Minute,
		matchIdleTTL:   5 * time.Minute,
	}
}

// testEnv wires the full service graph over in-memory stores, a local
// broker and a disabled archive.
type testEnv struct {
	sessions *store.SessionStore
	queue    *store.Queue
	matches  *store.MatchStore
	games    *store.GameStore
	broker   *sse.Broker

	sessionSvc *SessionService
	queueSvc   *QueueService
	gameSvc    *GameService
	matchSvc   *MatchService
	maker      *MatchmakerService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, defaultTimeouts())
}

func newTestEnvWith(t *testing.T, timeouts envTimeouts) *testEnv {
	t.Helper()

	env := &testEnv{
		sessions: store.NewSessionStore(),
		queue:    store.NewQueue(),
		matches:  store.NewMatchStore(),
		games:    store.NewGameStore(),
		broker:   sse.NewBroker(nil),
	}
	t.Cleanup(env.broker.Close)

	m := metrics.New("test")
	mirror := realtime.NewNoopMirror()
	archive := NewArchiveService(nil, nil)

	env.queueSvc = NewQueueService(env.queue, env.matches, env.sessions, env.broker, mirror, m, timeouts.queueStaleTTL)
	env.gameSvc = NewGameService(env.games, env.matches, env.sessions, env.broker, mirror, archive, m, timeouts.matchIdleTTL)
	env.gameSvc.seed = func() int64 { return 42 }
	env.matchSvc = NewMatchService(env.matches, env.queueSvc, env.gameSvc, env.broker, mirror, archive, m)
	t.Cleanup(env.matchSvc.Close)
	env.maker = NewMatchmakerService(env.queue, env.matches, env.matchSvc, m, timeouts.confirmTimeout)
	env.sessionSvc = NewSessionService(env.sessions, env.queueSvc, env.gameSvc, m, timeouts.playerIdleTTL, true)

	return env
}

func (e *testEnv) connect(t *testing.T, playerID string) {
	t.Helper()
	_, err := e.sessionSvc.Connect(context.Background(), playerID, nil)
	require.NoError(t, err)
}

func (e *testEnv) join(t *testing.T, playerID string, latencyMS int) {
	t.Helper()
	_, err := e.queueSvc.Join(context.Background(), playerID, model.PlayerData{LatencyMS: latencyMS})
	require.NoError(t, err)
}

// proposeMatch connects and queues two players, runs one pairing cycle
// and returns the resulting proposal.
func (e *testEnv) proposeMatch(t *testing.T, playerA, playerB string) *model.Match {
	t.Helper()
	e.connect(t, playerA)
	e.connect(t, playerB)
	e.join(t, playerA, 20)
	e.join(t, playerB, 30)
	require.Equal(t, 1, e.maker.RunCycle(context.Background()))

	matchID, ok := e.matches.ActiveMatch(playerA)
	require.True(t, ok)
	match := e.matches.Find(matchID)
	require.NotNil(t, match)
	return match
}

// confirmBoth accepts the proposal for both players and returns the
// confirmed match.
func (e *testEnv) confirmBoth(t *testing.T, match *model.Match) *model.Match {
	t.Helper()
	_, err := e.matchSvc.Confirm(context.Background(), match.ID, match.Players[0], true)
	require.NoError(t, err)
	confirmed, err := e.matchSvc.Confirm(context.Background(), match.ID, match.Players[1], true)
	require.NoError(t, err)
	require.Equal(t, model.MatchStatusConfirmed, confirmed.Status)
	return confirmed
}

func nextEvent(t *testing.T, client *sse.Client) sse.Event {
	t.Helper()
	select {
	case ev := <-client.Events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return sse.Event{}
	}
}

func drainEvents(client *sse.Client) []sse.Event {
	var events []sse.Event
	for {
		select {
		case ev := <-client.Events:
			events = append(events, ev)
		default:
			return events
		}
	}
}
