package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Roy9957/GAME-SERVER/internal/metrics"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/realtime"
	"github.com/Roy9957/GAME-SERVER/internal/service"
	"github.com/Roy9957/GAME-SERVER/internal/sse"
	"github.com/Roy9957/GAME-SERVER/internal/store"
)

// testServer wires the service graph over in-memory stores and mounts
// the public routes the way cmd/server does, minus middleware.
type testServer struct {
	router  chi.Router
	broker  *sse.Broker
	matches *store.MatchStore

	sessionSvc *service.SessionService
	queueSvc   *service.QueueService
	matchSvc   *service.MatchService
	gameSvc    *service.GameService
	maker      *service.MatchmakerService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sessions := store.NewSessionStore()
	queue := store.NewQueue()
	matches := store.NewMatchStore()
	games := store.NewGameStore()
	broker := sse.NewBroker(nil)
	t.Cleanup(broker.Close)

	m := metrics.New("handlertest")
	mirror := realtime.NewNoopMirror()
	archive := service.NewArchiveService(nil, nil)

	queueSvc := service.NewQueueService(queue, matches, sessions, broker, mirror, m, 2*time.Minute)
	gameSvc := service.NewGameService(games, matches, sessions, broker, mirror, archive, m, 5*time.Minute)
	matchSvc := service.NewMatchService(matches, queueSvc, gameSvc, broker, mirror, archive, m)
	t.Cleanup(matchSvc.Close)
	maker := service.NewMatchmakerService(queue, matches, matchSvc, m, 15*time.Second)
	sessionSvc := service.NewSessionService(sessions, queueSvc, gameSvc, m, time.Minute, true)

	r := chi.NewRouter()
	r.Mount("/v1/players", NewPlayerHandler(sessionSvc).Routes())
	r.Mount("/v1/queue", NewQueueHandler(queueSvc).Routes())
	r.Mount("/v1/matches", NewMatchHandler(matchSvc, archive).Routes())
	r.Mount("/v1/games", NewGameHandler(gameSvc).Routes())
	r.Get("/v1/events", NewEventsHandler(broker, sessionSvc).ServeHTTP)
	r.Get("/health", NewHealthHandler(sessionSvc, queueSvc, matchSvc, gameSvc, nil, nil).ServeHTTP)

	return &testServer{
		router:     r,
		broker:     broker,
		matches:    matches,
		sessionSvc: sessionSvc,
		queueSvc:   queueSvc,
		matchSvc:   matchSvc,
		gameSvc:    gameSvc,
		maker:      maker,
	}
}

// do runs one request through the mounted router. A non-nil body is
// JSON-encoded; a string body is sent raw so tests can post malformed
// payloads.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reader = bytes.NewBuffer(nil)
	case string:
		reader = bytes.NewBufferString(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) connect(t *testing.T, playerID string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/v1/players/connect", map[string]any{"playerId": playerID})
	require.Equal(t, http.StatusOK, rec.Code)
}

func (ts *testServer) join(t *testing.T, playerID string, latencyMS int) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/v1/queue/join", map[string]any{
		"playerId":  playerID,
		"latencyMs": latencyMS,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

// proposeMatch connects and queues two players and runs one pairing
// cycle, returning the resulting proposal.
func (ts *testServer) proposeMatch(t *testing.T, playerA, playerB string) *model.Match {
	t.Helper()
	ts.connect(t, playerA)
	ts.connect(t, playerB)
	ts.join(t, playerA, 20)
	ts.join(t, playerB, 30)
	require.Equal(t, 1, ts.maker.RunCycle(context.Background()))

	matchID, ok := ts.matches.ActiveMatch(playerA)
	require.True(t, ok)
	match := ts.matches.Find(matchID)
	require.NotNil(t, match)
	return match
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
