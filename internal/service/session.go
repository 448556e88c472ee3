package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/audit"
	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/metrics"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/store"
	"github.com/Roy9957/GAME-SERVER/internal/util"
)

// ConnectResult is returned when a player registers a session.
type ConnectResult struct {
	PlayerID    string              `json:"playerId"`
	Status      model.SessionStatus `json:"status"`
	Reconnected bool                `json:"reconnected"`
	ConnectedAt time.Time           `json:"connectedAt"`
}

// SessionService tracks player presence. Connect registers or refreshes
// a session, Heartbeat keeps it alive, and Disconnect (explicit or via
// the idle sweep) cascades: the player leaves the queue and is evicted
// from any running game session.
type SessionService struct {
	sessions *store.SessionStore
	queue    *QueueService
	games    *GameService
	metrics  *metrics.Metrics
	idleTTL  time.Duration

	countReconnects bool
	connects        atomic.Int64
}

func NewSessionService(
	sessions *store.SessionStore,
	queue *QueueService,
	games *GameService,
	m *metrics.Metrics,
	idleTTL time.Duration,
	countReconnects bool,
) *SessionService {
	return &SessionService{
		sessions:        sessions,
		queue:           queue,
		games:           games,
		metrics:         m,
		idleTTL:         idleTTL,
		countReconnects: countReconnects,
	}
}

// Connect registers a player session. Reconnecting refreshes the
// existing session in place and keeps whatever queue or match state the
// player already has.
func (s *SessionService) Connect(ctx context.Context, playerID string, clientInfo map[string]string) (*ConnectResult, error) {
	if playerID == "" {
		return nil, apperrors.MissingRequired("playerId")
	}
	if !util.IsValidPlayerID(playerID) {
		return nil, apperrors.InvalidArgument("playerId", "must be 1-64 characters of A-Za-z0-9_.-")
	}

	now := time.Now()
	session := &model.PlayerSession{
		PlayerID:     playerID,
		ClientInfo:   clientInfo,
		Status:       model.SessionStatusConnected,
		ConnectedAt:  now,
		LastActivity: now,
	}

	created := s.sessions.Upsert(session)
	if created || s.countReconnects {
		s.connects.Add(1)
		s.metrics.IncConnects()
	}
	s.metrics.SetConnectedPlayers(s.sessions.Count())

	audit.Log(ctx, audit.Event{
		Type:     audit.EventPlayerConnect,
		PlayerID: playerID,
		Details:  map[string]interface{}{"reconnected": !created},
	})

	log.Info().
		Str("playerId", playerID).
		Bool("reconnected", !created).
		Msg("player connected")

	return &ConnectResult{
		PlayerID:    playerID,
		Status:      model.SessionStatusConnected,
		Reconnected: !created,
		ConnectedAt: now,
	}, nil
}

// Heartbeat refreshes a session's last-activity timestamp.
func (s *SessionService) Heartbeat(ctx context.Context, playerID string) error {
	if playerID == "" {
		return apperrors.MissingRequired("playerId")
	}
	if !s.sessions.Touch(playerID, time.Now()) {
		return apperrors.NotFound("Player session")
	}
	return nil
}

// Find returns the player's session, or nil if not connected.
func (s *SessionService) Find(playerID string) *model.PlayerSession {
	return s.sessions.Find(playerID)
}

// Disconnect removes a player's session and cascades the removal
// through the queue and any running game session. Disconnecting an
// unknown player is a no-op.
func (s *SessionService) Disconnect(ctx context.Context, playerID string) error {
	if playerID == "" {
		return apperrors.MissingRequired("playerId")
	}
	s.remove(ctx, playerID, audit.EventPlayerDisconnect)
	return nil
}

// SweepIdle disconnects players whose last activity is older than the
// idle TTL. Returns how many sessions were removed.
func (s *SessionService) SweepIdle(ctx context.Context, now time.Time) int {
	stale := s.sessions.IdleBefore(now.Add(-s.idleTTL))
	for _, playerID := range stale {
		s.remove(ctx, playerID, audit.EventPlayerIdle)
	}
	return len(stale)
}

func (s *SessionService) remove(ctx context.Context, playerID string, event audit.EventType) {
	session := s.sessions.Remove(playerID)
	if session == nil {
		return
	}

	// Session first, then queue, then game: once the session is gone a
	// concurrent match cancellation will not requeue this player.
	if _, err := s.queue.Leave(ctx, playerID); err != nil {
		log.Error().Err(err).Str("playerId", playerID).Msg("failed to remove disconnecting player from queue")
	}
	s.games.RemovePlayer(ctx, playerID)

	s.metrics.SetConnectedPlayers(s.sessions.Count())

	audit.Log(ctx, audit.Event{
		Type:     event,
		PlayerID: playerID,
	})

	log.Info().
		Str("playerId", playerID).
		Str("event", string(event)).
		Msg("player session removed")
}

// Count returns the number of connected players.
func (s *SessionService) Count() int {
	return s.sessions.Count()
}

// ConnectCount returns the number of connects since startup.
func (s *SessionService) ConnectCount() int64 {
	return s.connects.Load()
}
