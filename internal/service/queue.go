package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/audit"
	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/metrics"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/realtime"
	"github.com/Roy9957/GAME-SERVER/internal/sse"
	"github.com/Roy9957/GAME-SERVER/internal/store"
)

// JoinQueueResult is returned after a player enters the queue.
type JoinQueueResult struct {
	PlayerID   string           `json:"playerId"`
	State      model.QueueState `json:"state"`
	Position   int              `json:"position"`
	EnqueuedAt time.Time        `json:"enqueuedAt"`
}

// QueueStatusResult reports where a player stands: still waiting (with
// position), resolved into a match, or expired out of the queue.
type QueueStatusResult struct {
	PlayerID   string           `json:"playerId"`
	State      model.QueueState `json:"state"`
	Position   int              `json:"position,omitempty"`
	MatchID    string           `json:"matchId,omitempty"`
	EnqueuedAt *time.Time       `json:"enqueuedAt,omitempty"`
	ResolvedAt *time.Time       `json:"resolvedAt,omitempty"`
}

// QueueService owns queue membership. Pairing itself runs in the
// matchmaker; this service handles joins, leaves, status polls, the
// staleness sweep, and re-enqueues after cancelled matches.
type QueueService struct {
	queue    *store.Queue
	matches  *store.MatchStore
	sessions *store.SessionStore
	broker   *sse.Broker
	mirror   realtime.Mirror
	metrics  *metrics.Metrics
	staleTTL time.Duration
}

func NewQueueService(
	queue *store.Queue,
	matches *store.MatchStore,
	sessions *store.SessionStore,
	broker *sse.Broker,
	mirror realtime.Mirror,
	m *metrics.Metrics,
	staleTTL time.Duration,
) *QueueService {
	return &QueueService{
		queue:    queue,
		matches:  matches,
		sessions: sessions,
		broker:   broker,
		mirror:   mirror,
		metrics:  m,
		staleTTL: staleTTL,
	}
}

// Join enters a connected player into the matchmaking queue.
func (s *QueueService) Join(ctx context.Context, playerID string, data model.PlayerData) (*JoinQueueResult, error) {
	if playerID == "" {
		return nil, apperrors.MissingRequired("playerId")
	}
	if data.LatencyMS < 0 {
		return nil, apperrors.InvalidArgument("latencyMs", "must be non-negative")
	}

	if s.sessions.Find(playerID) == nil {
		return nil, apperrors.NotFound("Player session")
	}
	if matchID, ok := s.matches.ActiveMatch(playerID); ok {
		return nil, apperrors.Conflict("Player already has an active match").WithDetails(map[string]string{
			"matchId": matchID,
		})
	}

	now := time.Now()
	entry := &model.QueueEntry{
		PlayerID:   playerID,
		Data:       *data.Clone(),
		EnqueuedAt: now,
	}
	if !s.queue.Add(entry) {
		return nil, apperrors.AlreadyQueued(playerID)
	}

	s.sessions.Touch(playerID, now)
	s.mirror.QueueUpsert(*entry)
	s.metrics.SetQueueDepth(s.queue.Len())

	audit.Log(ctx, audit.Event{
		Type:     audit.EventQueueJoin,
		PlayerID: playerID,
		Details:  map[string]interface{}{"latency_ms": data.LatencyMS},
	})

	log.Info().
		Str("playerId", playerID).
		Int("latencyMs", data.LatencyMS).
		Int("queueDepth", s.queue.Len()).
		Msg("player joined queue")

	return &JoinQueueResult{
		PlayerID:   playerID,
		State:      model.QueueStateWaiting,
		Position:   s.queue.Position(playerID) + 1,
		EnqueuedAt: now,
	}, nil
}

// Leave removes a player from the queue. Leaving while not queued is a
// no-op.
func (s *QueueService) Leave(ctx context.Context, playerID string) (bool, error) {
	if playerID == "" {
		return false, apperrors.MissingRequired("playerId")
	}

	entry := s.queue.Remove(playerID)
	if entry == nil {
		return false, nil
	}

	s.mirror.QueueRemove(playerID)
	s.metrics.SetQueueDepth(s.queue.Len())

	audit.Log(ctx, audit.Event{
		Type:     audit.EventQueueLeave,
		PlayerID: playerID,
	})

	log.Info().Str("playerId", playerID).Msg("player left queue")
	return true, nil
}

// Status reports a player's current queue standing. Resolutions from
// pairing and expiry stay pollable for a retention window after the
// entry itself is gone.
func (s *QueueService) Status(ctx context.Context, playerID string) (*QueueStatusResult, error) {
	if playerID == "" {
		return nil, apperrors.MissingRequired("playerId")
	}

	if entry := s.queue.Find(playerID); entry != nil {
		// Position is 1-based: first in line reads as 1.
		return &QueueStatusResult{
			PlayerID:   playerID,
			State:      model.QueueStateWaiting,
			Position:   s.queue.Position(playerID) + 1,
			EnqueuedAt: &entry.EnqueuedAt,
		}, nil
	}

	if res := s.queue.Resolution(playerID); res != nil {
		return &QueueStatusResult{
			PlayerID:   playerID,
			State:      res.State,
			MatchID:    res.MatchID,
			ResolvedAt: &res.ResolvedAt,
		}, nil
	}

	return nil, apperrors.NotFound("Queue entry")
}

// Requeue re-enters a player after their match was cancelled, keeping
// the attributes they originally joined with but a fresh enqueue time.
// Disconnected players are skipped.
func (s *QueueService) Requeue(ctx context.Context, playerID string, data model.PlayerData, reason model.CancelReason) bool {
	if s.sessions.Find(playerID) == nil {
		log.Debug().Str("playerId", playerID).Msg("skipping requeue for disconnected player")
		return false
	}

	entry := &model.QueueEntry{
		PlayerID:   playerID,
		Data:       *data.Clone(),
		EnqueuedAt: time.Now(),
	}
	if !s.queue.Add(entry) {
		return false
	}

	s.mirror.QueueUpsert(*entry)
	s.metrics.SetQueueDepth(s.queue.Len())

	audit.Log(ctx, audit.Event{
		Type:     audit.EventQueueJoin,
		PlayerID: playerID,
		Reason:   string(reason),
		Details:  map[string]interface{}{"requeued": true},
	})

	log.Info().
		Str("playerId", playerID).
		Str("reason", string(reason)).
		Msg("player requeued after cancelled match")
	return true
}

// SweepStale evicts entries that waited past the staleness TTL,
// notifying each evicted player. Returns how many were evicted.
func (s *QueueService) SweepStale(ctx context.Context, now time.Time) int {
	evicted := s.queue.EvictStale(now.Add(-s.staleTTL), now)
	if len(evicted) == 0 {
		return 0
	}

	for _, entry := range evicted {
		s.mirror.QueueRemove(entry.PlayerID)

		publishEvent(ctx, s.broker, entry.PlayerID, model.GameEvent{
			Type:     model.EventQueueExpired,
			PlayerID: entry.PlayerID,
			Data: map[string]interface{}{
				"enqueuedAt": entry.EnqueuedAt,
			},
			At: now,
		})

		audit.Log(ctx, audit.Event{
			Type:     audit.EventQueueExpire,
			PlayerID: entry.PlayerID,
			Details:  map[string]interface{}{"waited_seconds": int(now.Sub(entry.EnqueuedAt).Seconds())},
		})
	}

	s.metrics.IncQueueEvictions(len(evicted))
	s.metrics.SetQueueDepth(s.queue.Len())

	log.Info().Int("evicted", len(evicted)).Msg("evicted stale queue entries")
	return len(evicted)
}

// SweepResolutions drops resolution records older than the cutoff.
func (s *QueueService) SweepResolutions(cutoff time.Time) int {
	return s.queue.SweepResolutions(cutoff)
}

// Depth returns the number of waiting players.
func (s *QueueService) Depth() int {
	return s.queue.Len()
}
