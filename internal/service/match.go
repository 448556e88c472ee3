package service

import (
	"context"
	"sync"
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

// MatchService drives the match confirmation state machine: announcing
// proposals, recording confirmations, rejections and deadline expiries,
// and kicking off the game session when both players are ready. All
// state transitions happen in the match store; this service owns the
// side effects and the deadline timers.
type MatchService struct {
	matches *store.MatchStore
	queue   *QueueService
	games   *GameService
	broker  *sse.Broker
	mirror  realtime.Mirror
	archive *ArchiveService
	metrics *metrics.Metrics

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewMatchService(
	matches *store.MatchStore,
	queue *QueueService,
	games *GameService,
	broker *sse.Broker,
	mirror realtime.Mirror,
	archive *ArchiveService,
	m *metrics.Metrics,
) *MatchService {
	return &MatchService{
		matches: matches,
		queue:   queue,
		games:   games,
		broker:  broker,
		mirror:  mirror,
		archive: archive,
		metrics: m,
		timers:  make(map[string]*time.Timer),
	}
}

// Get returns the current state of a match.
func (s *MatchService) Get(ctx context.Context, matchID string) (*model.Match, error) {
	if matchID == "" {
		return nil, apperrors.MissingRequired("matchId")
	}
	match := s.matches.Find(matchID)
	if match == nil {
		return nil, apperrors.NotFound("Match")
	}
	return match, nil
}

// ProposedCount reports how many matches are still waiting on confirmations.
func (s *MatchService) ProposedCount() int {
	return s.matches.CountProposed()
}

// Announce publishes a freshly created proposal: mirrors it, notifies
// both players with their opponent's id and queue attributes, and arms
// the confirmation deadline timer.
func (s *MatchService) Announce(ctx context.Context, match *model.Match) {
	s.mirror.MatchUpsert(*match)
	for _, pid := range match.Players {
		s.mirror.QueueRemove(pid)
	}

	for _, pid := range match.Players {
		opponentID := match.Opponent(pid)
		data := map[string]any{
			"matchId":    match.ID,
			"opponentId": opponentID,
			"deadline":   match.Deadline,
		}
		if od, ok := match.PlayerData[opponentID]; ok {
			data["opponent"] = map[string]any{
				"latencyMs":  od.LatencyMS,
				"attributes": od.Attributes,
			}
		}
		publishEvent(ctx, s.broker, pid, model.GameEvent{
			Type:     model.EventMatchProposed,
			MatchID:  match.ID,
			PlayerID: pid,
			Data:     data,
			At:       match.CreatedAt,
		})
	}

	s.metrics.IncMatchesProposed()
	s.metrics.SetProposedMatches(s.matches.CountProposed())

	audit.Log(ctx, audit.Event{
		Type:    audit.EventMatchProposed,
		MatchID: match.ID,
		Details: map[string]interface{}{
			"player_a": match.Players[0],
			"player_b": match.Players[1],
		},
	})

	log.Info().
		Str("matchId", match.ID).
		Str("playerA", match.Players[0]).
		Str("playerB", match.Players[1]).
		Time("deadline", match.Deadline).
		Msg("match proposed")

	s.armTimer(match.ID, match.Deadline)
}

// Confirm records one player's answer to a proposal. Accepting when the
// opponent already accepted confirms the match and creates its game
// session exactly once; declining cancels the match, drops the decliner
// and requeues the opponent. Confirming a match already in a terminal
// state is a no-op that returns the current status.
func (s *MatchService) Confirm(ctx context.Context, matchID, playerID string, accept bool) (*model.Match, error) {
	if matchID == "" {
		return nil, apperrors.MissingRequired("matchId")
	}
	if playerID == "" {
		return nil, apperrors.MissingRequired("playerId")
	}

	if !accept {
		return s.reject(ctx, matchID, playerID)
	}

	match, transition, ok := s.matches.Confirm(matchID, playerID)
	if !ok {
		return nil, apperrors.NotFound("Match")
	}

	if transition != store.TransitionConfirmed {
		log.Debug().
			Str("matchId", matchID).
			Str("playerId", playerID).
			Str("status", string(match.Status)).
			Msg("confirmation recorded")
		return match, nil
	}

	// This caller saw the proposed -> confirmed transition, so side
	// effects below run exactly once per match.
	s.stopTimer(matchID)
	s.mirror.MatchUpsert(*match)
	s.metrics.IncMatchesConfirmed()
	s.metrics.SetProposedMatches(s.matches.CountProposed())
	s.archive.RecordResolved(*match)

	session := s.games.CreateSession(ctx, match)

	for _, pid := range match.Players {
		publishEvent(ctx, s.broker, pid, model.GameEvent{
			Type:    model.EventMatchConfirmed,
			MatchID: match.ID,
			Data: map[string]any{
				"matchId":   match.ID,
				"startedAt": session.StartedAt,
			},
			At: session.StartedAt,
		})
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventMatchConfirmed,
		MatchID: match.ID,
	})

	log.Info().Str("matchId", match.ID).Msg("match confirmed, game session started")
	return match, nil
}

func (s *MatchService) reject(ctx context.Context, matchID, playerID string) (*model.Match, error) {
	match, transition, ok := s.matches.Reject(matchID, playerID)
	if !ok {
		return nil, apperrors.NotFound("Match")
	}
	if transition != store.TransitionCancelled {
		return match, nil
	}

	s.stopTimer(matchID)
	s.mirror.MatchRemove(matchID)
	s.metrics.IncMatchesCancelled(string(model.CancelReasonRejected))
	s.metrics.SetProposedMatches(s.matches.CountProposed())
	s.archive.RecordResolved(*match)

	now := time.Now()
	for _, pid := range match.Players {
		publishEvent(ctx, s.broker, pid, model.GameEvent{
			Type:    model.EventMatchCancelled,
			MatchID: match.ID,
			Data: map[string]any{
				"reason":     string(model.CancelReasonRejected),
				"rejectedBy": playerID,
			},
			At: now,
		})
	}

	// The decliner is dropped; only the opponent goes back to waiting.
	opponentID := match.Opponent(playerID)
	s.queue.Requeue(ctx, opponentID, match.PlayerData[opponentID], model.CancelReasonRejected)

	audit.Log(ctx, audit.Event{
		Type:     audit.EventMatchCancelled,
		MatchID:  match.ID,
		PlayerID: playerID,
		Reason:   string(model.CancelReasonRejected),
	})

	log.Info().
		Str("matchId", match.ID).
		Str("playerId", playerID).
		Msg("match rejected")
	return match, nil
}

// expire fires when a proposal's confirmation deadline elapses. If the
// match reached a terminal state first the timer is a no-op; otherwise
// the match cancels and every still-connected participant is requeued.
func (s *MatchService) expire(matchID string) {
	match, transition := s.matches.Expire(matchID)
	if transition != store.TransitionCancelled {
		return
	}

	s.mu.Lock()
	delete(s.timers, matchID)
	s.mu.Unlock()

	ctx := context.Background()
	s.mirror.MatchRemove(matchID)
	s.metrics.IncMatchesCancelled(string(model.CancelReasonTimeout))
	s.metrics.SetProposedMatches(s.matches.CountProposed())
	s.archive.RecordResolved(*match)

	now := time.Now()
	for _, pid := range match.Players {
		publishEvent(ctx, s.broker, pid, model.GameEvent{
			Type:    model.EventMatchCancelled,
			MatchID: match.ID,
			Data:    map[string]any{"reason": string(model.CancelReasonTimeout)},
			At:      now,
		})
	}

	for _, pid := range match.Players {
		s.queue.Requeue(ctx, pid, match.PlayerData[pid], model.CancelReasonTimeout)
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventMatchCancelled,
		MatchID: match.ID,
		Reason:  string(model.CancelReasonTimeout),
	})

	log.Info().Str("matchId", matchID).Msg("match confirmation timed out")
}

func (s *MatchService) armTimer(matchID string, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	s.timers[matchID] = time.AfterFunc(d, func() {
		s.expire(matchID)
	})
}

func (s *MatchService) stopTimer(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[matchID]; ok {
		t.Stop()
		delete(s.timers, matchID)
	}
}

// Close stops every pending deadline timer. Used at shutdown.
func (s *MatchService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
