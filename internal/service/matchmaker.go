package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/config"
	"github.com/Roy9957/GAME-SERVER/internal/metrics"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/store"
)

// MatchmakerService pairs waiting players by latency. Each cycle takes
// an ordered snapshot of the queue and proposes a match for every
// adjacent pair, lowest latencies first. An odd trailing entry stays
// queued for the next cycle.
type MatchmakerService struct {
	queue          *store.Queue
	matches        *store.MatchStore
	matchSvc       *MatchService
	metrics        *metrics.Metrics
	confirmTimeout time.Duration
}

func NewMatchmakerService(
	queue *store.Queue,
	matches *store.MatchStore,
	matchSvc *MatchService,
	m *metrics.Metrics,
	confirmTimeout time.Duration,
) *MatchmakerService {
	return &MatchmakerService{
		queue:          queue,
		matches:        matches,
		matchSvc:       matchSvc,
		metrics:        m,
		confirmTimeout: confirmTimeout,
	}
}

// RunCycle executes one pairing pass and returns how many matches were
// proposed. A trailing unpaired entry stays queued for the next cycle.
func (s *MatchmakerService) RunCycle(ctx context.Context) int {
	snapshot := s.queue.Snapshot()
	if len(snapshot) < 2 {
		return 0
	}

	proposed := 0
	for i := 0; i+1 < len(snapshot) && proposed < config.MaxPairsPerCycle; i += 2 {
		if s.propose(ctx, snapshot[i], snapshot[i+1]) {
			proposed++
		}
	}

	if proposed > 0 {
		s.metrics.SetQueueDepth(s.queue.Len())
		log.Info().
			Int("proposed", proposed).
			Int("queueDepth", s.queue.Len()).
			Msg("pairing cycle completed")
	}
	return proposed
}

// propose reserves both players in the match store first, then removes
// their queue entries. If either entry vanished between snapshot and
// removal the reservation is rolled back and any entry already taken
// goes straight back into the queue, never silently dropped.
func (s *MatchmakerService) propose(ctx context.Context, a, b model.QueueEntry) bool {
	now := time.Now()
	match := &model.Match{
		ID:      uuid.New().String(),
		Players: [2]string{a.PlayerID, b.PlayerID},
		Confirmations: map[string]model.ConfirmStatus{
			a.PlayerID: model.ConfirmStatusPending,
			b.PlayerID: model.ConfirmStatusPending,
		},
		PlayerData: map[string]model.PlayerData{
			a.PlayerID: *a.Data.Clone(),
			b.PlayerID: *b.Data.Clone(),
		},
		Status:    model.MatchStatusProposed,
		CreatedAt: now,
		Deadline:  now.Add(s.confirmTimeout),
	}

	if !s.matches.Create(match) {
		log.Warn().
			Str("playerA", a.PlayerID).
			Str("playerB", b.PlayerID).
			Msg("pairing skipped, player already claimed by a match")
		return false
	}

	entryA := s.queue.Take(a.PlayerID, model.QueueStateMatched, match.ID, now)
	if entryA == nil {
		s.matches.Delete(match.ID)
		return false
	}
	entryB := s.queue.Take(b.PlayerID, model.QueueStateMatched, match.ID, now)
	if entryB == nil {
		s.matches.Delete(match.ID)
		s.queue.Add(entryA)
		log.Warn().
			Str("playerId", b.PlayerID).
			Msg("pairing aborted, opponent entry gone before removal")
		return false
	}

	s.matchSvc.Announce(ctx, match)
	return true
}
