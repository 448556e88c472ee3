package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/database"
	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/repository"
)

const archiveWriteTimeout = 5 * time.Second

// ArchiveService persists terminal match records to the external store.
// Writes are fire-and-forget: in-memory state stays authoritative for
// live coordination and a failed write only logs. Reads back the
// archive for the history endpoints.
type ArchiveService struct {
	db   *database.DB
	repo repository.HistoryRepository
}

// NewArchiveService creates the archive service. A nil db disables it:
// every write becomes a no-op and reads report not found.
func NewArchiveService(db *database.DB, repo repository.HistoryRepository) *ArchiveService {
	return &ArchiveService{db: db, repo: repo}
}

// Enabled reports whether an external store is configured.
func (s *ArchiveService) Enabled() bool {
	return s != nil && s.db != nil
}

// EnsureSchema creates the archive tables if they do not exist.
func (s *ArchiveService) EnsureSchema(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.EnsureSchema(ctx)
}

// RecordResolved archives a match that reached a terminal state.
func (s *ArchiveService) RecordResolved(match model.Match) {
	if !s.Enabled() {
		return
	}

	rec := model.MatchRecord{
		MatchID:    match.ID,
		PlayerA:    match.Players[0],
		PlayerB:    match.Players[1],
		Status:     string(match.Status),
		ProposedAt: match.CreatedAt,
		ResolvedAt: time.Now(),
	}
	if match.Reason != "" {
		reason := string(match.Reason)
		rec.Reason = &reason
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
		defer cancel()
		if err := s.repo.RecordResolved(ctx, rec); err != nil {
			log.Error().Err(err).Str("matchId", match.ID).Msg("failed to archive resolved match")
		}
	}()
}

// RecordClosed marks an archived match's game as closed and stores each
// remaining player's final outcome line. Both writes share one
// transaction so the archive never shows a closed game without its
// outcomes.
func (s *ArchiveService) RecordClosed(session model.GameSession, reason model.CloseReason, closedAt time.Time) {
	if !s.Enabled() {
		return
	}

	outcomes := make([]model.GameOutcome, 0, len(session.State.Players))
	for playerID, ps := range session.State.Players {
		outcomes = append(outcomes, model.GameOutcome{
			MatchID:  session.MatchID,
			PlayerID: playerID,
			Score:    ps.Score,
			Health:   ps.Health,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
		defer cancel()
		err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.repo.WithTx(tx).RecordClosed(ctx, session.MatchID, closedAt, string(reason), outcomes)
		})
		if err != nil {
			log.Error().Err(err).Str("matchId", session.MatchID).Msg("failed to archive closed game")
		}
	}()
}

// History returns recently resolved matches, newest first.
func (s *ArchiveService) History(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	if !s.Enabled() {
		return nil, apperrors.NotFound("Match history")
	}
	records, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return records, nil
}

// Find returns the archived record for one match.
func (s *ArchiveService) Find(ctx context.Context, matchID string) (*model.MatchRecord, error) {
	if !s.Enabled() {
		return nil, apperrors.NotFound("Match record")
	}
	rec, err := s.repo.FindByMatchID(ctx, matchID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if rec == nil {
		return nil, apperrors.NotFound("Match record")
	}
	return rec, nil
}

// Outcomes returns the final player lines for one archived match.
func (s *ArchiveService) Outcomes(ctx context.Context, matchID string) ([]model.GameOutcome, error) {
	if !s.Enabled() {
		return nil, apperrors.NotFound("Match record")
	}
	outcomes, err := s.repo.Outcomes(ctx, matchID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return outcomes, nil
}
