package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

// HistoryRepository persists terminal matches and game outcomes. It is a
// write-behind archive: the in-memory stores never read from it to serve
// gameplay, only the history endpoints do.
type HistoryRepository interface {
	EnsureSchema(ctx context.Context) error
	RecordResolved(ctx context.Context, rec model.MatchRecord) error
	RecordClosed(ctx context.Context, matchID string, closedAt time.Time, closeReason string, outcomes []model.GameOutcome) error
	FindByMatchID(ctx context.Context, matchID string) (*model.MatchRecord, error)
	ListRecent(ctx context.Context, limit int) ([]model.MatchRecord, error)
	Outcomes(ctx context.Context, matchID string) ([]model.GameOutcome, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) HistoryRepository
}

// historyDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type historyDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type historyRepo struct {
	db historyDB
}

func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) WithTx(tx *sqlx.Tx) HistoryRepository {
	return &historyRepo{db: tx}
}

func (r *historyRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS match_history (
			match_id     TEXT PRIMARY KEY,
			player_a     TEXT NOT NULL,
			player_b     TEXT NOT NULL,
			status       TEXT NOT NULL,
			reason       TEXT,
			proposed_at  TIMESTAMPTZ NOT NULL,
			resolved_at  TIMESTAMPTZ NOT NULL,
			closed_at    TIMESTAMPTZ,
			close_reason TEXT
		)
	`)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS game_outcomes (
			match_id  TEXT NOT NULL,
			player_id TEXT NOT NULL,
			score     INTEGER NOT NULL,
			health    INTEGER NOT NULL,
			PRIMARY KEY (match_id, player_id)
		)
	`)
	return err
}

func (r *historyRepo) RecordResolved(ctx context.Context, rec model.MatchRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO match_history (match_id, player_a, player_b, status, reason, proposed_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id) DO UPDATE
		SET status = EXCLUDED.status,
		    reason = EXCLUDED.reason,
		    resolved_at = EXCLUDED.resolved_at
	`, rec.MatchID, rec.PlayerA, rec.PlayerB, rec.Status, rec.Reason, rec.ProposedAt, rec.ResolvedAt)
	return err
}

func (r *historyRepo) RecordClosed(ctx context.Context, matchID string, closedAt time.Time, closeReason string, outcomes []model.GameOutcome) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE match_history
		SET closed_at = $2, close_reason = $3
		WHERE match_id = $1
	`, matchID, closedAt, closeReason)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO game_outcomes (match_id, player_id, score, health)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (match_id, player_id) DO UPDATE
			SET score = EXCLUDED.score, health = EXCLUDED.health
		`, o.MatchID, o.PlayerID, o.Score, o.Health)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *historyRepo) FindByMatchID(ctx context.Context, matchID string) (*model.MatchRecord, error) {
	var rec model.MatchRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT * FROM match_history WHERE match_id = $1
	`, matchID)
	return HandleNotFound(&rec, err)
}

func (r *historyRepo) ListRecent(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	var recs []model.MatchRecord
	err := r.db.SelectContext(ctx, &recs, `
		SELECT * FROM match_history
		ORDER BY resolved_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *historyRepo) Outcomes(ctx context.Context, matchID string) ([]model.GameOutcome, error) {
	var outcomes []model.GameOutcome
	err := r.db.SelectContext(ctx, &outcomes, `
		SELECT * FROM game_outcomes
		WHERE match_id = $1
		ORDER BY player_id
	`, matchID)
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}
