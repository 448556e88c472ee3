package repository

import (
	"database/sql"
	"errors"
)

// HandleNotFound processes a database query result, converting sql.ErrNoRows
// to a nil result without error. Find* operations treat a missing row as an
// absent record, not a failure.
//
// Usage:
//
//	var record model.MatchRecord
//	err := r.db.GetContext(ctx, &record, query, matchID)
//	return HandleNotFound(&record, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
