package store

import (
	"errors"
	"sync"
	"time"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

// ErrNoSession is returned by Mutate when no session exists for the match.
var ErrNoSession = errors.New("no game session for match")

// GameStore holds live game sessions keyed by match ID. Session state is
// copy-on-write: Mutate hands the callback the live session, and the
// callback replaces State with a modified clone rather than editing it
// in place. Readers grab the State pointer under RLock and can keep
// using that snapshot without any lock at all.
type GameStore struct {
	mu    sync.RWMutex
	games map[string]*model.GameSession
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[string]*model.GameSession),
	}
}

// Create installs a session. It reports false if one already exists for
// the match, which is how duplicate creation is kept impossible.
func (s *GameStore) Create(session *model.GameSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[session.MatchID]; ok {
		return false
	}
	s.games[session.MatchID] = session
	return true
}

// Find returns the session with its current state snapshot, or nil.
// The returned struct is a copy; State points at the immutable snapshot.
func (s *GameStore) Find(matchID string) *model.GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.games[matchID]
	if !ok {
		return nil
	}
	cp := *session
	return &cp
}

// Mutate runs fn on the live session under the write lock. fn must not
// edit session.State in place; it clones, applies, and assigns the new
// snapshot. fn must not block on I/O.
func (s *GameStore) Mutate(matchID string, fn func(*model.GameSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.games[matchID]
	if !ok {
		return ErrNoSession
	}
	return fn(session)
}

// Remove deletes the session and returns a copy of its final form.
func (s *GameStore) Remove(matchID string) *model.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.games[matchID]
	if !ok {
		return nil
	}
	delete(s.games, matchID)
	cp := *session
	return &cp
}

// IdleBefore returns the match IDs of sessions whose lastUpdate is
// strictly older than the cutoff.
func (s *GameStore) IdleBefore(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, session := range s.games {
		if session.LastUpdate.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *GameStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
