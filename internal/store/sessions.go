package store

import (
	"sync"
	"time"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

// SessionStore holds every live PlayerSession, keyed by player ID. All
// reads return clones so callers never share memory with the table.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.PlayerSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*model.PlayerSession),
	}
}

// Upsert installs the session, replacing any previous one for the same
// player. It reports whether the player was new.
func (s *SessionStore) Upsert(session *model.PlayerSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.sessions[session.PlayerID]
	s.sessions[session.PlayerID] = session.Clone()
	return !existed
}

// Find returns a copy of the session, or nil if the player is unknown.
func (s *SessionStore) Find(playerID string) *model.PlayerSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[playerID]
	if !ok {
		return nil
	}
	return session.Clone()
}

// Touch refreshes lastActivity. It reports whether the player exists.
func (s *SessionStore) Touch(playerID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[playerID]
	if !ok {
		return false
	}
	session.LastActivity = now
	return true
}

// Remove deletes the session and returns a copy of what was removed.
func (s *SessionStore) Remove(playerID string) *model.PlayerSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[playerID]
	if !ok {
		return nil
	}
	delete(s.sessions, playerID)
	return session
}

// IdleBefore returns the IDs of players whose lastActivity is strictly
// older than the cutoff.
func (s *SessionStore) IdleBefore(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, session := range s.sessions {
		if session.LastActivity.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
