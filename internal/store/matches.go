package store

import (
	"sync"
	"time"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

// Transition describes what a confirm, reject or expire call did to the
// match. Exactly one caller ever observes TransitionConfirmed or
// TransitionCancelled for a given match; every transition method runs
// atomically under the store lock.
type Transition int

const (
	// TransitionNone: state recorded (or repeated), match still proposed.
	TransitionNone Transition = iota
	// TransitionConfirmed: this call moved the match to confirmed.
	TransitionConfirmed
	// TransitionCancelled: this call moved the match to cancelled.
	TransitionCancelled
)

// MatchStore holds match proposals and terminal match records, plus the
// active index mapping each player to the match currently claiming them.
// A player stays in the index from proposal until the match is cancelled
// or its game session is released.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*model.Match
	active  map[string]string
}

func NewMatchStore() *MatchStore {
	return &MatchStore{
		matches: make(map[string]*model.Match),
		active:  make(map[string]string),
	}
}

// Create installs a proposed match and claims both players in the active
// index. It reports false if either player is already claimed.
func (s *MatchStore) Create(match *model.Match) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range match.Players {
		if _, busy := s.active[p]; busy {
			return false
		}
	}
	s.matches[match.ID] = match.Clone()
	for _, p := range match.Players {
		s.active[p] = match.ID
	}
	return true
}

// Delete removes a proposal outright, releasing both players. Used to
// abort a pairing whose queue entries vanished mid-flight, before the
// proposal was announced anywhere.
func (s *MatchStore) Delete(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok {
		return
	}
	delete(s.matches, matchID)
	s.releaseLocked(match)
}

// Find returns a copy of the match, or nil if unknown.
func (s *MatchStore) Find(matchID string) *model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.matches[matchID]
	if !ok {
		return nil
	}
	return match.Clone()
}

// ActiveMatch returns the ID of the match currently claiming the player.
func (s *MatchStore) ActiveMatch(playerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.active[playerID]
	return id, ok
}

// Confirm records the player's readiness. If both players are ready the
// match moves to confirmed and the call returns TransitionConfirmed.
// A repeat confirm while the match is still proposed is a no-op.
func (s *MatchStore) Confirm(matchID, playerID string) (*model.Match, Transition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok || !match.HasPlayer(playerID) {
		return nil, TransitionNone, false
	}
	if match.Status != model.MatchStatusProposed {
		return match.Clone(), TransitionNone, true
	}

	match.Confirmations[playerID] = model.ConfirmStatusReady
	for _, p := range match.Players {
		if match.Confirmations[p] != model.ConfirmStatusReady {
			return match.Clone(), TransitionNone, true
		}
	}
	match.Status = model.MatchStatusConfirmed
	return match.Clone(), TransitionConfirmed, true
}

// Reject cancels a proposed match on behalf of the player and releases
// both players from the active index.
func (s *MatchStore) Reject(matchID, playerID string) (*model.Match, Transition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok || !match.HasPlayer(playerID) {
		return nil, TransitionNone, false
	}
	if match.Status != model.MatchStatusProposed {
		return match.Clone(), TransitionNone, true
	}

	match.Status = model.MatchStatusCancelled
	match.Reason = model.CancelReasonRejected
	s.releaseLocked(match)
	return match.Clone(), TransitionCancelled, true
}

// Expire cancels the match if it is still proposed when the confirmation
// deadline fires. A match that already reached a terminal state is left
// untouched.
func (s *MatchStore) Expire(matchID string) (*model.Match, Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok || match.Status != model.MatchStatusProposed {
		return nil, TransitionNone
	}

	match.Status = model.MatchStatusCancelled
	match.Reason = model.CancelReasonTimeout
	s.releaseLocked(match)
	return match.Clone(), TransitionCancelled
}

// Release frees both players of a confirmed match from the active index
// once their game session is torn down. The terminal match record stays
// visible until SweepTerminal drops it.
func (s *MatchStore) Release(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok {
		return
	}
	s.releaseLocked(match)
}

// ReleasePlayer frees a single player from the active index, provided
// the given match is the one claiming them. Used when a player is
// evicted from a running game while their opponent plays on.
func (s *MatchStore) ReleasePlayer(playerID, matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[playerID] == matchID {
		delete(s.active, playerID)
	}
}

func (s *MatchStore) releaseLocked(match *model.Match) {
	for _, p := range match.Players {
		if s.active[p] == match.ID {
			delete(s.active, p)
		}
	}
}

// SweepTerminal drops terminal matches created before the cutoff and
// returns how many were dropped.
func (s *MatchStore) SweepTerminal(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, match := range s.matches {
		if match.Status.Terminal() && match.CreatedAt.Before(cutoff) {
			// A confirmed match still claiming its players has a live
			// game session; leave it for Release to free first.
			if match.Status == model.MatchStatusConfirmed && s.claimedLocked(match) {
				continue
			}
			delete(s.matches, id)
			dropped++
		}
	}
	return dropped
}

func (s *MatchStore) claimedLocked(match *model.Match) bool {
	for _, p := range match.Players {
		if s.active[p] == match.ID {
			return true
		}
	}
	return false
}

func (s *MatchStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// CountProposed returns how many matches are awaiting confirmation.
func (s *MatchStore) CountProposed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, match := range s.matches {
		if match.Status == model.MatchStatusProposed {
			n++
		}
	}
	return n
}
