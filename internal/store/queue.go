package store

import (
	"sort"
	"sync"
	"time"

	"github.com/Roy9957/GAME-SERVER/internal/model"
)

// Queue holds the waiting players plus a short-lived ledger of how
// departed players were resolved, so status polls that race removal
// still get a definite answer instead of a 404.
type Queue struct {
	mu          sync.RWMutex
	entries     map[string]*model.QueueEntry
	resolutions map[string]*model.QueueResolution
}

func NewQueue() *Queue {
	return &Queue{
		entries:     make(map[string]*model.QueueEntry),
		resolutions: make(map[string]*model.QueueResolution),
	}
}

// Add inserts the entry. It reports false if the player is already
// waiting; the existing entry keeps its original enqueue time.
func (q *Queue) Add(entry *model.QueueEntry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[entry.PlayerID]; ok {
		return false
	}
	q.entries[entry.PlayerID] = entry.Clone()
	delete(q.resolutions, entry.PlayerID)
	return true
}

// Remove deletes the player's entry without recording a resolution.
// Used for voluntary leaves and disconnects.
func (q *Queue) Remove(playerID string) *model.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[playerID]
	if !ok {
		return nil
	}
	delete(q.entries, playerID)
	return entry
}

// Take removes the player's entry and records the given resolution.
// The matchmaker uses it to move players from waiting to matched.
func (q *Queue) Take(playerID string, state model.QueueState, matchID string, now time.Time) *model.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[playerID]
	if !ok {
		return nil
	}
	delete(q.entries, playerID)
	q.resolutions[playerID] = &model.QueueResolution{
		PlayerID:   playerID,
		State:      state,
		MatchID:    matchID,
		ResolvedAt: now,
	}
	return entry
}

// Find returns a copy of the player's waiting entry, or nil.
func (q *Queue) Find(playerID string) *model.QueueEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	entry, ok := q.entries[playerID]
	if !ok {
		return nil
	}
	return entry.Clone()
}

// Resolution returns how the player last left the queue, or nil if no
// resolution is retained.
func (q *Queue) Resolution(playerID string) *model.QueueResolution {
	q.mu.RLock()
	defer q.mu.RUnlock()

	res, ok := q.resolutions[playerID]
	if !ok {
		return nil
	}
	cp := *res
	return &cp
}

// Snapshot returns the waiting entries in pairing priority order:
// lowest latency first, then earliest enqueue time, then player ID.
// The final tiebreak makes the order fully deterministic.
func (q *Queue) Snapshot() []model.QueueEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]model.QueueEntry, 0, len(q.entries))
	for _, entry := range q.entries {
		out = append(out, *entry.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Data.LatencyMS != out[j].Data.LatencyMS {
			return out[i].Data.LatencyMS < out[j].Data.LatencyMS
		}
		if !out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Position returns the player's zero-based rank in priority order, or
// -1 if the player is not waiting.
func (q *Queue) Position(playerID string) int {
	for i, entry := range q.Snapshot() {
		if entry.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// EvictStale removes entries enqueued before the cutoff, recording an
// expired resolution for each, and returns the evicted entries.
func (q *Queue) EvictStale(cutoff, now time.Time) []model.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var evicted []model.QueueEntry
	for id, entry := range q.entries {
		if entry.EnqueuedAt.Before(cutoff) {
			evicted = append(evicted, *entry)
			delete(q.entries, id)
			q.resolutions[id] = &model.QueueResolution{
				PlayerID:   id,
				State:      model.QueueStateExpired,
				ResolvedAt: now,
			}
		}
	}
	return evicted
}

// SweepResolutions drops resolution records older than the cutoff and
// returns how many were dropped.
func (q *Queue) SweepResolutions(cutoff time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := 0
	for id, res := range q.resolutions {
		if res.ResolvedAt.Before(cutoff) {
			delete(q.resolutions, id)
			dropped++
		}
	}
	return dropped
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries)
}
