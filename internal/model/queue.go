package model

import "time"

// PlayerData carries the matchmaking attributes a player supplies when
// joining the queue. LatencyMS drives pairing priority.
type PlayerData struct {
	LatencyMS  int               `json:"latencyMs"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Clone returns a deep copy of the player data.
func (d *PlayerData) Clone() *PlayerData {
	out := *d
	if d.Attributes != nil {
		out.Attributes = make(map[string]string, len(d.Attributes))
		for k, v := range d.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out
}

// QueueEntry is a single waiting player in the matchmaking queue.
type QueueEntry struct {
	PlayerID   string     `json:"playerId"`
	Data       PlayerData `json:"data"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
}

// Clone returns a deep copy safe to hand to callers outside the store lock.
func (e *QueueEntry) Clone() *QueueEntry {
	out := *e
	out.Data = *e.Data.Clone()
	return &out
}

// QueueResolution records how a player left the queue so that status
// polls arriving after removal still get a definite answer.
type QueueResolution struct {
	PlayerID   string     `json:"playerId"`
	State      QueueState `json:"state"`
	MatchID    string     `json:"matchId,omitempty"`
	ResolvedAt time.Time  `json:"resolvedAt"`
}
