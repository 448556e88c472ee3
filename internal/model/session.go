package model

import "time"

// PlayerSession tracks a connected player's liveness. The in-memory
// session store is the source of truth; there is no durable copy.
type PlayerSession struct {
	PlayerID     string            `json:"playerId"`
	ClientInfo   map[string]string `json:"clientInfo,omitempty"`
	Status       SessionStatus     `json:"status"`
	ConnectedAt  time.Time         `json:"connectedAt"`
	LastActivity time.Time         `json:"lastActivity"`
}

// Clone returns a deep copy safe to hand to callers outside the store lock.
func (s *PlayerSession) Clone() *PlayerSession {
	out := *s
	if s.ClientInfo != nil {
		out.ClientInfo = make(map[string]string, len(s.ClientInfo))
		for k, v := range s.ClientInfo {
			out.ClientInfo[k] = v
		}
	}
	return &out
}
