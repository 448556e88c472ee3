package model

import "time"

// Match is a pairing proposal between exactly two players. It moves from
// proposed to confirmed when both players confirm before the deadline,
// or to cancelled on rejection or deadline expiry.
type Match struct {
	ID            string                   `json:"matchId"`
	Players       [2]string                `json:"players"`
	Confirmations map[string]ConfirmStatus `json:"confirmations"`
	// PlayerData keeps each player's queue attributes so a cancelled
	// match can requeue them with what they originally joined with.
	PlayerData map[string]PlayerData `json:"playerData,omitempty"`
	Status     MatchStatus           `json:"status"`
	Reason     CancelReason          `json:"reason,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
	Deadline   time.Time             `json:"deadline"`
}

// HasPlayer reports whether the given player is a participant.
func (m *Match) HasPlayer(playerID string) bool {
	return m.Players[0] == playerID || m.Players[1] == playerID
}

// Opponent returns the other participant, or "" if playerID is not one.
func (m *Match) Opponent(playerID string) string {
	switch playerID {
	case m.Players[0]:
		return m.Players[1]
	case m.Players[1]:
		return m.Players[0]
	}
	return ""
}

// Clone returns a deep copy safe to hand to callers outside the store lock.
func (m *Match) Clone() *Match {
	out := *m
	out.Confirmations = make(map[string]ConfirmStatus, len(m.Confirmations))
	for k, v := range m.Confirmations {
		out.Confirmations[k] = v
	}
	if m.PlayerData != nil {
		out.PlayerData = make(map[string]PlayerData, len(m.PlayerData))
		for k, v := range m.PlayerData {
			out.PlayerData[k] = *v.Clone()
		}
	}
	return &out
}

// MatchRecord is the durable archive row written after a match reaches a
// terminal state. Archival is best-effort and never blocks gameplay.
type MatchRecord struct {
	MatchID     string     `db:"match_id" json:"matchId"`
	PlayerA     string     `db:"player_a" json:"playerA"`
	PlayerB     string     `db:"player_b" json:"playerB"`
	Status      string     `db:"status" json:"status"`
	Reason      *string    `db:"reason" json:"reason,omitempty"`
	ProposedAt  time.Time  `db:"proposed_at" json:"proposedAt"`
	ResolvedAt  time.Time  `db:"resolved_at" json:"resolvedAt"`
	ClosedAt    *time.Time `db:"closed_at" json:"closedAt,omitempty"`
	CloseReason *string    `db:"close_reason" json:"closeReason,omitempty"`
}

// GameOutcome is one player's final line from a closed game session.
type GameOutcome struct {
	MatchID  string `db:"match_id" json:"matchId"`
	PlayerID string `db:"player_id" json:"playerId"`
	Score    int    `db:"score" json:"score"`
	Health   int    `db:"health" json:"health"`
}
