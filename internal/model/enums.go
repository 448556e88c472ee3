package model

type SessionStatus string

const (
	SessionStatusConnected    SessionStatus = "connected"
	SessionStatusDisconnected SessionStatus = "disconnected"
)

type QueueState string

const (
	QueueStateWaiting QueueState = "waiting"
	QueueStateMatched QueueState = "matched"
	QueueStateExpired QueueState = "expired"
)

type MatchStatus string

const (
	MatchStatusProposed  MatchStatus = "proposed"
	MatchStatusConfirmed MatchStatus = "confirmed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusConfirmed || s == MatchStatusCancelled
}

type ConfirmStatus string

const (
	ConfirmStatusPending ConfirmStatus = "pending"
	ConfirmStatusReady   ConfirmStatus = "ready"
)

type CancelReason string

const (
	CancelReasonRejected CancelReason = "rejected_by_player"
	CancelReasonTimeout  CancelReason = "confirmation_timeout"
)

type CloseReason string

const (
	CloseReasonAllLeft CloseReason = "all_players_left"
	CloseReasonIdle    CloseReason = "idle_timeout"
)

type EventType string

const (
	EventMatchProposed   EventType = "match_proposed"
	EventMatchConfirmed  EventType = "match_confirmed"
	EventMatchCancelled  EventType = "match_cancelled"
	EventQueueExpired    EventType = "queue_expired"
	EventPlayerMoved     EventType = "player_moved"
	EventProjectileFired EventType = "projectile_fired"
	EventPlayerLeft      EventType = "player_left"
	EventSessionClosed   EventType = "session_closed"
)
