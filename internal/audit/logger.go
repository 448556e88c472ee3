package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventPlayerConnect    EventType = "player_connect"
	EventPlayerDisconnect EventType = "player_disconnect"
	EventPlayerIdle       EventType = "player_idle"
	EventQueueJoin        EventType = "queue_join"
	EventQueueLeave       EventType = "queue_leave"
	EventQueueExpire      EventType = "queue_expire"
	EventMatchProposed    EventType = "match_proposed"
	EventMatchConfirmed   EventType = "match_confirmed"
	EventMatchCancelled   EventType = "match_cancelled"
	EventGameCreated      EventType = "game_created"
	EventGameClosed       EventType = "game_closed"
	EventRateLimitExceed  EventType = "rate_limit_exceeded"
)

// Event is one entry in the coordination audit trail. Every lifecycle
// transition a player or match goes through lands here, so an incident
// can be reconstructed from the log alone.
type Event struct {
	Type     EventType
	PlayerID string
	MatchID  string
	Reason   string
	Details  map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "lifecycle").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.PlayerID != "" {
		logger = logger.With().Str("player_id", event.PlayerID).Logger()
	}
	if event.MatchID != "" {
		logger = logger.With().Str("match_id", event.MatchID).Logger()
	}
	if event.Reason != "" {
		logger = logger.With().Str("reason", event.Reason).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("lifecycle audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
