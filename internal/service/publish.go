package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/sse"
)

// publishEvent delivers a lifecycle or gameplay event to one player's
// event stream. Delivery is best-effort: a player with no subscribers
// or a full buffer simply misses the event.
func publishEvent(ctx context.Context, broker *sse.Broker, playerID string, event model.GameEvent) {
	if broker == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).
			Str("playerId", playerID).
			Str("eventType", string(event.Type)).
			Msg("failed to marshal event")
		return
	}

	if err := broker.Publish(ctx, playerID, sse.Event{
		Type: string(event.Type),
		Data: data,
	}); err != nil {
		log.Warn().Err(err).
			Str("playerId", playerID).
			Str("eventType", string(event.Type)).
			Msg("failed to publish event")
	}
}
