package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/Roy9957/GAME-SERVER/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	PlayerID string
	Events   chan Event
	Done     chan struct{}
}

// Broker fans events out to each player's SSE connections. With a redis
// client configured, publishes go through pub/sub so every server
// instance delivers to its own connections; without one, publishes go
// straight to local subscribers.
type Broker struct {
	redis   *redisclient.Client
	clients map[string]map[*Client]bool // playerID -> set of clients
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:   redisClient,
		clients: make(map[string]map[*Client]bool),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (b *Broker) Subscribe(playerID string) *Client {
	client := &Client{
		PlayerID: playerID,
		Events:   make(chan Event, 100),
		Done:     make(chan struct{}),
	}

	b.mu.Lock()
	if b.clients[playerID] == nil {
		b.clients[playerID] = make(map[*Client]bool)
		if b.redis != nil {
			go b.subscribeToRedis(playerID)
		}
	}
	b.clients[playerID][client] = true
	clientCount := len(b.clients[playerID])
	b.mu.Unlock()

	log.Info().
		Str("playerId", playerID).
		Int("clientCount", clientCount).
		Msg("sse client subscribed")

	return client
}

func (b *Broker) Unsubscribe(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if clients, ok := b.clients[client.PlayerID]; ok {
		delete(clients, client)
		close(client.Done)

		if len(clients) == 0 {
			delete(b.clients, client.PlayerID)
		}

		log.Info().
			Str("playerId", client.PlayerID).
			Int("clientCount", len(clients)).
			Msg("sse client unsubscribed")
	}
}

// Publish delivers the event to all of the player's connections. It
// never blocks on a slow consumer.
func (b *Broker) Publish(ctx context.Context, playerID string, event Event) error {
	if b.redis == nil {
		b.broadcast(playerID, event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channel := redisclient.EventChannel(playerID)
	return b.redis.Publish(ctx, channel, data).Err()
}

func (b *Broker) subscribeToRedis(playerID string) {
	channel := redisclient.EventChannel(playerID)
	pubsub := b.redis.Subscribe(b.ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Str("playerId", playerID).
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()

	for {
		select {
		case <-b.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal event")
				continue
			}

			b.broadcast(playerID, event)
		}
	}
}

func (b *Broker) broadcast(playerID string, event Event) {
	b.mu.RLock()
	clients := b.clients[playerID]
	b.mu.RUnlock()

	for client := range clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().
				Str("playerId", playerID).
				Msg("client event buffer full, dropping event")
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, clients := range b.clients {
		for client := range clients {
			close(client.Done)
		}
	}
	b.clients = make(map[string]map[*Client]bool)
}

func (b *Broker) ClientCount(playerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[playerID])
}

func (b *Broker) TotalClients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, clients := range b.clients {
		total += len(clients)
	}
	return total
}
