package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/model"
	redisclient "github.com/Roy9957/GAME-SERVER/internal/redis"
)

const (
	writeBuffer  = 1024
	writeTimeout = 2 * time.Second
)

type opKind int

const (
	opQueueUpsert opKind = iota
	opQueueRemove
	opMatchUpsert
	opMatchRemove
)

type op struct {
	kind    opKind
	key     string
	payload []byte
	score   float64
}

// RedisMirror reflects queue and match state into redis: the queue as a
// sorted set scored by latency plus a JSON entry per player, matches as
// JSON values with a TTL. A single worker drains a buffered channel; when
// the buffer is full the write is dropped with a warning rather than
// stalling the caller.
type RedisMirror struct {
	client   *redisclient.Client
	ops      chan op
	done     chan struct{}
	queueTTL time.Duration
	matchTTL time.Duration
}

func NewRedisMirror(client *redisclient.Client, queueTTL, matchTTL time.Duration) *RedisMirror {
	m := &RedisMirror{
		client:   client,
		ops:      make(chan op, writeBuffer),
		done:     make(chan struct{}),
		queueTTL: queueTTL,
		matchTTL: matchTTL,
	}
	go m.run()
	return m
}

func (m *RedisMirror) QueueUpsert(entry model.QueueEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("playerId", entry.PlayerID).Msg("failed to encode queue entry for mirror")
		return
	}
	m.enqueue(op{
		kind:    opQueueUpsert,
		key:     entry.PlayerID,
		payload: payload,
		score:   float64(entry.Data.LatencyMS),
	})
}

func (m *RedisMirror) QueueRemove(playerID string) {
	m.enqueue(op{kind: opQueueRemove, key: playerID})
}

func (m *RedisMirror) MatchUpsert(match model.Match) {
	payload, err := json.Marshal(match)
	if err != nil {
		log.Error().Err(err).Str("matchId", match.ID).Msg("failed to encode match for mirror")
		return
	}
	m.enqueue(op{kind: opMatchUpsert, key: match.ID, payload: payload})
}

func (m *RedisMirror) MatchRemove(matchID string) {
	m.enqueue(op{kind: opMatchRemove, key: matchID})
}

func (m *RedisMirror) enqueue(o op) {
	select {
	case m.ops <- o:
	default:
		log.Warn().Int("buffer", writeBuffer).Msg("mirror write buffer full, dropping write")
	}
}

func (m *RedisMirror) run() {
	defer close(m.done)
	for o := range m.ops {
		m.apply(o)
	}
}

func (m *RedisMirror) apply(o op) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	switch o.kind {
	case opQueueUpsert:
		pipe := m.client.Pipeline()
		pipe.ZAdd(ctx, redisclient.QueueByLatencyKey, redis.Z{Score: o.score, Member: o.key})
		pipe.Set(ctx, redisclient.QueueEntryKey(o.key), o.payload, m.queueTTL)
		_, err = pipe.Exec(ctx)
	case opQueueRemove:
		pipe := m.client.Pipeline()
		pipe.ZRem(ctx, redisclient.QueueByLatencyKey, o.key)
		pipe.Del(ctx, redisclient.QueueEntryKey(o.key))
		_, err = pipe.Exec(ctx)
	case opMatchUpsert:
		err = m.client.Set(ctx, redisclient.MatchKey(o.key), o.payload, m.matchTTL).Err()
	case opMatchRemove:
		err = m.client.Del(ctx, redisclient.MatchKey(o.key)).Err()
	}

	if err != nil {
		log.Warn().Err(err).Str("key", o.key).Msg("mirror write failed")
	}
}

// Close drains buffered writes and stops the worker.
func (m *RedisMirror) Close() {
	close(m.ops)
	<-m.done
}
