package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/audit"
	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/metrics"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/realtime"
	"github.com/Roy9957/GAME-SERVER/internal/sse"
	"github.com/Roy9957/GAME-SERVER/internal/store"
)

const (
	arenaWidth     = 1000.0
	arenaHeight    = 1000.0
	obstacleCount  = 8
	minObstacleDim = 20.0
	maxObstacleDim = 80.0
	startingHealth = 100
	spawnAttempts  = 16
)

// ActionResult carries the committed state snapshot and the events an
// action produced.
type ActionResult struct {
	MatchID string            `json:"matchId"`
	State   *model.GameState  `json:"state"`
	Events  []model.GameEvent `json:"events"`
}

// GameService is the game session engine: it creates a session when a
// match confirms, applies player actions as copy-on-write transitions,
// and tears sessions down when everyone leaves or the match idles out.
type GameService struct {
	games    *store.GameStore
	matches  *store.MatchStore
	sessions *store.SessionStore
	broker   *sse.Broker
	mirror   realtime.Mirror
	archive  *ArchiveService
	metrics  *metrics.Metrics
	idleTTL  time.Duration
	seed     func() int64
}

func NewGameService(
	games *store.GameStore,
	matches *store.MatchStore,
	sessions *store.SessionStore,
	broker *sse.Broker,
	mirror realtime.Mirror,
	archive *ArchiveService,
	m *metrics.Metrics,
	idleTTL time.Duration,
) *GameService {
	return &GameService{
		games:    games,
		matches:  matches,
		sessions: sessions,
		broker:   broker,
		mirror:   mirror,
		archive:  archive,
		metrics:  m,
		idleTTL:  idleTTL,
		seed:     func() int64 { return time.Now().UnixNano() },
	}
}

// CreateSession initializes the game session for a confirmed match:
// a seeded obstacle layout plus randomized spawn positions and default
// health and score for both players. The caller guarantees it runs once
// per match; a duplicate create returns the existing session.
func (s *GameService) CreateSession(ctx context.Context, match *model.Match) *model.GameSession {
	now := time.Now()
	session := &model.GameSession{
		MatchID:    match.ID,
		Players:    match.Players,
		State:      generateState(s.seed(), match.Players),
		StartedAt:  now,
		LastUpdate: now,
	}

	if !s.games.Create(session) {
		log.Warn().Str("matchId", match.ID).Msg("game session already exists")
		return s.games.Find(match.ID)
	}

	s.metrics.SetActiveGames(s.games.Count())

	audit.Log(ctx, audit.Event{
		Type:    audit.EventGameCreated,
		MatchID: match.ID,
		Details: map[string]interface{}{
			"player_a": match.Players[0],
			"player_b": match.Players[1],
			"seed":     session.State.World.Seed,
		},
	})

	log.Info().
		Str("matchId", match.ID).
		Int64("seed", session.State.World.Seed).
		Msg("game session created")

	return session
}

// State returns the current snapshot for a running session.
func (s *GameService) State(ctx context.Context, matchID string) (*model.GameSession, error) {
	if matchID == "" {
		return nil, apperrors.MissingRequired("matchId")
	}
	session := s.games.Find(matchID)
	if session == nil {
		return nil, apperrors.NotFound("Game session")
	}
	return session, nil
}

// ApplyAction applies one player action to the session. The mutation is
// copy-on-write: the full next state is computed from the current one
// and committed in a single swap, so readers never see a partial
// update. Unknown action kinds are rejected and leave state untouched.
func (s *GameService) ApplyAction(ctx context.Context, matchID, playerID string, action model.Action) (*ActionResult, error) {
	if matchID == "" {
		return nil, apperrors.MissingRequired("matchId")
	}
	if playerID == "" {
		return nil, apperrors.MissingRequired("playerId")
	}

	now := time.Now()
	var (
		events       []model.GameEvent
		snapshot     *model.GameState
		participants []string
	)

	err := s.games.Mutate(matchID, func(g *model.GameSession) error {
		if _, ok := g.State.Players[playerID]; !ok {
			return apperrors.NotFound("Player")
		}

		switch action.Kind {
		case model.ActionKindMove:
			if action.Move == nil {
				return apperrors.InvalidArgument("action", "missing move payload")
			}
			next := g.State.Clone()
			next.Players[playerID].Position = model.Vec2{X: action.Move.X, Y: action.Move.Y}
			g.State = next
			events = append(events, model.GameEvent{
				Type:     model.EventPlayerMoved,
				MatchID:  matchID,
				PlayerID: playerID,
				Data:     map[string]any{"x": action.Move.X, "y": action.Move.Y},
				At:       now,
			})

		case model.ActionKindFire:
			if action.Fire == nil {
				return apperrors.InvalidArgument("action", "missing fire payload")
			}
			events = append(events, model.GameEvent{
				Type:     model.EventProjectileFired,
				MatchID:  matchID,
				PlayerID: playerID,
				Data:     map[string]any{"targetX": action.Fire.TargetX, "targetY": action.Fire.TargetY},
				At:       now,
			})

		default:
			return apperrors.UnsupportedAction(string(action.Kind))
		}

		g.LastUpdate = now
		snapshot = g.State
		for pid := range g.State.Players {
			participants = append(participants, pid)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			return nil, apperrors.NotFound("Game session")
		}
		if apperrors.GetCode(err) == apperrors.ErrCodeUnsupportedAction {
			s.metrics.IncActionsRejected()
			log.Warn().
				Str("matchId", matchID).
				Str("playerId", playerID).
				Str("kind", string(action.Kind)).
				Msg("rejected unsupported action")
		}
		return nil, err
	}

	s.sessions.Touch(playerID, now)
	s.metrics.IncActionsApplied(string(action.Kind))

	for _, pid := range participants {
		for _, ev := range events {
			publishEvent(ctx, s.broker, pid, ev)
		}
	}

	return &ActionResult{MatchID: matchID, State: snapshot, Events: events}, nil
}

// RemovePlayer evicts a disconnected player from their running session,
// if any, and tears the session down once nobody is left.
func (s *GameService) RemovePlayer(ctx context.Context, playerID string) {
	matchID, ok := s.matches.ActiveMatch(playerID)
	if !ok {
		return
	}

	now := time.Now()
	removed := false
	var remaining []string

	err := s.games.Mutate(matchID, func(g *model.GameSession) error {
		if _, ok := g.State.Players[playerID]; !ok {
			return nil
		}
		next := g.State.Clone()
		delete(next.Players, playerID)
		g.State = next
		g.LastUpdate = now
		removed = true
		for pid := range next.Players {
			remaining = append(remaining, pid)
		}
		return nil
	})
	if err != nil || !removed {
		return
	}

	// The leaver is out of the game for good; free them from the match
	// claim so a later reconnect can queue again while the opponent
	// plays on.
	s.matches.ReleasePlayer(playerID, matchID)

	for _, pid := range remaining {
		publishEvent(ctx, s.broker, pid, model.GameEvent{
			Type:     model.EventPlayerLeft,
			MatchID:  matchID,
			PlayerID: playerID,
			At:       now,
		})
	}

	log.Info().
		Str("matchId", matchID).
		Str("playerId", playerID).
		Int("remaining", len(remaining)).
		Msg("player left game session")

	if len(remaining) == 0 {
		s.CloseSession(ctx, matchID, model.CloseReasonAllLeft)
	}
}

// CloseSession removes a session, releases the match claim on its
// players, notifies participants, and archives the final outcomes.
func (s *GameService) CloseSession(ctx context.Context, matchID string, reason model.CloseReason) *model.GameSession {
	session := s.games.Remove(matchID)
	if session == nil {
		return nil
	}

	s.matches.Release(matchID)
	s.mirror.MatchRemove(matchID)

	now := time.Now()
	for _, pid := range session.Players {
		publishEvent(ctx, s.broker, pid, model.GameEvent{
			Type:    model.EventSessionClosed,
			MatchID: matchID,
			Data:    map[string]any{"reason": string(reason)},
			At:      now,
		})
	}

	s.metrics.SetActiveGames(s.games.Count())
	s.metrics.IncGamesClosed(string(reason))
	s.archive.RecordClosed(*session, reason, now)

	audit.Log(ctx, audit.Event{
		Type:    audit.EventGameClosed,
		MatchID: matchID,
		Reason:  string(reason),
	})

	log.Info().
		Str("matchId", matchID).
		Str("reason", string(reason)).
		Msg("game session closed")

	return session
}

// SweepIdle closes sessions whose last update is older than the match
// idle TTL. Returns how many were closed.
func (s *GameService) SweepIdle(ctx context.Context, now time.Time) int {
	closed := 0
	for _, matchID := range s.games.IdleBefore(now.Add(-s.idleTTL)) {
		if s.CloseSession(ctx, matchID, model.CloseReasonIdle) != nil {
			closed++
		}
	}
	return closed
}

// Count returns the number of running sessions.
func (s *GameService) Count() int {
	return s.games.Count()
}

func generateState(seed int64, players [2]string) *model.GameState {
	rng := rand.New(rand.NewSource(seed))

	world := model.WorldState{
		Seed:      seed,
		Bounds:    model.Vec2{X: arenaWidth, Y: arenaHeight},
		Obstacles: make([]model.Obstacle, 0, obstacleCount),
	}
	for i := 0; i < obstacleCount; i++ {
		w := minObstacleDim + rng.Float64()*(maxObstacleDim-minObstacleDim)
		h := minObstacleDim + rng.Float64()*(maxObstacleDim-minObstacleDim)
		world.Obstacles = append(world.Obstacles, model.Obstacle{
			Position: model.Vec2{
				X: rng.Float64() * (arenaWidth - w),
				Y: rng.Float64() * (arenaHeight - h),
			},
			Width:  w,
			Height: h,
		})
	}

	state := &model.GameState{
		Players: make(map[string]*model.PlayerState, len(players)),
		World:   world,
	}
	for _, pid := range players {
		state.Players[pid] = &model.PlayerState{
			Position: spawnPosition(rng, world.Obstacles),
			Health:   startingHealth,
			Score:    0,
		}
	}
	return state
}

// spawnPosition picks a random point in the arena, retrying a few times
// to land outside obstacles.
func spawnPosition(rng *rand.Rand, obstacles []model.Obstacle) model.Vec2 {
	var pos model.Vec2
	for i := 0; i < spawnAttempts; i++ {
		pos = model.Vec2{X: rng.Float64() * arenaWidth, Y: rng.Float64() * arenaHeight}
		if !insideAny(pos, obstacles) {
			return pos
		}
	}
	return pos
}

func insideAny(pos model.Vec2, obstacles []model.Obstacle) bool {
	for _, o := range obstacles {
		if pos.X >= o.Position.X && pos.X <= o.Position.X+o.Width &&
			pos.Y >= o.Position.Y && pos.Y <= o.Position.Y+o.Height {
			return true
		}
	}
	return false
}
