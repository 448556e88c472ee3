package model

import "time"

// Vec2 is a 2D position or extent in arena units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerState is one player's slice of the game state.
type PlayerState struct {
	Position Vec2 `json:"position"`
	Health   int  `json:"health"`
	Score    int  `json:"score"`
}

// Obstacle is a static axis-aligned box in the arena.
type Obstacle struct {
	Position Vec2    `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// WorldState is the shared, per-session arena data. It is generated once
// at session creation and never mutated afterwards.
type WorldState struct {
	Seed      int64      `json:"seed"`
	Bounds    Vec2       `json:"bounds"`
	Obstacles []Obstacle `json:"obstacles,omitempty"`
}

// GameState is an immutable snapshot of a running game. Mutations go
// through Clone: the engine copies, applies, then swaps the session's
// pointer, so concurrent readers always see a complete snapshot.
type GameState struct {
	Players map[string]*PlayerState `json:"players"`
	World   WorldState              `json:"world"`
}

// Clone deep-copies the snapshot. World.Obstacles is copied too even
// though it never changes, so snapshots share nothing mutable.
func (s *GameState) Clone() *GameState {
	out := &GameState{
		Players: make(map[string]*PlayerState, len(s.Players)),
		World:   s.World,
	}
	for id, ps := range s.Players {
		cp := *ps
		out.Players[id] = &cp
	}
	if s.World.Obstacles != nil {
		out.World.Obstacles = make([]Obstacle, len(s.World.Obstacles))
		copy(out.World.Obstacles, s.World.Obstacles)
	}
	return out
}

// GameSession is the live state of a confirmed match. Players holds the
// original participants; State.Players shrinks as players leave.
type GameSession struct {
	MatchID    string     `json:"matchId"`
	Players    [2]string  `json:"players"`
	State      *GameState `json:"state"`
	StartedAt  time.Time  `json:"startedAt"`
	LastUpdate time.Time  `json:"lastUpdate"`
}

// GameEvent is the engine's description of an applied action or a
// lifecycle change, fanned out to subscribed players.
type GameEvent struct {
	Type     EventType      `json:"type"`
	MatchID  string         `json:"matchId,omitempty"`
	PlayerID string         `json:"playerId,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}
