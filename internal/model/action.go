package model

import "encoding/json"

type ActionKind string

const (
	ActionKindMove ActionKind = "move"
	ActionKindFire ActionKind = "fire"
)

// MoveAction relocates the acting player to an absolute arena position.
type MoveAction struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FireAction fires a projectile toward a target position. It mutates no
// state; the engine only reports it to subscribers.
type FireAction struct {
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// Action is a closed tagged union over the supported action kinds. At
// most one payload field is non-nil, matching Kind. An unrecognized kind
// decodes with both payloads nil and is rejected by the engine, so the
// caller gets a typed error instead of a silently dropped request.
type Action struct {
	Kind ActionKind
	Move *MoveAction
	Fire *FireAction
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var head struct {
		Kind ActionKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	a.Kind = head.Kind
	a.Move = nil
	a.Fire = nil

	switch head.Kind {
	case ActionKindMove:
		var payload MoveAction
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		a.Move = &payload
	case ActionKindFire:
		var payload FireAction
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		a.Fire = &payload
	}
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ActionKindMove:
		return json.Marshal(struct {
			Kind ActionKind `json:"kind"`
			*MoveAction
		}{a.Kind, a.Move})
	case ActionKindFire:
		return json.Marshal(struct {
			Kind ActionKind `json:"kind"`
			*FireAction
		}{a.Kind, a.Fire})
	}
	return json.Marshal(struct {
		Kind ActionKind `json:"kind"`
	}{a.Kind})
}
