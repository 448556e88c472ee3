package realtime

import "github.com/Roy9957/GAME-SERVER/internal/model"

// Mirror reflects queue and match state into an external store for
// observability. Writes are fire-and-forget: implementations must never
// block the caller and must swallow their own failures. The in-memory
// stores remain authoritative; nothing is ever read back from a mirror
// to serve a request.
type Mirror interface {
	QueueUpsert(entry model.QueueEntry)
	QueueRemove(playerID string)
	MatchUpsert(match model.Match)
	MatchRemove(matchID string)
	Close()
}

// NoopMirror is the default when no external store is configured.
type NoopMirror struct{}

func NewNoopMirror() *NoopMirror { return &NoopMirror{} }

func (*NoopMirror) QueueUpsert(model.QueueEntry) {}
func (*NoopMirror) QueueRemove(string)           {}
func (*NoopMirror) MatchUpsert(model.Match)      {}
func (*NoopMirror) MatchRemove(string)           {}
func (*NoopMirror) Close()                       {}
