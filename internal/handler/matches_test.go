package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHandlerGet(t *testing.T) {
	t.Run("returns a proposed match", func(t *testing.T) {
		ts := newTestServer(t)
		match := ts.proposeMatch(t, "p1", "p2")

		rec := ts.do(t, http.MethodGet, "/v1/matches/"+match.ID, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, match.ID, body["matchId"])
		assert.Equal(t, "proposed", body["status"])
	})

	t.Run("returns 404 for an unknown match", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodGet, "/v1/matches/nope", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	})
}

func TestMatchHandlerConfirm(t *testing.T) {
	t.Run("records the first acceptance", func(t *testing.T) {
		ts := newTestServer(t)
		match := ts.proposeMatch(t, "p1", "p2")

		rec := ts.do(t, http.MethodPost, "/v1/matches/"+match.ID+"/confirm", map[string]any{
			"playerId": "p1",
			"accept":   true,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "proposed", body["status"])
		confirmations := body["confirmations"].(map[string]any)
		assert.Equal(t, "ready", confirmations["p1"])
		assert.Equal(t, "pending", confirmations["p2"])
	})

	t.Run("confirms once both accept", func(t *testing.T) {
		ts := newTestServer(t)
		match := ts.proposeMatch(t, "p1", "p2")

		ts.do(t, http.MethodPost, "/v1/matches/"+match.ID+"/confirm", map[string]any{
			"playerId": "p1", "accept": true,
		})
		rec := ts.do(t, http.MethodPost, "/v1/matches/"+match.ID+"/confirm", map[string]any{
			"playerId": "p2", "accept": true,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "confirmed", decodeBody(t, rec)["status"])

		game := ts.do(t, http.MethodGet, "/v1/games/"+match.ID, nil)
		assert.Equal(t, http.StatusOK, game.Code)
	})

	t.Run("cancels on rejection", func(t *testing.T) {
		ts := newTestServer(t)
		match := ts.proposeMatch(t, "p1", "p2")

		rec := ts.do(t, http.MethodPost, "/v1/matches/"+match.ID+"/confirm", map[string]any{
			"playerId": "p1", "accept": false,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "cancelled", body["status"])
		assert.Equal(t, "rejected_by_player", body["reason"])
	})

	t.Run("returns 400 when accept is missing", func(t *testing.T) {
		ts := newTestServer(t)
		match := ts.proposeMatch(t, "p1", "p2")

		rec := ts.do(t, http.MethodPost, "/v1/matches/"+match.ID+"/confirm", map[string]any{
			"playerId": "p1",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})

	t.Run("returns 400 for malformed json", func(t *testing.T) {
		ts := newTestServer(t)
		match := ts.proposeMatch(t, "p1", "p2")

		rec := ts.do(t, http.MethodPost, "/v1/matches/"+match.ID+"/confirm", `{invalid}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
	})

	t.Run("returns 404 for a non-participant", func(t *testing.T) {
		ts := newTestServer(t)
		match := ts.proposeMatch(t, "p1", "p2")

		rec := ts.do(t, http.MethodPost, "/v1/matches/"+match.ID+"/confirm", map[string]any{
			"playerId": "intruder", "accept": true,
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	})
}

func TestMatchHandlerHistoryDisabled(t *testing.T) {
	// Without a database the history routes are not registered, so the
	// path falls through to the {matchId} lookup.
	t.Run("history path resolves as an unknown match", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodGet, "/v1/matches/history", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	})
}
