package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roy9957/GAME-SERVER/internal/sse"
)

func TestEventsHandlerServeHTTP(t *testing.T) {
	t.Run("returns 400 without a playerId", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodGet, "/v1/events", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})

	t.Run("returns 404 for an unconnected player", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(t, http.MethodGet, "/v1/events?playerId=ghost", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	})

	t.Run("streams the connected event and published events", func(t *testing.T) {
		ts := newTestServer(t)
		ts.connect(t, "p1")

		handler := NewEventsHandler(ts.broker, ts.sessionSvc)

		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/v1/events?playerId=p1", nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.ServeHTTP(rec, req)
			close(done)
		}()

		// Wait for the subscription before publishing.
		require.Eventually(t, func() bool {
			return ts.broker.ClientCount("p1") == 1
		}, time.Second, 5*time.Millisecond)

		err := ts.broker.Publish(context.Background(), "p1", sse.Event{
			Type: "match_proposed",
			Data: json.RawMessage(`{"matchId":"m-1"}`),
		})
		require.NoError(t, err)

		// Let the loop drain the event, then hang up.
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler did not stop after context cancel")
		}

		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		assert.Contains(t, body, "event: connected\n")
		assert.Contains(t, body, `"playerId":"p1"`)
		assert.Contains(t, body, "event: match_proposed\n")
		assert.Contains(t, body, `{"matchId":"m-1"}`)
	})
}

func TestEventsHandlerSendEvent(t *testing.T) {
	t.Run("formats the event and data lines", func(t *testing.T) {
		handler := &EventsHandler{}
		rec := httptest.NewRecorder()

		err := handler.sendEvent(rec, rec, "connected", map[string]any{
			"playerId": "p1",
			"status":   "connected",
		})

		assert.NoError(t, err)
		body := rec.Body.String()
		assert.Contains(t, body, "event: connected\n")
		assert.Contains(t, body, "data: ")
		assert.Contains(t, body, "p1")
	})
}

func TestEventsHandlerSendRawEvent(t *testing.T) {
	t.Run("writes event and data lines", func(t *testing.T) {
		handler := &EventsHandler{}
		rec := httptest.NewRecorder()

		event := sse.Event{
			Type: "player_moved",
			Data: json.RawMessage(`{"x": 10, "y": 20}`),
		}

		err := handler.sendRawEvent(rec, rec, event)

		assert.NoError(t, err)
		body := rec.Body.String()
		assert.Contains(t, body, "event: player_moved\n")
		assert.Contains(t, body, `data: {"x": 10, "y": 20}`)
		assert.Contains(t, body, "\n\n")
	})
}
