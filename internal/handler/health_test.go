package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	t.Run("reports counts and disabled dependencies", func(t *testing.T) {
		ts := newTestServer(t)
		ts.connect(t, "p1")
		ts.connect(t, "p2")
		ts.join(t, "p1", 25)

		rec := ts.do(t, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "disabled", body["redis"])
		assert.Equal(t, "disabled", body["database"])

		players := body["players"].(map[string]any)
		assert.Equal(t, float64(2), players["connected"])

		queue := body["queue"].(map[string]any)
		assert.Equal(t, float64(1), queue["depth"])

		games := body["games"].(map[string]any)
		assert.Equal(t, float64(0), games["active"])
	})
}
