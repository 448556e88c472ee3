package handler

import (
	"net/http"
	"strconv"

	"github.com/Roy9957/GAME-SERVER/internal/config"
)

const MaxLimit = 200

// ParseLimit reads the ?limit= query parameter, clamping out-of-range
// values to the default.
func ParseLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > MaxLimit {
		return config.DefaultHistoryLimit
	}
	return limit
}
