package handler

import (
	"net/http"

	"github.com/Roy9957/GAME-SERVER/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

// writeError maps typed errors onto their HTTP status. Anything that is
// not an AppError comes out as a 500 without leaking its message.
func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}
