package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/service"
)

type PlayerHandler struct {
	sessionService *service.SessionService
}

func NewPlayerHandler(sessionService *service.SessionService) *PlayerHandler {
	return &PlayerHandler{
		sessionService: sessionService,
	}
}

func (h *PlayerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/connect", h.Connect)
	r.Post("/{playerId}/heartbeat", h.Heartbeat)
	r.Post("/{playerId}/disconnect", h.Disconnect)

	return r
}

// POST /v1/players/connect
func (h *PlayerHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID   string            `json:"playerId"`
		ClientInfo map[string]string `json:"clientInfo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidArgument("body", "malformed JSON"))
		return
	}

	result, err := h.sessionService.Connect(r.Context(), req.PlayerID, req.ClientInfo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /v1/players/{playerId}/heartbeat
func (h *PlayerHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")

	if err := h.sessionService.Heartbeat(r.Context(), playerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /v1/players/{playerId}/disconnect
func (h *PlayerHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")

	if err := h.sessionService.Disconnect(r.Context(), playerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
