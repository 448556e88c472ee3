package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/service"
)

type GameHandler struct {
	gameService *service.GameService
}

func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

func (h *GameHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{matchId}", h.State)
	r.Post("/{matchId}/actions", h.Action)

	return r
}

// GET /v1/games/{matchId}
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	session, err := h.gameService.State(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// POST /v1/games/{matchId}/actions
func (h *GameHandler) Action(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	var req struct {
		PlayerID string       `json:"playerId"`
		Action   model.Action `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidArgument("body", "malformed JSON"))
		return
	}

	result, err := h.gameService.ApplyAction(r.Context(), matchID, req.PlayerID, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
