package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/model"
	"github.com/Roy9957/GAME-SERVER/internal/service"
)

type QueueHandler struct {
	queueService *service.QueueService
}

func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{
		queueService: queueService,
	}
}

func (h *QueueHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/join", h.Join)
	r.Post("/leave", h.Leave)
	r.Get("/{playerId}/status", h.Status)

	return r
}

// POST /v1/queue/join
func (h *QueueHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID   string            `json:"playerId"`
		LatencyMS  int               `json:"latencyMs"`
		Attributes map[string]string `json:"attributes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidArgument("body", "malformed JSON"))
		return
	}

	result, err := h.queueService.Join(r.Context(), req.PlayerID, model.PlayerData{
		LatencyMS:  req.LatencyMS,
		Attributes: req.Attributes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /v1/queue/leave
func (h *QueueHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidArgument("body", "malformed JSON"))
		return
	}

	removed, err := h.queueService.Leave(r.Context(), req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// GET /v1/queue/{playerId}/status
func (h *QueueHandler) Status(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")

	result, err := h.queueService.Status(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
