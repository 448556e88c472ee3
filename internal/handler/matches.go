package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Roy9957/GAME-SERVER/internal/errors"
	"github.com/Roy9957/GAME-SERVER/internal/service"
	"github.com/Roy9957/GAME-SERVER/internal/util"
)

type MatchHandler struct {
	matchService   *service.MatchService
	archiveService *service.ArchiveService
}

func NewMatchHandler(matchService *service.MatchService, archiveService *service.ArchiveService) *MatchHandler {
	return &MatchHandler{
		matchService:   matchService,
		archiveService: archiveService,
	}
}

func (h *MatchHandler) Routes() chi.Router {
	r := chi.NewRouter()

	if h.archiveService.Enabled() {
		r.Get("/history", h.History)
		r.Get("/history/{matchId}", h.HistoryDetail)
	}
	r.Get("/{matchId}", h.Get)
	r.Post("/{matchId}/confirm", h.Confirm)

	return r
}

// GET /v1/matches/{matchId}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	match, err := h.matchService.Get(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, match)
}

// POST /v1/matches/{matchId}/confirm
func (h *MatchHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	var req struct {
		PlayerID string `json:"playerId"`
		Accept   *bool  `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidArgument("body", "malformed JSON"))
		return
	}
	if req.Accept == nil {
		writeError(w, apperrors.MissingRequired("accept"))
		return
	}

	match, err := h.matchService.Confirm(r.Context(), matchID, req.PlayerID, *req.Accept)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, match)
}

// GET /v1/matches/history
func (h *MatchHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.archiveService.History(r.Context(), ParseLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matches": records,
		"count":   len(records),
	})
}

// GET /v1/matches/history/{matchId}
func (h *MatchHandler) HistoryDetail(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")
	if !util.IsValidUUID(matchID) {
		writeError(w, apperrors.InvalidArgument("matchId", "must be a UUID"))
		return
	}

	record, err := h.archiveService.Find(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	outcomes, err := h.archiveService.Outcomes(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"match":    record,
		"outcomes": outcomes,
	})
}
