package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Roy9957/GAME-SERVER/internal/config"
	"github.com/Roy9957/GAME-SERVER/internal/database"
	"github.com/Roy9957/GAME-SERVER/internal/redis"
	"github.com/Roy9957/GAME-SERVER/internal/service"
)

// HealthHandler reports liveness plus a snapshot of the in-memory world
// and the reachability of optional external dependencies. Redis and the
// database may be nil when the deployment runs memory-only.
type HealthHandler struct {
	sessionService *service.SessionService
	queueService   *service.QueueService
	matchService   *service.MatchService
	gameService    *service.GameService
	redis          *redis.Client
	db             *database.DB
}

func NewHealthHandler(
	sessionService *service.SessionService,
	queueService *service.QueueService,
	matchService *service.MatchService,
	gameService *service.GameService,
	redisClient *redis.Client,
	db *database.DB,
) *HealthHandler {
	return &HealthHandler{
		sessionService: sessionService,
		queueService:   queueService,
		matchService:   matchService,
		gameService:    gameService,
		redis:          redisClient,
		db:             db,
	}
}

// GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
		"players": map[string]any{
			"connected":     h.sessionService.Count(),
			"totalConnects": h.sessionService.ConnectCount(),
		},
		"queue": map[string]any{
			"depth": h.queueService.Depth(),
		},
		"matches": map[string]any{
			"proposed": h.matchService.ProposedCount(),
		},
		"games": map[string]any{
			"active": h.gameService.Count(),
		},
		"redis":    h.redisStatus(r.Context()),
		"database": h.databaseStatus(r.Context()),
	})
}

func (h *HealthHandler) redisStatus(ctx context.Context) string {
	if h.redis == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()
	if err := h.redis.Ping(pingCtx).Err(); err != nil {
		return "unreachable"
	}
	return "ok"
}

func (h *HealthHandler) databaseStatus(ctx context.Context) string {
	if h.db == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, config.DBPingTimeout)
	defer cancel()
	if err := h.db.Ping(pingCtx); err != nil {
		return "unreachable"
	}
	return "ok"
}
