package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/config"
	"github.com/Roy9957/GAME-SERVER/internal/database"
	"github.com/Roy9957/GAME-SERVER/internal/handler"
	"github.com/Roy9957/GAME-SERVER/internal/jobs"
	"github.com/Roy9957/GAME-SERVER/internal/metrics"
	"github.com/Roy9957/GAME-SERVER/internal/middleware"
	"github.com/Roy9957/GAME-SERVER/internal/realtime"
	"github.com/Roy9957/GAME-SERVER/internal/redis"
	"github.com/Roy9957/GAME-SERVER/internal/repository"
	"github.com/Roy9957/GAME-SERVER/internal/service"
	"github.com/Roy9957/GAME-SERVER/internal/sse"
	"github.com/Roy9957/GAME-SERVER/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	// Redis is optional: with it, events fan out across instances and
	// queue/match state is mirrored for external observers. Without it,
	// everything stays in this process.
	var redisClient *redis.Client
	var mirror realtime.Mirror = realtime.NewNoopMirror()
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		mirror = realtime.NewRedisMirror(redisClient, cfg.QueueStaleTTL(), config.ResolutionRetention)
		log.Info().Msg("redis connected")
	}
	defer mirror.Close()

	// The database is optional too: it only backs the match history
	// archive. Live matchmaking never reads from it.
	var db *database.DB
	archive := service.NewArchiveService(nil, nil)
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		if err := db.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		cancel()

		archive = service.NewArchiveService(db, repository.NewHistoryRepository(db.DB))
		ctx, cancel = context.WithTimeout(context.Background(), config.DBPingTimeout)
		if err := archive.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure archive schema")
		}
		cancel()
		log.Info().Msg("database connected")
	}

	m := metrics.New("matchserver")

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	sessions := store.NewSessionStore()
	queue := store.NewQueue()
	matches := store.NewMatchStore()
	games := store.NewGameStore()

	queueService := service.NewQueueService(queue, matches, sessions, broker, mirror, m, cfg.QueueStaleTTL())
	gameService := service.NewGameService(games, matches, sessions, broker, mirror, archive, m, cfg.MatchIdleTTL())
	matchService := service.NewMatchService(matches, queueService, gameService, broker, mirror, archive, m)
	defer matchService.Close()
	matchmaker := service.NewMatchmakerService(queue, matches, matchService, m, cfg.ConfirmTimeout())
	sessionService := service.NewSessionService(sessions, queueService, gameService, m, cfg.PlayerIdleTTL(), cfg.CountReconnects)

	playerHandler := handler.NewPlayerHandler(sessionService)
	queueHandler := handler.NewQueueHandler(queueService)
	matchHandler := handler.NewMatchHandler(matchService, archive)
	gameHandler := handler.NewGameHandler(gameService)
	eventsHandler := handler.NewEventsHandler(broker, sessionService)
	healthHandler := handler.NewHealthHandler(sessionService, queueService, matchService, gameService, redisClient, db)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(cfg.MaxBodyBytes)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Player-Id"},
	}))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", healthHandler.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/v1", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.NewRedisRateLimitMiddleware(redisClient.Client, cfg.RateLimitPerMin).Handler)
		} else {
			r.Use(middleware.NewRateLimitMiddleware(cfg.RateLimitPerMin).Handler)
		}

		r.Get("/events", eventsHandler.ServeHTTP)
		r.Mount("/players", playerHandler.Routes())
		r.Mount("/queue", queueHandler.Routes())
		r.Mount("/matches", matchHandler.Routes())
		r.Mount("/games", gameHandler.Routes())
	})

	pairingJob := jobs.NewPairingJob(matchmaker, cfg.PairingInterval())
	pairingJob.Start()
	defer pairingJob.Stop()

	cleanupJob := jobs.NewCleanupJob(sessionService, queueService, gameService, matches, cfg.CleanupInterval())
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: config.ServerReadTimeout,
		// No write timeout: /v1/events streams for the life of the client.
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
