package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/config"
	"github.com/Roy9957/GAME-SERVER/internal/service"
	"github.com/Roy9957/GAME-SERVER/internal/store"
)

// CleanupJob runs the periodic staleness sweeps: idle player sessions,
// queue entries past the waiting TTL, aged queue resolutions, terminal
// match records, and idle game sessions. One job owns all sweeps so
// their relative order is fixed.
type CleanupJob struct {
	sessions *service.SessionService
	queue    *service.QueueService
	games    *service.GameService
	matches  *store.MatchStore
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(
	sessions *service.SessionService,
	queue *service.QueueService,
	games *service.GameService,
	matches *store.MatchStore,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		queue:    queue,
		games:    games,
		matches:  matches,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep order matters: disconnecting idle players first lets the queue
// and game sweeps see their departures in the same pass.
func (j *CleanupJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	retention := now.Add(-config.ResolutionRetention)

	j.runSweep("idle player sessions", func() int { return j.sessions.SweepIdle(ctx, now) })
	j.runSweep("stale queue entries", func() int { return j.queue.SweepStale(ctx, now) })
	j.runSweep("queue resolutions", func() int { return j.queue.SweepResolutions(retention) })
	j.runSweep("terminal matches", func() int { return j.matches.SweepTerminal(retention) })
	j.runSweep("idle game sessions", func() int { return j.games.SweepIdle(ctx, now) })
}

func (j *CleanupJob) runSweep(name string, fn func() int) {
	if count := fn(); count > 0 {
		log.Info().Int("count", count).Msgf("cleaned up %s", name)
	}
}
