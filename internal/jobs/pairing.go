package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Roy9957/GAME-SERVER/internal/service"
)

// PairingJob drives the matchmaker on a fixed period.
type PairingJob struct {
	maker    *service.MatchmakerService
	interval time.Duration
	done     chan struct{}
}

func NewPairingJob(maker *service.MatchmakerService, interval time.Duration) *PairingJob {
	return &PairingJob{
		maker:    maker,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *PairingJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("pairing job started")
}

func (j *PairingJob) Stop() {
	close(j.done)
	log.Info().Msg("pairing job stopped")
}

func (j *PairingJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			j.maker.RunCycle(ctx)
			cancel()
		}
	}
}
