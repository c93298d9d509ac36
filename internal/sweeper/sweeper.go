// Package sweeper runs the periodic turn-clock sweep, decoupled from request
// handling.
package sweeper

import (
	"context"
	"time"

	"github.com/chesspost/chesspost/internal/logger"
	"github.com/chesspost/chesspost/internal/services"
)

// Sweeper forfeits games whose turn clock has run out, on a fixed interval.
type Sweeper struct {
	games    services.GameService
	interval time.Duration
	log      *logger.Logger
}

func New(games services.GameService, interval time.Duration) *Sweeper {
	return &Sweeper{
		games:    games,
		interval: interval,
		log:      logger.Default().WithPrefix("sweeper"),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. A failed
// sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("timeout sweeper started: interval=%s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("timeout sweeper stopped")
			return
		case <-ticker.C:
			ctx := logger.NewContext(ctx, s.log)
			n, err := s.games.SweepTimeouts(ctx)
			if err != nil {
				s.log.Error("sweep failed: %v", err)
				continue
			}
			if n > 0 {
				s.log.Info("sweep forfeited %d game(s)", n)
			}
		}
	}
}
