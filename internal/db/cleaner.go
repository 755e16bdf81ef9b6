package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the expiry sweep operation the cleaner invokes.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// StartExpiryCleaner runs the expiry sweep on the given interval until ctx
// is cancelled. The sweep itself holds no schedule state; this goroutine
// is its external periodic trigger.
func StartExpiryCleaner(
	ctx context.Context,
	sweeper Sweeper,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := sweeper.Sweep(ctx)
				if err != nil {
					log.Error("failed to sweep expired secrets", zap.Error(err))
					continue
				}
				if deleted > 0 {
					log.Info("swept expired secrets", zap.Int64("removed", deleted))
				}
			}
		}
	}()
}
