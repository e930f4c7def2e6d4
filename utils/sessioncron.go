package utils

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Purger discards checkout sessions idle for longer than ttl.
type Purger interface {
	PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error)
}

// PurgeIdleSessions runs one purge pass.
func PurgeIdleSessions(p Purger, ttl time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := p.PurgeIdle(ctx, ttl)
	if err != nil {
		logger.Error("idle session purge failed", zap.Error(err))
		return
	}
	logger.Debug("idle session purge finished", zap.Int64("purged", n))
}

// StartSessionPurge schedules PurgeIdleSessions every interval in the
// scheduler's time zone and starts the scheduler in the background.
func StartSessionPurge(loc *time.Location, interval, ttl time.Duration, p Purger, logger *zap.Logger) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(loc)
	// не запускаем два прохода одновременно
	s.SingletonModeAll()
	if _, err := s.Every(interval).Do(PurgeIdleSessions, p, ttl, logger); err != nil {
		return nil, err
	}
	s.StartAsync()
	return s, nil
}
