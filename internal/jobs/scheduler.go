package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"billed/api/internal/config"
)

// Scheduler periodically puts a receipts-cleanup task on the work stream.
// The worker reclaims uploads whose second persist phase never settled.
type Scheduler struct {
	cron  *cron.Cron
	queue *redis.Client
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewScheduler(queue *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		queue: queue,
		cfg:   cfg,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", s.enqueueCleanup); err != nil {
		return err
	}

	// One sweep at startup so a restart does not postpone reclamation a
	// full day.
	s.enqueueCleanup()

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueCleanup() {
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.cfg.Queue.Stream,
		Values: map[string]any{"type": "receipts-cleanup"},
	}).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue receipts cleanup failed")
	}
}
