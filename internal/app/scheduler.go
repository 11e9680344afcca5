package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RatingRecomputer refreshes the denormalized course ratings from the votes.
type RatingRecomputer interface {
	RecomputeRatings(ctx context.Context) (int64, error)
}

// Scheduler runs the background maintenance tasks.
type Scheduler struct {
	ratings  RatingRecomputer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

func NewScheduler(ratings RatingRecomputer, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		ratings:  ratings,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background tasks.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")
	go s.runRatingTask(ctx)
}

// Stop stops the background tasks.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runRatingTask periodically folds the subscription votes back into the
// course ratings. The first run happens immediately on start.
func (s *Scheduler) runRatingTask(ctx context.Context) {
	s.recomputeRatings(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.recomputeRatings(ctx)
		case <-s.stopChan:
			s.logger.Info("Rating task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Rating task cancelled")
			return
		}
	}
}

func (s *Scheduler) recomputeRatings(ctx context.Context) {
	s.logger.Info("Starting rating recomputation")

	affected, err := s.ratings.RecomputeRatings(ctx)
	if err != nil {
		s.logger.Error("Failed to recompute ratings", zap.Error(err))
		return
	}

	s.logger.Info("Rating recomputation completed", zap.Int64("courses", affected))
}
