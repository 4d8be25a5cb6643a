package service

import (
	"context"
	"sync"
	"time"

	"prepline/internal/hub"
	"prepline/internal/model"
	"prepline/internal/repository"

	"github.com/rs/zerolog"
)

// statsService implements StatsService. Refresh runs asynchronously and is
// serialised by a mutex so overlapping triggers never rebuild concurrently;
// a failed rebuild is logged and swallowed, never surfaced to the mutation
// that triggered it.
type statsService struct {
	statsRepo repository.StatsRepository
	notifier  Notifier
	logger    zerolog.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewStatsService creates a new stats service.
func NewStatsService(statsRepo repository.StatsRepository, notifier Notifier, logger zerolog.Logger) *statsService {
	return &statsService{
		statsRepo: statsRepo,
		notifier:  notifier,
		logger:    logger.With().Str("service", "stats").Logger(),
	}
}

// Refresh schedules a recomputation and returns immediately.
func (s *statsService) Refresh() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.mu.Lock()
		defer s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.statsRepo.Recompute(ctx); err != nil {
			s.logger.Error().Err(err).Msg("statistics recomputation failed")
			return
		}

		s.notifier.Notify(hub.AdminRoom, hub.Notification{Event: hub.EventOrdersChanged})
	}()
}

// Snapshot returns the current aggregates.
func (s *statsService) Snapshot(ctx context.Context) (*model.Stats, error) {
	return s.statsRepo.Snapshot(ctx)
}

// Wait blocks until every scheduled recomputation has finished. Used on
// shutdown and in tests.
func (s *statsService) Wait() {
	s.wg.Wait()
}
