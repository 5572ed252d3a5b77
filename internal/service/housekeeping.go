package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

const (
	DefaultHousekeepingSchedule = "@hourly"
	DefaultStaleAfter           = 24 * time.Hour
)

// Housekeeper periodically closes sessions that were left open and rebuilds
// the cached statistics.
type Housekeeper struct {
	store      storage.Store
	stats      *StatisticsService
	schedule   string
	staleAfter time.Duration
	loc        *time.Location
	logger     *zap.Logger

	now func() time.Time
}

// NewHousekeeper creates a new Housekeeper.
func NewHousekeeper(
	store storage.Store,
	stats *StatisticsService,
	schedule string,
	staleAfter time.Duration,
	loc *time.Location,
	logger *zap.Logger,
) *Housekeeper {
	if schedule == "" {
		schedule = DefaultHousekeepingSchedule
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Housekeeper{
		store:      store,
		stats:      stats,
		schedule:   schedule,
		staleAfter: staleAfter,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs the job on its schedule until ctx is cancelled.
func (h *Housekeeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(h.loc))

	_, err := c.AddFunc(h.schedule, func() {
		h.logger.Info("cron triggered: housekeeping")
		if _, err := h.RunOnce(ctx); err != nil {
			h.logger.Error("housekeeping failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", h.schedule, err)
	}

	c.Start()
	h.logger.Info("housekeeper started", zap.String("schedule", h.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	h.logger.Info("housekeeper stopped")

	return nil
}

// RunOnce abandons every session still active after the stale period and
// refreshes the statistics. It returns the number of closed sessions.
func (h *Housekeeper) RunOnce(ctx context.Context) (int, error) {
	now := h.now().UTC()
	cutoff := now.Add(-h.staleAfter)
	closed := 0

	err := h.store.WithinTx(ctx, func(ctx context.Context, tx storage.Store) error {
		sessions, err := tx.Sessions().ListOpenBefore(ctx, cutoff)
		if err != nil {
			return storageErr("list open sessions", err)
		}

		for _, s := range sessions {
			s.Abandon(now)
			if err := tx.Sessions().Close(ctx, s); err != nil {
				return storageErr("abandon study session", err)
			}
			closed++
		}

		_, err = h.stats.RefreshStatistics(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	h.logger.Info("housekeeping finished",
		zap.Int("abandoned_sessions", closed),
		zap.Time("cutoff", cutoff),
	)

	return closed, nil
}
