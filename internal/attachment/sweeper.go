package attachment

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = 15 * time.Minute
	DefaultOrphanMinAge  = 24 * time.Hour
	defaultSweepBatch    = 100
)

// Sweeper periodically removes unattached files older than MinAge. Younger
// files are uploads still waiting for their leave request to be submitted.
type Sweeper struct {
	service   Service
	interval  time.Duration
	minAge    time.Duration
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

func NewSweeper(service Service, interval, minAge time.Duration, logger ...*zap.Logger) *Sweeper {
	l := zap.L().Named("attachment.sweeper")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attachment.sweeper")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if minAge < 0 {
		minAge = DefaultOrphanMinAge
	}
	return &Sweeper{
		service:   service,
		interval:  interval,
		minAge:    minAge,
		batchSize: defaultSweepBatch,
		now:       time.Now,
		logger:    l,
	}
}

// WithClock replaces the time source used to compute the age cutoff.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("orphan sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("min_age", s.minAge),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("orphan sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("orphan sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce drains orphaned files in batches until a batch comes back short.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.minAge)
	total := 0
	for {
		n, err := s.service.DeleteOrphaned(ctx, cutoff, s.batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < s.batchSize || ctx.Err() != nil {
			return total, nil
		}
	}
}
