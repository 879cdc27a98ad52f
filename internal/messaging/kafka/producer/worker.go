package producer

import (
	"context"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultBatchSize    = 50
	defaultMaxAttempts  = 10
	defaultRetention    = 72 * time.Hour
	defaultPurgeEvery   = time.Hour
)

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// Retention is how long sent rows are kept before PurgeSent removes them.
	Retention  time.Duration
	PurgeEvery time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Retention <= 0 {
		c.Retention = defaultRetention
	}
	if c.PurgeEvery <= 0 {
		c.PurgeEvery = defaultPurgeEvery
	}
	return c
}

// ProcessOutboxEvents relays pending notification events to kafka until ctx
// is cancelled. Failed publishes stay in the outbox with a backoff.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	cfg Config,
) {
	cfg = cfg.withDefaults()
	log := logger.Named("kafka.producer.worker")
	relay := time.NewTicker(cfg.PollInterval)
	defer relay.Stop()
	purge := time.NewTicker(cfg.PurgeEvery)
	defer purge.Stop()

	log.Info("outbox worker started",
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("max_attempts", cfg.MaxAttempts),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-relay.C:
			if _, err := ProcessPendingEvents(ctx, repo, writer, log, cfg); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		case <-purge.C:
			PurgeSentEvents(ctx, repo, log, cfg.Retention)
		}
	}
}

// ProcessPendingEvents publishes one claimed batch and returns how many events
// were marked sent.
func ProcessPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	cfg Config,
) (int, error) {
	cfg = cfg.withDefaults()
	pending, err := repo.Claim(ctx, cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	logger.Debug("processing pending outbox events", zap.Int("count", len(pending)))

	sent := 0
	for _, event := range pending {
		if err := publishEvent(ctx, writer, event); err != nil {
			fields := []zap.Field{
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Int("attempt", event.RetryCount+1),
				zap.Error(err),
			}
			if event.RetryCount+1 >= cfg.MaxAttempts {
				logger.Error("outbox event dead-lettered", fields...)
			} else {
				logger.Warn("publish outbox event failed", fields...)
			}
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error(), cfg.MaxAttempts); markErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	logger.Info("outbox batch relayed", zap.Int("sent", sent), zap.Int("claimed", len(pending)))
	return sent, nil
}

// PurgeSentEvents deletes rows relayed more than retention ago.
func PurgeSentEvents(ctx context.Context, repo kafka.OutboxRepository, logger *zap.Logger, retention time.Duration) int64 {
	n, err := repo.PurgeSent(ctx, time.Now().Add(-retention))
	if err != nil {
		logger.Error("purge sent outbox events failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		logger.Info("purged sent outbox events", zap.Int64("count", n))
	}
	return n
}
