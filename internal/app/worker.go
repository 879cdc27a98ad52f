package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka/producer"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays the notification outbox to kafka and sweeps orphaned
// uploads until SIGINT/SIGTERM.
func RunWorker(cfg Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, sqlDB, err := connectDB(cfg.DB)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, connectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	storage, err := attachment.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	attachmentService := attachment.NewService(attachment.NewRepository(gormDB), storage, cfg.Upload, logger)
	sweeper := attachment.NewSweeper(attachmentService, cfg.SweepEvery, cfg.OrphanAfter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, cfg.Outbox)
	}()
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()
	wg.Wait()

	return nil
}
