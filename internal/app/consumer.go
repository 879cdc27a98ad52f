package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackson951/flexileave-app-sub001/internal/events"
	"github.com/jackson951/flexileave-app-sub001/internal/mailer"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka/consumer"
	"github.com/jackson951/flexileave-app-sub001/internal/user"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const notificationConsumerGroup = "flexileave-notification-mailer"

// RunConsumer emails every notification_created event to its recipient.
func RunConsumer(cfg Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, sqlDB, err := connectDB(cfg.DB)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	directory := user.NewDirectory(user.NewRepository(gormDB))
	sender := mailer.New(cfg.SMTP, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.NotificationTopic,
		GroupID:        notificationConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeNotificationEvents(ctx, reader, sender, directory, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
