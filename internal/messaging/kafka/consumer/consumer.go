package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"

	"github.com/jackson951/flexileave-app-sub001/internal/events"
	"github.com/jackson951/flexileave-app-sub001/internal/mailer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrRecipientUnavailable marks recipients that can never receive mail
// (deleted, deactivated or without an address). Such messages are committed.
var ErrRecipientUnavailable = errors.New("notification recipient unavailable")

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Recipient struct {
	Name  string
	Email string
}

type RecipientDirectory interface {
	FindRecipient(ctx context.Context, id string) (Recipient, error)
}

func ConsumeNotificationEvents(
	ctx context.Context,
	reader MessageReader,
	sender mailer.Mailer,
	directory RecipientDirectory,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notification")
	log.Info("notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification consumer stopped")
				return
			}
			log.Error("fetch notification message failed", zap.Error(err))
			continue
		}

		var event events.NotificationCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode notification_created event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if event.EventType != events.NotificationCreatedEventType {
			log.Warn("unexpected event type, skipping", zap.String("event_type", event.EventType))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		err = deliver(ctx, event, sender, directory)
		if err != nil {
			if errors.Is(err, ErrRecipientUnavailable) {
				log.Warn("notification recipient unavailable, skipping",
					zap.String("notification_id", event.NotificationID),
					zap.String("recipient_id", event.RecipientID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("send notification email failed",
				zap.String("notification_id", event.NotificationID),
				zap.String("recipient_id", event.RecipientID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit notification message failed", zap.Error(err))
			continue
		}

		log.Info("notification email sent",
			zap.String("notification_id", event.NotificationID),
			zap.String("recipient_id", event.RecipientID),
			zap.String("type", event.Type),
		)
	}
}

func deliver(ctx context.Context, event events.NotificationCreatedEvent, sender mailer.Mailer, directory RecipientDirectory) error {
	recipient, err := directory.FindRecipient(ctx, event.RecipientID)
	if err != nil {
		return err
	}
	if recipient.Email == "" {
		return ErrRecipientUnavailable
	}

	return sender.Send(ctx, mailer.Message{
		To:      recipient.Email,
		Subject: event.Title,
		HTML:    renderEmail(recipient.Name, event),
	})
}

func renderEmail(name string, event events.NotificationCreatedEvent) string {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + html.EscapeString(name)
	}
	return fmt.Sprintf(
		"<p>%s,</p><p><strong>%s</strong></p><p>%s</p>",
		greeting,
		html.EscapeString(event.Title),
		html.EscapeString(event.Message),
	)
}
