package events

import "time"

const (
	NotificationTopic            = "leave.notifications.v1"
	NotificationCreatedEventType = "notification_created"
)

// NotificationCreatedEvent is published through the outbox for every stored
// notification. The consumer turns it into an email.
type NotificationCreatedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	NotificationID string    `json:"notification_id"`
	RecipientID    string    `json:"recipient_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	LeaveID        string    `json:"leave_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
