package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TypeLeaveSubmitted = "leave_submitted"
	TypeLeaveApproved  = "leave_approved"
	TypeLeaveRejected  = "leave_rejected"
	TypeLeaveCancelled = "leave_cancelled"
	TypeSystem         = "system"
)

func ValidType(t string) bool {
	switch t {
	case TypeLeaveSubmitted, TypeLeaveApproved, TypeLeaveRejected, TypeLeaveCancelled, TypeSystem:
		return true
	default:
		return false
	}
}

type Notification struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RecipientID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_notifications_recipient_read,priority:1"`
	TriggeredByID *uuid.UUID     `gorm:"type:uuid"`
	LeaveID       *uuid.UUID     `gorm:"type:uuid;index"`
	Type          string         `gorm:"size:32;not null"`
	Title         string         `gorm:"size:255;not null"`
	Message       string         `gorm:"type:text;not null"`
	IsRead        bool           `gorm:"not null;default:false;index:idx_notifications_recipient_read,priority:2"`
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"index"`
	UpdatedAt     time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
