package leave

import (
	"math"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const DateLayout = "2006-01-02"

type Leave struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_user_dates"`

	LeaveType        string    `gorm:"type:varchar(30);not null"`
	StartDate        time.Time `gorm:"type:date;not null;index:idx_leaves_user_dates"`
	EndDate          time.Time `gorm:"type:date;not null;index:idx_leaves_user_dates"`
	Days             int       `gorm:"type:int;not null"`
	Reason           string    `gorm:"type:text;not null"`
	EmergencyContact string    `gorm:"type:varchar(120)"`
	EmergencyPhone   string    `gorm:"type:varchar(40)"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	RejectionReason *string    `gorm:"type:text"`
	ActionedBy      *uuid.UUID `gorm:"type:uuid"`
	ActionedAt      *time.Time

	Files []attachment.File `gorm:"foreignKey:LeaveID"`

	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Leave) TableName() string {
	return "leaves"
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// CountDays is inclusive of both ends: a leave starting and ending on the
// same date is one day.
func CountDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1
}
