package attachment

import (
	"time"

	"github.com/google/uuid"
)

// File is an uploaded document. A nil LeaveID marks an unattached upload
// that the orphan sweeper may reclaim.
type File struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeaveID      *uuid.UUID `gorm:"type:uuid;index"`
	UploadedBy   uuid.UUID  `gorm:"type:uuid;not null;index"`
	OriginalName string     `gorm:"size:255;not null"`
	StorageKey   string     `gorm:"size:512;not null;uniqueIndex"`
	MimeType     string     `gorm:"size:127;not null"`
	Size         int64      `gorm:"not null"`
	CreatedAt    time.Time  `gorm:"index"`
}

func (File) TableName() string {
	return "files"
}

func (f File) Attached() bool {
	return f.LeaveID != nil
}
