package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string         `gorm:"column:name;type:varchar(255);not null"`
	Email         string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Password      string         `gorm:"column:password;type:text;not null"`
	Role          string         `gorm:"column:role;type:varchar(20);not null;default:employee;index"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	LeaveBalances datatypes.JSON `gorm:"column:leave_balances;type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
