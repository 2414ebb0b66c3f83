package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Notification is a message shown to a material owner.
type Notification struct {
	Base
	UserID      int64          `gorm:"not null;index" json:"user_id"`
	MaterialID  int64          `gorm:"index" json:"material_id"`
	EventID     string         `gorm:"type:varchar(64);uniqueIndex" json:"event_id"`
	Type        string         `gorm:"type:varchar(32);not null" json:"type"`
	Title       string         `gorm:"not null" json:"title"`
	Priority    string         `gorm:"type:varchar(16);not null;default:'Medium'" json:"priority"`
	Description string         `gorm:"type:text" json:"description"`
	Read        bool           `gorm:"column:is_read;not null;default:false;index" json:"read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

// 通知类型常量
const (
	TypeEvent   = "Event"
	TypeMessage = "Message"
)

// 优先级常量
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)
