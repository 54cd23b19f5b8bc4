package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertNotification struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	AlertRuleID *string `gorm:"type:uuid;index"` // nullable, manual notifications carry no rule
	Title       string  `gorm:"not null"`
	Content     string  `gorm:"not null"`
	Source      string  `gorm:"not null"`
	URL         string
	Priority    string `gorm:"not null;default:medium"` // "high", "medium", "low"
	Status      string `gorm:"not null;default:new"`    // "new" -> "read" -> "resolved"
	DeliveredAt *time.Time
	CreatedAt   time.Time
}

func (n *AlertNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
