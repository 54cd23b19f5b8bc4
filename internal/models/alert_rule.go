package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AlertRule struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	UserID      string `gorm:"type:uuid;not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Triggers    datatypes.JSON `gorm:"type:jsonb;not null"` // {keywords: [...], sentimentThreshold: "any"|"negative"|"positive"}
	Channels    datatypes.JSON `gorm:"type:jsonb;not null"` // {notificationChannels: ["app","email","slack"]}
	IsActive    bool           `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Profile       Profile             `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []AlertNotification `gorm:"foreignKey:AlertRuleID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}

func (r *AlertRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
