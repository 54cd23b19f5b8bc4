package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SourceConfiguration struct {
	ID               string         `gorm:"type:uuid;primaryKey"`
	UserID           string         `gorm:"type:uuid;not null;index"`
	Name             string         `gorm:"not null"`
	Type             string         `gorm:"not null"` // "twitter", "facebook", "instagram", "blogs", "forums", "news"
	Credentials      datatypes.JSON `gorm:"type:jsonb"`
	MonitoringConfig datatypes.JSON `gorm:"type:jsonb"` // {keywords: [...], languages: [...]}
	IsActive         bool           `gorm:"default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Relationships
	Profile Profile `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (s *SourceConfiguration) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
