package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	Email        string  `gorm:"uniqueIndex;not null"`
	FullName     *string `gorm:""`
	Role         string  `gorm:"not null;default:viewer"` // "admin", "editor", "viewer"
	PasswordHash string  // empty for externally provisioned principals
	CreatedAt    time.Time

	// Relationships
	AlertRules           []AlertRule           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	SourceConfigurations []SourceConfiguration `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	SavedQueries         []SavedQuery          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
