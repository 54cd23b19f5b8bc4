package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SavedQuery struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;not null;index"`
	QueryText string `gorm:"not null"`
	CreatedAt time.Time

	// Relationships
	Profile Profile `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (q *SavedQuery) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
