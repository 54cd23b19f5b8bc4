package store

import (
	"context"
	"fmt"

	"github.com/mirador-dev/mirador/internal/models"
	"gorm.io/gorm"
)

type QueryStore struct {
	db *gorm.DB
}

func NewQueryStore(db *gorm.DB) *QueryStore {
	return &QueryStore{db: db}
}

func (s *QueryStore) List(ctx context.Context, userID string) ([]models.SavedQuery, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := s.db.WithContext(ctx).Order("created_at DESC")

	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var queries []models.SavedQuery

	if err := query.Find(&queries).Error; err != nil {
		return nil, classify("list saved queries", err)
	}

	return queries, nil
}

func (s *QueryStore) Save(ctx context.Context, saved *models.SavedQuery) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if saved.QueryText == "" {
		return fmt.Errorf("save query: query text is required: %w", ErrValidation)
	}

	if err := s.db.WithContext(ctx).Create(saved).Error; err != nil {
		return classify("save query", err)
	}

	return nil
}

func (s *QueryStore) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavedQuery{})

	if result.Error != nil {
		return classify("delete saved query", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("delete saved query: %w", ErrNotFound)
	}

	return nil
}
