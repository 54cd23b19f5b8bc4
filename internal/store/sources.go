package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/types"
	"gorm.io/gorm"
)

type SourceStore struct {
	db *gorm.DB
}

func NewSourceStore(db *gorm.DB) *SourceStore {
	return &SourceStore{db: db}
}

// List returns source configurations newest-first, scoped to their
// owner when userID is set.
func (s *SourceStore) List(ctx context.Context, userID string) ([]models.SourceConfiguration, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := s.db.WithContext(ctx).Order("created_at DESC")

	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var sources []models.SourceConfiguration

	if err := query.Find(&sources).Error; err != nil {
		return nil, classify("list source configurations", err)
	}

	return sources, nil
}

func (s *SourceStore) Get(ctx context.Context, id, userID string) (*models.SourceConfiguration, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var source models.SourceConfiguration

	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&source).Error; err != nil {
		return nil, classify("get source configuration", err)
	}

	return &source, nil
}

func (s *SourceStore) Create(ctx context.Context, source *models.SourceConfiguration) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if source.Name == "" {
		return fmt.Errorf("create source configuration: name is required: %w", ErrValidation)
	}

	if !types.ValidSourcePlatform(source.Type) {
		return fmt.Errorf("create source configuration: unknown platform %q: %w", source.Type, ErrValidation)
	}

	source.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Create(source).Error; err != nil {
		return classify("create source configuration", err)
	}

	return nil
}

func (s *SourceStore) Update(ctx context.Context, id, userID string, fields map[string]interface{}) (*models.SourceConfiguration, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var source models.SourceConfiguration

	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&source).Error; err != nil {
		return nil, classify("update source configuration", err)
	}

	fields["updated_at"] = time.Now()

	if err := s.db.WithContext(ctx).Model(&source).Updates(fields).Error; err != nil {
		return nil, classify("update source configuration", err)
	}

	if err := s.db.WithContext(ctx).First(&source, "id = ?", id).Error; err != nil {
		return nil, classify("update source configuration", err)
	}

	return &source, nil
}

func (s *SourceStore) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.SourceConfiguration{})

	if result.Error != nil {
		return classify("delete source configuration", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("delete source configuration: %w", ErrNotFound)
	}

	return nil
}
