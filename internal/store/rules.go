package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mirador-dev/mirador/internal/models"
	"gorm.io/gorm"
)

type RuleStore struct {
	db *gorm.DB
}

func NewRuleStore(db *gorm.DB) *RuleStore {
	return &RuleStore{db: db}
}

// List returns alert rules newest-first. An empty userID lists every
// rule; that path is reserved for system contexts like the dispatcher.
func (s *RuleStore) List(ctx context.Context, userID string) ([]models.AlertRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := s.db.WithContext(ctx).Order("created_at DESC")

	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var rules []models.AlertRule

	if err := query.Find(&rules).Error; err != nil {
		return nil, classify("list alert rules", err)
	}

	return rules, nil
}

// Get fetches a single rule scoped to its owner.
func (s *RuleStore) Get(ctx context.Context, id, userID string) (*models.AlertRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var rule models.AlertRule

	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rule).Error; err != nil {
		return nil, classify("get alert rule", err)
	}

	return &rule, nil
}

// GetByID fetches a rule without owner scoping. System contexts only
// (the delivery dispatcher); the HTTP surface always scopes by owner.
func (s *RuleStore) GetByID(ctx context.Context, id string) (*models.AlertRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var rule models.AlertRule

	if err := s.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, classify("get alert rule", err)
	}

	return &rule, nil
}

// Create inserts the rule. The store stamps updated_at itself; a
// caller-supplied value is ignored. Inserting for a user_id with no
// profile row fails the foreign key and surfaces as a validation error.
func (s *RuleStore) Create(ctx context.Context, rule *models.AlertRule) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if rule.Name == "" {
		return fmt.Errorf("create alert rule: name is required: %w", ErrValidation)
	}

	rule.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return classify("create alert rule", err)
	}

	return nil
}

// Update applies a partial field set to an owner-scoped rule and
// returns the stored row. updated_at is stamped regardless of input.
func (s *RuleStore) Update(ctx context.Context, id, userID string, fields map[string]interface{}) (*models.AlertRule, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var rule models.AlertRule

	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rule).Error; err != nil {
		return nil, classify("update alert rule", err)
	}

	fields["updated_at"] = time.Now()

	if err := s.db.WithContext(ctx).Model(&rule).Updates(fields).Error; err != nil {
		return nil, classify("update alert rule", err)
	}

	if err := s.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, classify("update alert rule", err)
	}

	return &rule, nil
}

// Delete hard-deletes an owner-scoped rule. Deleting a row that does
// not exist (or belongs to someone else) reports not found.
func (s *RuleStore) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.AlertRule{})

	if result.Error != nil {
		return classify("delete alert rule", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("delete alert rule: %w", ErrNotFound)
	}

	return nil
}
