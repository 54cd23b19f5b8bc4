package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/types"
	"gorm.io/gorm"
)

// statusRank orders the notification lifecycle. Updates may only move
// forward; a same-rank write is accepted as a no-op.
var statusRank = map[string]int{
	types.StatusNew:      0,
	types.StatusRead:     1,
	types.StatusResolved: 2,
}

// StatusOutcome reports one item of a batch status change.
type StatusOutcome struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// List returns every notification newest-first. Listing is not scoped
// by user; see DESIGN.md for the policy decision.
func (s *NotificationStore) List(ctx context.Context) ([]models.AlertNotification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var notifications []models.AlertNotification

	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, classify("list notifications", err)
	}

	return notifications, nil
}

func (s *NotificationStore) Get(ctx context.Context, id string) (*models.AlertNotification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var notification models.AlertNotification

	if err := s.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, classify("get notification", err)
	}

	return &notification, nil
}

// Create inserts a notification, defaulting priority and status.
func (s *NotificationStore) Create(ctx context.Context, notification *models.AlertNotification) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if notification.Title == "" || notification.Content == "" || notification.Source == "" {
		return fmt.Errorf("create notification: title, content and source are required: %w", ErrValidation)
	}

	if notification.Priority == "" {
		notification.Priority = types.PriorityMedium
	}

	if notification.Status == "" {
		notification.Status = types.StatusNew
	}

	if !types.ValidPriority(notification.Priority) {
		return fmt.Errorf("create notification: invalid priority %q: %w", notification.Priority, ErrValidation)
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return classify("create notification", err)
	}

	return nil
}

// UpdateStatus transitions a notification's status. Transitions are
// monotonic: new -> read -> resolved. Writing the current status again
// is a no-op; writing an earlier one is rejected.
func (s *NotificationStore) UpdateStatus(ctx context.Context, id, status string) (*models.AlertNotification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if !types.ValidStatus(status) {
		return nil, fmt.Errorf("update notification status: invalid status %q: %w", status, ErrValidation)
	}

	var notification models.AlertNotification

	if err := s.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, classify("update notification status", err)
	}

	if statusRank[status] < statusRank[notification.Status] {
		return nil, fmt.Errorf("update notification status: cannot move %q back to %q: %w",
			notification.Status, status, ErrValidation)
	}

	if status == notification.Status {
		return &notification, nil
	}

	if err := s.db.WithContext(ctx).Model(&notification).Update("status", status).Error; err != nil {
		return nil, classify("update notification status", err)
	}

	notification.Status = status
	return &notification, nil
}

// MarkAllRead transitions every "new" notification to "read" and
// reports a per-item outcome. One failing row does not stop the rest;
// there is no atomicity across items.
func (s *NotificationStore) MarkAllRead(ctx context.Context) ([]StatusOutcome, error) {
	listCtx, cancel := withTimeout(ctx)
	defer cancel()

	var pending []models.AlertNotification

	if err := s.db.WithContext(listCtx).Where("status = ?", types.StatusNew).Find(&pending).Error; err != nil {
		return nil, classify("mark all read", err)
	}

	outcomes := make([]StatusOutcome, 0, len(pending))

	for _, notification := range pending {
		outcome := StatusOutcome{ID: notification.ID, OK: true}

		if _, err := s.UpdateStatus(ctx, notification.ID, types.StatusRead); err != nil {
			outcome.OK = false
			outcome.Error = err.Error()
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// MarkDelivered records out-of-band channel delivery.
func (s *NotificationStore) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := s.db.WithContext(ctx).Model(&models.AlertNotification{}).
		Where("id = ?", id).
		Update("delivered_at", at).Error; err != nil {
		return classify("mark notification delivered", err)
	}

	return nil
}

// ListUndelivered returns rule-attributed notifications awaiting
// channel delivery, oldest first.
func (s *NotificationStore) ListUndelivered(ctx context.Context, limit int) ([]models.AlertNotification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var notifications []models.AlertNotification

	if err := s.db.WithContext(ctx).
		Where("delivered_at IS NULL AND alert_rule_id IS NOT NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, classify("list undelivered notifications", err)
	}

	return notifications, nil
}
