// Package store provides the persistence operations for profiles,
// alert rules, notifications, source configurations and saved queries.
// Every operation runs under a derived deadline and returns errors
// tagged with one of the sentinel values below so callers can branch
// on the failure kind instead of the driver message.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// opTimeout bounds every remote store call. The backing database may
// hang; no caller should.
const opTimeout = 5 * time.Second

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation failed")
	ErrTransient        = errors.New("transient store failure")
)

// classify maps driver errors onto the store's error taxonomy, keeping
// the operation name for logs.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", op, ErrValidation)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}
