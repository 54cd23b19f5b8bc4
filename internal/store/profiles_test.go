package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileEnsureCreatesMissing(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileStore(db)

	id := uuid.NewString()

	profile, err := profiles.Ensure(context.Background(), id, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, "new@example.com", profile.Email)
	assert.Equal(t, types.RoleViewer, profile.Role)
}

func TestProfileEnsureKeepsExisting(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileStore(db)

	name := "Existing User"
	existing := &models.Profile{Email: "existing@example.com", FullName: &name, Role: types.RoleAdmin}
	require.NoError(t, profiles.Create(context.Background(), existing))

	profile, err := profiles.Ensure(context.Background(), existing.ID, "existing@example.com")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, profile.ID)
	assert.Equal(t, types.RoleAdmin, profile.Role)
	require.NotNil(t, profile.FullName)
	assert.Equal(t, "Existing User", *profile.FullName)
}

func TestProfileEnsureIdempotent(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileStore(db)

	id := uuid.NewString()

	first, err := profiles.Ensure(context.Background(), id, "repeat@example.com")
	require.NoError(t, err)

	second, err := profiles.Ensure(context.Background(), id, "repeat@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProfileEnsureConcurrent(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileStore(db)

	id := uuid.NewString()

	var wg sync.WaitGroup
	errs := make([]error, 8)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = profiles.Ensure(context.Background(), id, "racer@example.com")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			// Losers of the insert race surface a conflict, never a crash.
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.GreaterOrEqual(t, succeeded, 1)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProfileGetNotFound(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileStore(db)

	_, err := profiles.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileStore(db)

	require.NoError(t, profiles.Create(context.Background(), &models.Profile{Email: "dup@example.com"}))

	err := profiles.Create(context.Background(), &models.Profile{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
}
