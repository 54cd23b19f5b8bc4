package store

import (
	"context"
	"testing"
	"time"

	"github.com/mirador-dev/mirador/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySaveAndList(t *testing.T) {
	db := newTestDB(t)
	queries := NewQueryStore(db)
	profile := createTestProfile(t, db, "owner@example.com")

	older := &models.SavedQuery{
		UserID:    profile.ID,
		QueryText: "older question",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, queries.Save(context.Background(), older))

	newer := &models.SavedQuery{
		UserID:    profile.ID,
		QueryText: "newer question",
	}
	require.NoError(t, queries.Save(context.Background(), newer))
	assert.NotEmpty(t, newer.ID)

	listed, err := queries.List(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "newer question", listed[0].QueryText)
	assert.Equal(t, "older question", listed[1].QueryText)
}

func TestQuerySaveRequiresText(t *testing.T) {
	db := newTestDB(t)
	queries := NewQueryStore(db)
	profile := createTestProfile(t, db, "owner@example.com")

	err := queries.Save(context.Background(), &models.SavedQuery{UserID: profile.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQueryListScopedByOwner(t *testing.T) {
	db := newTestDB(t)
	queries := NewQueryStore(db)
	alice := createTestProfile(t, db, "alice@example.com")
	bob := createTestProfile(t, db, "bob@example.com")

	require.NoError(t, queries.Save(context.Background(), &models.SavedQuery{
		UserID:    alice.ID,
		QueryText: "alice question",
	}))

	listed, err := queries.List(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestQueryDeleteScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	queries := NewQueryStore(db)
	alice := createTestProfile(t, db, "alice@example.com")
	bob := createTestProfile(t, db, "bob@example.com")

	saved := &models.SavedQuery{
		UserID:    alice.ID,
		QueryText: "alice question",
	}
	require.NoError(t, queries.Save(context.Background(), saved))

	err := queries.Delete(context.Background(), saved.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, queries.Delete(context.Background(), saved.ID, alice.ID))

	err = queries.Delete(context.Background(), saved.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
