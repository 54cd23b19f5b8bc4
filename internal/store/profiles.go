package store

import (
	"context"
	"errors"

	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/types"
	"gorm.io/gorm"
)

type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Get(ctx context.Context, id string) (*models.Profile, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var profile models.Profile

	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, classify("get profile", err)
	}

	return &profile, nil
}

func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var profile models.Profile

	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, classify("get profile by email", err)
	}

	return &profile, nil
}

func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if profile.Role == "" {
		profile.Role = types.RoleViewer
	}

	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return classify("create profile", err)
	}

	return nil
}

// Ensure makes sure a profile row exists for the principal before work
// is attributed to it. Lookup-then-insert, keyed to the not-found
// error; any other lookup failure propagates. Two concurrent calls for
// the same new id race on the insert and the loser surfaces a conflict
// error rather than retrying as a lookup.
func (s *ProfileStore) Ensure(ctx context.Context, id, email string) (*models.Profile, error) {
	profile, err := s.Get(ctx, id)

	if err == nil {
		return profile, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := &models.Profile{
		ID:    id,
		Email: email,
		Role:  types.RoleViewer,
	}

	if err := s.Create(ctx, created); err != nil {
		return nil, err
	}

	return created, nil
}
