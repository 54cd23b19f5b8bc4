package store

import (
	"fmt"
	"testing"

	"github.com/mirador-dev/mirador/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test, with
// foreign keys enforced so the profile referential invariant holds.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000&_fk=1", t.Name())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.AlertRule{},
		&models.AlertNotification{},
		&models.SourceConfiguration{},
		&models.SavedQuery{},
	))

	return db
}

func createTestProfile(t *testing.T, db *gorm.DB, email string) *models.Profile {
	t.Helper()

	profile := &models.Profile{Email: email, Role: "viewer"}
	require.NoError(t, db.Create(profile).Error)
	return profile
}
