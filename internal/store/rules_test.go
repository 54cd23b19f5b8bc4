package store

import (
	"context"
	"testing"
	"time"

	"github.com/mirador-dev/mirador/internal/alerts"
	"github.com/mirador-dev/mirador/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestTriggers(t *testing.T, keywords []string, sentiment string) []byte {
	t.Helper()

	raw, err := alerts.EncodeTriggers(alerts.TriggerConfig{
		Keywords:           keywords,
		SentimentThreshold: sentiment,
	})
	require.NoError(t, err)
	return raw
}

func encodeTestChannels(t *testing.T, channels []string) []byte {
	t.Helper()

	raw, err := alerts.EncodeChannels(alerts.ChannelConfig{NotificationChannels: channels})
	require.NoError(t, err)
	return raw
}

func TestRuleCreateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	profile := createTestProfile(t, db, "owner@example.com")

	rule := &models.AlertRule{
		UserID:      profile.ID,
		Name:        "Brand mentions",
		Description: "Watch for brand mentions",
		Triggers:    encodeTestTriggers(t, []string{"marca"}, "any"),
		Channels:    encodeTestChannels(t, []string{"app"}),
		IsActive:    true,
	}

	require.NoError(t, rules.Create(context.Background(), rule))

	assert.NotEmpty(t, rule.ID)
	assert.False(t, rule.CreatedAt.IsZero())
	assert.False(t, rule.UpdatedAt.IsZero())

	listed, err := rules.List(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := listed[0]
	assert.Equal(t, rule.ID, got.ID)
	assert.Equal(t, "Brand mentions", got.Name)
	assert.Equal(t, "Watch for brand mentions", got.Description)
	assert.True(t, got.IsActive)

	triggers := alerts.DecodeTriggers(got.Triggers)
	assert.Equal(t, []string{"marca"}, triggers.Keywords)
	assert.Equal(t, "any", triggers.SentimentThreshold)
}

func TestRuleCreateRequiresName(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	profile := createTestProfile(t, db, "owner@example.com")

	rule := &models.AlertRule{
		UserID:   profile.ID,
		Triggers: encodeTestTriggers(t, []string{"marca"}, "any"),
		Channels: encodeTestChannels(t, []string{"app"}),
	}

	err := rules.Create(context.Background(), rule)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRuleCreateRequiresProfile(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)

	rule := &models.AlertRule{
		UserID:   "00000000-0000-0000-0000-000000000000",
		Name:     "Orphan rule",
		Triggers: encodeTestTriggers(t, []string{"marca"}, "any"),
		Channels: encodeTestChannels(t, []string{"app"}),
	}

	err := rules.Create(context.Background(), rule)
	assert.Error(t, err)
}

func TestRuleToggleScenario(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	profile := createTestProfile(t, db, "u@example.com")

	rule := &models.AlertRule{
		UserID:   profile.ID,
		Name:     "Negative spikes",
		Triggers: encodeTestTriggers(t, []string{"marca", "queja"}, "negative"),
		Channels: encodeTestChannels(t, []string{"email"}),
		IsActive: true,
	}

	require.NoError(t, rules.Create(context.Background(), rule))

	listed, err := rules.List(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Negative spikes", listed[0].Name)
	assert.True(t, listed[0].IsActive)

	triggers := alerts.DecodeTriggers(listed[0].Triggers)
	assert.Equal(t, []string{"marca", "queja"}, triggers.Keywords)
	assert.Equal(t, "negative", triggers.SentimentThreshold)

	channels := alerts.DecodeChannels(listed[0].Channels)
	assert.Equal(t, []string{"email"}, channels.NotificationChannels)

	beforeUpdate := listed[0].UpdatedAt
	time.Sleep(10 * time.Millisecond)

	updated, err := rules.Update(context.Background(), rule.ID, profile.ID, map[string]interface{}{
		"is_active": false,
	})
	require.NoError(t, err)
	assert.Equal(t, rule.ID, updated.ID)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.UpdatedAt.After(beforeUpdate))

	listed, err = rules.List(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rule.ID, listed[0].ID)
	assert.False(t, listed[0].IsActive)
}

func TestRuleListOrdering(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	profile := createTestProfile(t, db, "u@example.com")

	first := &models.AlertRule{
		UserID:    profile.ID,
		Name:      "older",
		Triggers:  encodeTestTriggers(t, []string{"a"}, "any"),
		Channels:  encodeTestChannels(t, []string{"app"}),
		CreatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, rules.Create(context.Background(), first))

	second := &models.AlertRule{
		UserID:   profile.ID,
		Name:     "newer",
		Triggers: encodeTestTriggers(t, []string{"b"}, "any"),
		Channels: encodeTestChannels(t, []string{"app"}),
	}
	require.NoError(t, rules.Create(context.Background(), second))

	listed, err := rules.List(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "newer", listed[0].Name)
	assert.Equal(t, "older", listed[1].Name)
}

func TestRuleListScopedByOwner(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	alice := createTestProfile(t, db, "alice@example.com")
	bob := createTestProfile(t, db, "bob@example.com")

	require.NoError(t, rules.Create(context.Background(), &models.AlertRule{
		UserID:   alice.ID,
		Name:     "alice rule",
		Triggers: encodeTestTriggers(t, []string{"a"}, "any"),
		Channels: encodeTestChannels(t, []string{"app"}),
	}))

	listed, err := rules.List(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Unfiltered listing is reserved for system contexts.
	all, err := rules.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRuleDeleteNonexistent(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	profile := createTestProfile(t, db, "u@example.com")

	rule := &models.AlertRule{
		UserID:   profile.ID,
		Name:     "keep me",
		Triggers: encodeTestTriggers(t, []string{"a"}, "any"),
		Channels: encodeTestChannels(t, []string{"app"}),
	}
	require.NoError(t, rules.Create(context.Background(), rule))

	err := rules.Delete(context.Background(), "11111111-1111-1111-1111-111111111111", profile.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The failed delete must not disturb existing rows.
	listed, err := rules.List(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestRuleUpdateNotFound(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	profile := createTestProfile(t, db, "u@example.com")

	_, err := rules.Update(context.Background(), "11111111-1111-1111-1111-111111111111", profile.ID, map[string]interface{}{
		"name": "nope",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRuleDeleteScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleStore(db)
	alice := createTestProfile(t, db, "alice@example.com")
	bob := createTestProfile(t, db, "bob@example.com")

	rule := &models.AlertRule{
		UserID:   alice.ID,
		Name:     "alice rule",
		Triggers: encodeTestTriggers(t, []string{"a"}, "any"),
		Channels: encodeTestChannels(t, []string{"app"}),
	}
	require.NoError(t, rules.Create(context.Background(), rule))

	err := rules.Delete(context.Background(), rule.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := rules.List(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
