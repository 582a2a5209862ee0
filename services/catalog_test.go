package services

import (
	"testing"

	"vidverse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_SeedIsIdempotent(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.catalog.Seed())

	var first int64
	e.db.Model(&models.Achievement{}).Count(&first)
	assert.Greater(t, first, int64(0))

	require.NoError(t, e.catalog.Seed())

	var second int64
	e.db.Model(&models.Achievement{}).Count(&second)
	assert.Equal(t, first, second, "second seed must not add rows")
}

func TestCatalog_SeedDefinitionsAllValid(t *testing.T) {
	defs := defaultAchievements()
	require.NotEmpty(t, defs)

	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		assert.NoError(t, d.Validate(), "definition %q", d.Name)
		assert.False(t, names[d.Name], "duplicate name %q", d.Name)
		names[d.Name] = true
	}
}

func TestCatalog_CreateRejectsUnknownConditionType(t *testing.T) {
	e := newTestEngine(t)

	err := e.catalog.Create(&models.Achievement{
		Name:           "Mystery",
		ConditionType:  models.ConditionType("TELEPORT"),
		ConditionValue: 1,
	})
	assert.Error(t, err)

	var count int64
	e.db.Model(&models.Achievement{}).Count(&count)
	assert.Zero(t, count, "invalid definition must not be stored")
}

func TestCatalog_CreateRejectsNonPositiveThreshold(t *testing.T) {
	e := newTestEngine(t)

	err := e.catalog.Create(&models.Achievement{
		Name:          "Zero Uploads",
		ConditionType: models.ConditionUploadVideo,
	})
	assert.Error(t, err)
}

func TestCatalog_FindByName(t *testing.T) {
	e := newTestEngine(t)
	e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	found, err := e.catalog.FindByName("First Upload")
	require.NoError(t, err)
	assert.Equal(t, "First Upload", found.Name)

	_, err = e.catalog.FindByName("Does Not Exist")
	assert.ErrorIs(t, err, ErrAchievementNotFound)
}

func TestCatalog_DeactivateHidesFromEvaluation(t *testing.T) {
	e := newTestEngine(t)
	a := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	require.NoError(t, e.catalog.Deactivate(a.ID))

	active, err := e.catalog.ListActiveByCondition(models.ConditionUploadVideo)
	require.NoError(t, err)
	assert.Empty(t, active)

	// The definition itself survives for existing unlock rows.
	_, err = e.catalog.FindByID(a.ID)
	assert.NoError(t, err)
}
