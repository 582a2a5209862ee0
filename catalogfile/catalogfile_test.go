package catalogfile

import (
	"os"
	"path/filepath"
	"testing"

	"vidverse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeTemp(t, `[
		{"name": "First Upload", "description": "Upload one video",
		 "category": "upload", "rarity": "common", "points": 10,
		 "condition_type": "UPLOAD_VIDEO", "condition_value": 1, "is_active": true}
	]`)

	defs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "First Upload", defs[0].Name)
	assert.Equal(t, models.ConditionUploadVideo, defs[0].ConditionType)
	assert.Empty(t, Check(defs))
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeTemp(t, `{not json`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestCheck_ReportsEveryBadEntry(t *testing.T) {
	defs := []models.Achievement{
		{Name: "Good", ConditionType: models.ConditionUploadVideo, ConditionValue: 1},
		{Name: "Bad Type", ConditionType: models.ConditionType("WARP"), ConditionValue: 1},
		{Name: "", ConditionType: models.ConditionUploadVideo, ConditionValue: 1},
	}

	errs := Check(defs)
	assert.Len(t, errs, 2)
}

func TestCheck_ReportsDuplicateNames(t *testing.T) {
	defs := []models.Achievement{
		{Name: "Twin", ConditionType: models.ConditionUploadVideo, ConditionValue: 1},
		{Name: "Twin", ConditionType: models.ConditionUploadVideo, ConditionValue: 5},
	}

	errs := Check(defs)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicate")
}
