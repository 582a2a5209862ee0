package services

import (
	"testing"

	"vidverse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_PercentIsBounded(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	ladder := e.createAchievement(t, "Ten Uploads", models.ConditionUploadVideo, 10, 50)

	assert.Equal(t, float64(0), e.progress.Percent(user.ID, *ladder, false))

	for i := 0; i < 4; i++ {
		e.addVideo(t, user.ID, "music", 600, plainTime)
	}
	assert.InDelta(t, 40, e.progress.Percent(user.ID, *ladder, false), 0.01)

	// Value past the target stays capped at 100.
	for i := 0; i < 20; i++ {
		e.addVideo(t, user.ID, "music", 600, plainTime)
	}
	assert.Equal(t, float64(100), e.progress.Percent(user.ID, *ladder, false))
}

func TestProgress_UnlockedIsAlwaysComplete(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	ladder := e.createAchievement(t, "Ten Uploads", models.ConditionUploadVideo, 10, 50)

	// Unlocked earlier, then videos were deleted. Still 100.
	assert.Equal(t, float64(100), e.progress.Percent(user.ID, *ladder, true))
}

func TestProgress_FlagConditionsHaveNoRamp(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	flag := e.createAchievement(t, "Early Bird", models.ConditionEarlyUpload, 0, 30)

	assert.Equal(t, float64(0), e.progress.Percent(user.ID, *flag, false))
	assert.Equal(t, float64(100), e.progress.Percent(user.ID, *flag, true))
}

func TestProgress_Overview(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	first := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	ten := e.createAchievement(t, "Ten Uploads", models.ConditionUploadVideo, 10, 50)

	for i := 0; i < 2; i++ {
		e.addVideo(t, user.ID, "music", 600, plainTime)
	}
	e.triggers.OnVideoUploaded(user.ID, 600, plainTime)

	summary, err := e.progress.Overview(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Unlocked)
	assert.Equal(t, first.Points, summary.PointsEarned)

	byID := make(map[uint]AchievementProgress)
	for _, row := range summary.Achievements {
		byID[row.Achievement.ID] = row
	}

	require.Contains(t, byID, first.ID)
	assert.True(t, byID[first.ID].Unlocked)
	assert.NotNil(t, byID[first.ID].UnlockedAt)
	assert.Equal(t, float64(100), byID[first.ID].Percent)

	require.Contains(t, byID, ten.ID)
	assert.False(t, byID[ten.ID].Unlocked)
	assert.Equal(t, int64(2), byID[ten.ID].Current)
	assert.InDelta(t, 20, byID[ten.ID].Percent, 0.01)
}

func TestProgress_DescriptionsPerCondition(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	ten := e.createAchievement(t, "Ten Uploads", models.ConditionUploadVideo, 10, 50)
	binge := e.createAchievement(t, "Binge Watcher", models.ConditionWatchTime, 36000, 50)
	early := e.createAchievement(t, "Early Bird", models.ConditionEarlyUpload, 0, 30)

	for i := 0; i < 3; i++ {
		e.addVideo(t, user.ID, "music", 600, plainTime)
	}
	video := e.addVideo(t, user.ID, "music", 600, plainTime)
	require.NoError(t, e.db.Create(&models.ViewHistory{
		UserID:           user.ID,
		VideoID:          video.ID,
		WatchTimeSeconds: 7200,
	}).Error)

	summary, err := e.progress.Overview(user.ID)
	require.NoError(t, err)

	byID := make(map[uint]AchievementProgress)
	for _, row := range summary.Achievements {
		byID[row.Achievement.ID] = row
	}

	assert.Equal(t, "Uploaded 4/10 videos", byID[ten.ID].Description)
	assert.Equal(t, "Watched 2/10 hours", byID[binge.ID].Description)
	assert.Equal(t, "Not yet earned", byID[early.ID].Description)
}

func TestProgress_UnlockedDescriptionShowsTarget(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	first := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	e.addVideo(t, user.ID, "music", 600, plainTime)
	e.triggers.OnVideoUploaded(user.ID, 600, plainTime)

	summary, err := e.progress.Overview(user.ID)
	require.NoError(t, err)

	require.Len(t, summary.Achievements, 1)
	row := summary.Achievements[0]
	require.Equal(t, first.ID, row.Achievement.ID)
	assert.True(t, row.Unlocked)
	assert.Equal(t, "Uploaded 1/1 videos", row.Description)
}

func TestProgress_OverviewReadsEachMetricOnce(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	e.createAchievement(t, "Ten Uploads", models.ConditionUploadVideo, 10, 50)
	e.createAchievement(t, "Commenter", models.ConditionComment, 5, 10)

	counting := &countingMetrics{inner: e.metrics, calls: map[models.ConditionType]int{}}
	progress := NewProgressService(e.db, e.catalog, counting)

	_, err := progress.Overview(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, counting.calls[models.ConditionUploadVideo])
	assert.Equal(t, 1, counting.calls[models.ConditionComment])
}
