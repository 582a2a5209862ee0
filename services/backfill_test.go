package services

import (
	"testing"

	"vidverse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfill_GrantsFromStoredActivity(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	first := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	fifth := e.createAchievement(t, "Five Uploads", models.ConditionUploadVideo, 5, 25)
	tenth := e.createAchievement(t, "Ten Uploads", models.ConditionUploadVideo, 10, 50)

	// Activity accumulated while no triggers ran.
	for i := 0; i < 5; i++ {
		e.addVideo(t, user.ID, "music", 600, plainTime)
	}

	granted, err := e.backfill.DetectUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, granted)

	ok, _ := e.grants.Unlocked(user.ID, first.ID)
	assert.True(t, ok)
	ok, _ = e.grants.Unlocked(user.ID, fifth.ID)
	assert.True(t, ok)
	ok, _ = e.grants.Unlocked(user.ID, tenth.ID)
	assert.False(t, ok)
}

func TestBackfill_SecondRunGrantsNothing(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	e.addVideo(t, user.ID, "music", 600, plainTime)

	granted, err := e.backfill.DetectUser(user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, granted)

	granted, err = e.backfill.DetectUser(user.ID)
	require.NoError(t, err)
	assert.Zero(t, granted)
}

func TestBackfill_SkipsFlagConditions(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	flag := e.createAchievement(t, "Early Bird", models.ConditionEarlyUpload, 0, 30)

	// Even with stored uploads, a moment-in-time flag cannot be
	// reconstructed after the fact.
	e.addVideo(t, user.ID, "music", 600, plainTime)

	granted, err := e.backfill.DetectUser(user.ID)
	require.NoError(t, err)
	assert.Zero(t, granted)

	ok, _ := e.grants.Unlocked(user.ID, flag.ID)
	assert.False(t, ok)
}

func TestBackfill_MetricFailureIsolatesDefinitions(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	broken := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	commenter := e.createAchievement(t, "First Comment", models.ConditionComment, 1, 5)

	video := e.addVideo(t, user.ID, "music", 600, plainTime)
	require.NoError(t, e.db.Create(&models.Comment{
		UserID:  user.ID,
		VideoID: video.ID,
		Content: "nice",
	}).Error)

	// The upload metric errors out; the comment definition must still be
	// evaluated and granted, and the sweep itself must not fail.
	faulty := &faultyMetrics{inner: e.metrics, failFor: models.ConditionUploadVideo}
	backfill := NewBackfillService(e.db, e.catalog, e.grants, faulty)

	granted, err := backfill.DetectUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, granted)

	ok, _ := e.grants.Unlocked(user.ID, commenter.ID)
	assert.True(t, ok)
	ok, _ = e.grants.Unlocked(user.ID, broken.ID)
	assert.False(t, ok)
}

func TestBackfill_DetectAllCoversEveryUser(t *testing.T) {
	e := newTestEngine(t)
	e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	e.createAchievement(t, "First Watch", models.ConditionWatchVideo, 1, 5)

	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	e.createUser(t, "carol") // no activity

	video := e.addVideo(t, alice.ID, "music", 600, plainTime)
	require.NoError(t, e.db.Create(&models.ViewHistory{
		UserID:           bob.ID,
		VideoID:          video.ID,
		WatchTimeSeconds: 120,
	}).Error)

	report, err := e.backfill.DetectAll()
	require.NoError(t, err)

	assert.Equal(t, 3, report.Users)
	assert.Equal(t, 2, report.Granted)
	assert.Zero(t, report.Failures)
}

func TestMetrics_WatchTimeAccumulates(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	video := e.addVideo(t, user.ID, "music", 600, plainTime)

	for _, seconds := range []int64{100, 250, 50} {
		require.NoError(t, e.db.Create(&models.ViewHistory{
			UserID:           user.ID,
			VideoID:          video.ID,
			WatchTimeSeconds: seconds,
		}).Error)
	}

	total, err := e.metrics.Metric(user.ID, models.ConditionWatchTime)
	require.NoError(t, err)
	assert.Equal(t, int64(400), total)
}

func TestMetrics_ReceiveLikeCountsLikesOnOwnVideos(t *testing.T) {
	e := newTestEngine(t)
	owner := e.createUser(t, "alice")
	fan := e.createUser(t, "bob")

	mine := e.addVideo(t, owner.ID, "music", 600, plainTime)
	theirs := e.addVideo(t, fan.ID, "music", 600, plainTime)

	require.NoError(t, e.db.Create(&models.VideoLike{UserID: fan.ID, VideoID: mine.ID}).Error)
	require.NoError(t, e.db.Create(&models.VideoLike{UserID: owner.ID, VideoID: theirs.ID}).Error)

	received, err := e.metrics.Metric(owner.ID, models.ConditionReceiveLike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), received)

	given, err := e.metrics.Metric(owner.ID, models.ConditionLikeVideo)
	require.NoError(t, err)
	assert.Equal(t, int64(1), given)
}

func TestMetrics_FlagConditionIsUnavailable(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")

	_, err := e.metrics.Metric(user.ID, models.ConditionEarlyUpload)
	assert.ErrorIs(t, err, ErrMetricUnavailable)
}
