package services

import (
	"testing"
	"time"

	"vidverse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (e *testEngine) addVideo(t *testing.T, userID uint, category string, duration int64, at time.Time) *models.Video {
	t.Helper()
	v := &models.Video{
		UserID:          userID,
		Title:           "clip",
		Category:        category,
		DurationSeconds: duration,
		CreatedAt:       at,
	}
	require.NoError(t, e.db.Create(v).Error)
	return v
}

// A Monday at noon: no weekend, holiday, or time-of-day flags in play.
var plainTime = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

func TestTrigger_ThresholdCrossing(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	first := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	fifth := e.createAchievement(t, "Five Uploads", models.ConditionUploadVideo, 5, 25)

	e.addVideo(t, user.ID, "music", 600, plainTime)
	unlocked := e.triggers.OnVideoUploaded(user.ID, 600, plainTime)

	require.Len(t, unlocked, 1)
	assert.Equal(t, first.ID, unlocked[0].ID)

	ok, _ := e.grants.Unlocked(user.ID, fifth.ID)
	assert.False(t, ok, "five-upload ladder must not unlock after one upload")
}

func TestTrigger_MultipleRungsAtOnce(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	e.createAchievement(t, "Five Uploads", models.ConditionUploadVideo, 5, 25)

	// Five uploads land before any trigger ran (e.g. an import), then one
	// trigger fires. Both rungs must unlock in the same evaluation.
	for i := 0; i < 5; i++ {
		e.addVideo(t, user.ID, "music", 600, plainTime)
	}
	unlocked := e.triggers.OnVideoUploaded(user.ID, 600, plainTime)
	assert.Len(t, unlocked, 2)
}

func TestTrigger_RepeatActionDoesNotRegrant(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	e.addVideo(t, user.ID, "music", 600, plainTime)
	first := e.triggers.OnVideoUploaded(user.ID, 600, plainTime)
	require.Len(t, first, 1)

	e.addVideo(t, user.ID, "music", 600, plainTime)
	second := e.triggers.OnVideoUploaded(user.ID, 600, plainTime)
	assert.Empty(t, second, "already-unlocked achievements must not be reported again")
}

func TestTrigger_UnknownActionIsIgnored(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")

	unlocked, err := e.triggers.Trigger(user.ID, models.ConditionType("SOLVE_RUBIKS_CUBE"), 3)
	assert.NoError(t, err, "unknown actions are dropped, not errors")
	assert.Empty(t, unlocked)
}

func TestTrigger_DurationBuckets(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	short := e.createAchievement(t, "Short One", models.ConditionShortVideo, 1, 10)
	marathon := e.createAchievement(t, "Marathon One", models.ConditionMarathonVideo, 1, 50)

	// 240s: short bucket only.
	e.addVideo(t, user.ID, "music", 240, plainTime)
	e.triggers.OnVideoUploaded(user.ID, 240, plainTime)

	ok, _ := e.grants.Unlocked(user.ID, short.ID)
	assert.True(t, ok)
	ok, _ = e.grants.Unlocked(user.ID, marathon.ID)
	assert.False(t, ok)

	// 4000s: marathon (and long) but not short.
	e.addVideo(t, user.ID, "music", 4000, plainTime)
	e.triggers.OnVideoUploaded(user.ID, 4000, plainTime)

	ok, _ = e.grants.Unlocked(user.ID, marathon.ID)
	assert.True(t, ok)
}

func TestTrigger_HolidayUploadFlag(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	holiday := e.createAchievement(t, "Holiday Spirit", models.ConditionHolidayUpload, 0, 50)

	christmas := time.Date(2026, time.December, 25, 12, 0, 0, 0, time.UTC)
	e.addVideo(t, user.ID, "music", 600, christmas)
	unlocked := e.triggers.OnVideoUploaded(user.ID, 600, christmas)

	require.NotEmpty(t, unlocked)
	ok, _ := e.grants.Unlocked(user.ID, holiday.ID)
	assert.True(t, ok)
}

func TestTrigger_PlainWeekdayUploadSkipsFlags(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	holiday := e.createAchievement(t, "Holiday Spirit", models.ConditionHolidayUpload, 0, 50)
	early := e.createAchievement(t, "Early Bird", models.ConditionEarlyUpload, 0, 30)

	e.addVideo(t, user.ID, "music", 600, plainTime)
	e.triggers.OnVideoUploaded(user.ID, 600, plainTime)

	ok, _ := e.grants.Unlocked(user.ID, holiday.ID)
	assert.False(t, ok)
	ok, _ = e.grants.Unlocked(user.ID, early.ID)
	assert.False(t, ok)
}

func TestTrigger_LikeFiresBothSides(t *testing.T) {
	e := newTestEngine(t)
	liker := e.createUser(t, "alice")
	owner := e.createUser(t, "bob")
	given := e.createAchievement(t, "First Like Given", models.ConditionLikeVideo, 1, 5)
	received := e.createAchievement(t, "First Fan", models.ConditionReceiveLike, 1, 5)

	video := e.addVideo(t, owner.ID, "music", 600, plainTime)
	require.NoError(t, e.db.Create(&models.VideoLike{UserID: liker.ID, VideoID: video.ID}).Error)

	e.triggers.OnVideoLiked(liker.ID, owner.ID)

	ok, _ := e.grants.Unlocked(liker.ID, given.ID)
	assert.True(t, ok, "liker gets the giving-side achievement")
	ok, _ = e.grants.Unlocked(owner.ID, received.ID)
	assert.True(t, ok, "owner gets the receiving-side achievement")

	ok, _ = e.grants.Unlocked(liker.ID, received.ID)
	assert.False(t, ok)
}

func TestTrigger_LoginStreak(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	streak3 := e.createAchievement(t, "Three Days", models.ConditionConsecutiveDays, 3, 20)

	day := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	e.triggers.OnLogin(user, day)
	e.triggers.OnLogin(user, day.Add(2*time.Hour)) // same day, streak stays 1
	e.triggers.OnLogin(user, day.AddDate(0, 0, 1))

	ok, _ := e.grants.Unlocked(user.ID, streak3.ID)
	require.False(t, ok, "two-day streak must not unlock the three-day rung")

	unlocked := e.triggers.OnLogin(user, day.AddDate(0, 0, 2))
	require.Len(t, unlocked, 1)
	assert.Equal(t, streak3.ID, unlocked[0].ID)
}

func TestTrigger_LoginStreakResetsAfterGap(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")

	day := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	e.triggers.OnLogin(user, day)
	e.triggers.OnLogin(user, day.AddDate(0, 0, 1))
	e.triggers.OnLogin(user, day.AddDate(0, 0, 5)) // gap resets

	var checkin models.DailyCheckin
	require.NoError(t, e.db.Where("user_id = ?", user.ID).First(&checkin).Error)
	assert.Equal(t, int64(1), checkin.ConsecutiveDays)
}

func TestTrigger_BirthdayLogin(t *testing.T) {
	e := newTestEngine(t)
	birthday := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	user := e.createUser(t, "alice")
	user.Birthday = &birthday
	require.NoError(t, e.db.Save(user).Error)

	cake := e.createAchievement(t, "Birthday Cake", models.ConditionBirthdayLogin, 0, 100)

	e.triggers.OnLogin(user, time.Date(2026, time.June, 14, 9, 0, 0, 0, time.UTC))
	ok, _ := e.grants.Unlocked(user.ID, cake.ID)
	require.False(t, ok)

	e.triggers.OnLogin(user, time.Date(2026, time.June, 15, 9, 0, 0, 0, time.UTC))
	ok, _ = e.grants.Unlocked(user.ID, cake.ID)
	assert.True(t, ok)
}

func TestTrigger_CategoryDiversity(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	diverse := e.createAchievement(t, "Versatile", models.ConditionCategoryDiversity, 3, 150)

	for _, cat := range []string{"music", "music", "gaming"} {
		e.addVideo(t, user.ID, cat, 600, plainTime)
	}
	e.triggers.OnVideoUploaded(user.ID, 600, plainTime)
	ok, _ := e.grants.Unlocked(user.ID, diverse.ID)
	require.False(t, ok, "two distinct categories must not satisfy a three-category condition")

	e.addVideo(t, user.ID, "cooking", 600, plainTime)
	e.triggers.OnVideoUploaded(user.ID, 600, plainTime)
	ok, _ = e.grants.Unlocked(user.ID, diverse.ID)
	assert.True(t, ok)
}

func TestTrigger_MetricFailureIsolatesConditions(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	uploads := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	explorer := e.createAchievement(t, "Explorer", models.ConditionCategoryDiversity, 1, 10)

	// The upload metric errors out; the diversity condition fired by the
	// same action must still evaluate and grant.
	faulty := &faultyMetrics{inner: e.metrics, failFor: models.ConditionUploadVideo}
	triggers := NewTriggerService(e.db, e.catalog, e.grants, faulty)

	e.addVideo(t, user.ID, "music", 600, plainTime)
	unlocked := triggers.OnVideoUploaded(user.ID, 600, plainTime)

	require.Len(t, unlocked, 1)
	assert.Equal(t, explorer.ID, unlocked[0].ID)

	ok, _ := e.grants.Unlocked(user.ID, uploads.ID)
	assert.False(t, ok)
}

func TestTrigger_RepeatActionStaysOffWritePath(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	var unlockWrites int
	err := e.db.Callback().Create().Before("gorm:create").Register("count_unlock_writes", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_achievements" {
			unlockWrites++
		}
	})
	require.NoError(t, err)

	e.addVideo(t, user.ID, "music", 600, plainTime)
	unlocked, err := e.triggers.Trigger(user.ID, models.ConditionUploadVideo, 1)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	require.Equal(t, 1, unlockWrites)

	// Held achievements are filtered before evaluation, so the repeat
	// never reaches the insert.
	e.addVideo(t, user.ID, "music", 600, plainTime)
	unlocked, err = e.triggers.Trigger(user.ID, models.ConditionUploadVideo, 2)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, 1, unlockWrites)
}
