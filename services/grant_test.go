package services

import (
	"sync"
	"testing"

	"vidverse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrant_FirstGrantCreatesRow(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	a := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	created, err := e.grants.Grant(user.ID, a)
	require.NoError(t, err)
	assert.True(t, created)

	unlocked, err := e.grants.Unlocked(user.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, unlocked)
}

func TestGrant_DuplicateIsSilentNoop(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	a := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	created, err := e.grants.Grant(user.ID, a)
	require.NoError(t, err)
	require.True(t, created)

	created, err = e.grants.Grant(user.ID, a)
	require.NoError(t, err)
	assert.False(t, created, "second grant must be a no-op, not an error")

	var count int64
	e.db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", user.ID, a.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGrant_ConcurrentGrantsCreateOneRow(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")
	a := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	const workers = 8
	results := make(chan bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := e.grants.Grant(user.ID, a)
			assert.NoError(t, err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for created := range results {
		if created {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent grant must win")

	var count int64
	e.db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", user.ID, a.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGrantByName_MissingNameIsNoop(t *testing.T) {
	e := newTestEngine(t)
	user := e.createUser(t, "alice")

	created, err := e.grants.GrantByName(user.ID, "Not In Catalog")
	assert.NoError(t, err)
	assert.False(t, created)
}

func TestGrant_SideEffectsRunAfterUnlock(t *testing.T) {
	e := newTestEngine(t)
	WireUnlockRewards(e.dispatcher, NewLevelService(e.db), NewNotificationService(e.db))

	user := e.createUser(t, "alice")
	a := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	created, err := e.grants.Grant(user.ID, a)
	require.NoError(t, err)
	require.True(t, created)

	var reloaded models.User
	require.NoError(t, e.db.First(&reloaded, user.ID).Error)
	assert.GreaterOrEqual(t, reloaded.Points, a.Points, "points reward applied")
	assert.Equal(t, a.Points*2, reloaded.XP+xpSpentOnLevels(reloaded.Level), "xp reward applied")

	var notifications []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationAchievement, notifications[0].Type)
	assert.Contains(t, notifications[0].Title, a.Name)
}

func TestGrant_SideEffectsNotRepeatedForDuplicate(t *testing.T) {
	e := newTestEngine(t)
	WireUnlockRewards(e.dispatcher, NewLevelService(e.db), NewNotificationService(e.db))

	user := e.createUser(t, "alice")
	a := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)

	_, err := e.grants.Grant(user.ID, a)
	require.NoError(t, err)
	_, err = e.grants.Grant(user.ID, a)
	require.NoError(t, err)

	var notifications int64
	e.db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notifications)
	assert.Equal(t, int64(1), notifications, "duplicate grant must not notify again")
}

func TestGrant_UnlockedSetAndCounts(t *testing.T) {
	e := newTestEngine(t)
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	first := e.createAchievement(t, "First Upload", models.ConditionUploadVideo, 1, 10)
	fifth := e.createAchievement(t, "Five Uploads", models.ConditionUploadVideo, 5, 25)

	_, err := e.grants.Grant(alice.ID, first)
	require.NoError(t, err)
	_, err = e.grants.Grant(alice.ID, fifth)
	require.NoError(t, err)
	_, err = e.grants.Grant(bob.ID, first)
	require.NoError(t, err)

	set, err := e.grants.UnlockedSet(alice.ID)
	require.NoError(t, err)
	assert.Contains(t, set, first.ID)
	assert.Contains(t, set, fifth.ID)

	set, err = e.grants.UnlockedSet(bob.ID)
	require.NoError(t, err)
	assert.Contains(t, set, first.ID)
	assert.NotContains(t, set, fifth.ID)

	count, err := e.grants.CountUnlocked(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	counts, err := e.grants.UnlockCounts([]uint{alice.ID, bob.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[alice.ID])
	assert.Equal(t, int64(1), counts[bob.ID])
	assert.NotContains(t, counts, uint(999))
}

// xpSpentOnLevels sums the XP consumed by level-ups from level 1 up to
// the given level, so tests can account for XP moved into levels.
func xpSpentOnLevels(level int) int {
	spent := 0
	for l := 2; l <= level; l++ {
		spent += XPForLevel(l)
	}
	return spent
}
