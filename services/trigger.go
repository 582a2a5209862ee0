// services/trigger.go - Action Triggers
package services

import (
	"log"
	"time"

	"vidverse/models"

	"gorm.io/gorm"
)

// Upload time-of-day windows, in local server time.
const (
	earlyUploadStartHour = 5
	earlyUploadEndHour   = 8
	lateUploadEndHour    = 5
)

// holidays lists the month/day pairs that count for HOLIDAY_UPLOAD.
var holidays = [][2]int{
	{1, 1},
	{2, 1},
	{5, 1},
	{10, 1},
	{12, 25},
}

func isHoliday(t time.Time) bool {
	for _, h := range holidays {
		if int(t.Month()) == h[0] && t.Day() == h[1] {
			return true
		}
	}
	return false
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// TriggerService is the entry point the activity flows call when a user
// does something. It fans one action out over the matching catalog
// definitions and grants every one the user now satisfies.
type TriggerService struct {
	db      *gorm.DB
	catalog *CatalogService
	grants  *GrantService
	metrics MetricProvider
}

func NewTriggerService(db *gorm.DB, catalog *CatalogService, grants *GrantService, metrics MetricProvider) *TriggerService {
	return &TriggerService{db: db, catalog: catalog, grants: grants, metrics: metrics}
}

// Trigger evaluates every active definition of one condition type against
// the given value and grants the matches. Unknown condition types are
// ignored so that new client actions can ship before the engine learns
// them. Candidates are isolated from each other: one failing grant is
// logged and the rest still run.
func (s *TriggerService) Trigger(userID uint, action models.ConditionType, value int64) ([]models.Achievement, error) {
	if !action.IsValid() {
		log.Printf("⚠️ Ignoring trigger with unknown condition type %q (user %d)", action, userID)
		return nil, nil
	}

	candidates, err := s.catalog.ListActiveByCondition(action)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// One read up front keeps repeat actions off the insert path. The
	// insert itself stays idempotent, so a stale set only costs a no-op
	// write, never a double grant.
	held, err := s.grants.UnlockedSet(userID)
	if err != nil {
		log.Printf("⚠️ Failed to load unlocks for user %d: %v", userID, err)
		held = map[uint]struct{}{}
	}

	var unlocked []models.Achievement
	for i := range candidates {
		if _, ok := held[candidates[i].ID]; ok {
			continue
		}
		if !Matches(candidates[i], action, value) {
			continue
		}
		created, err := s.grants.Grant(userID, &candidates[i])
		if err != nil {
			log.Printf("⚠️ Grant failed for achievement %d (user %d): %v", candidates[i].ID, userID, err)
			continue
		}
		if created {
			unlocked = append(unlocked, candidates[i])
		}
	}
	return unlocked, nil
}

// triggerMetric recomputes the user's metric for a counter condition and
// fires the trigger with it.
func (s *TriggerService) triggerMetric(userID uint, action models.ConditionType) []models.Achievement {
	value, err := s.metrics.Metric(userID, action)
	if err != nil {
		log.Printf("⚠️ Failed to compute %s metric for user %d: %v", action, userID, err)
		return nil
	}
	unlocked, err := s.Trigger(userID, action, value)
	if err != nil {
		log.Printf("⚠️ Trigger %s failed for user %d: %v", action, userID, err)
	}
	return unlocked
}

// OnRegister fires the registration flag for a brand-new account.
func (s *TriggerService) OnRegister(userID uint) []models.Achievement {
	unlocked, err := s.Trigger(userID, models.ConditionRegister, 0)
	if err != nil {
		log.Printf("⚠️ Register trigger failed for user %d: %v", userID, err)
	}
	return unlocked
}

// OnVideoUploaded fires everything an upload can satisfy: the upload
// ladders, the duration buckets, category diversity and the time-of-day
// flags.
func (s *TriggerService) OnVideoUploaded(userID uint, durationSeconds int64, uploadedAt time.Time) []models.Achievement {
	var unlocked []models.Achievement
	unlocked = append(unlocked, s.triggerMetric(userID, models.ConditionUploadVideo)...)
	unlocked = append(unlocked, s.triggerMetric(userID, models.ConditionCategoryDiversity)...)

	if durationSeconds > 0 && durationSeconds < models.ShortVideoMaxSeconds {
		unlocked = append(unlocked, s.triggerMetric(userID, models.ConditionShortVideo)...)
	}
	if durationSeconds > models.LongVideoMinSeconds {
		unlocked = append(unlocked, s.triggerMetric(userID, models.ConditionLongVideo)...)
	}
	if durationSeconds > models.MarathonVideoMinSeconds {
		unlocked = append(unlocked, s.triggerMetric(userID, models.ConditionMarathonVideo)...)
	}

	if isWeekend(uploadedAt) {
		unlocked = append(unlocked, s.triggerMetric(userID, models.ConditionWeekendUpload)...)
	}
	if isHoliday(uploadedAt) {
		unlocked = append(unlocked, s.fireFlag(userID, models.ConditionHolidayUpload)...)
	}
	hour := uploadedAt.Hour()
	if hour >= earlyUploadStartHour && hour < earlyUploadEndHour {
		unlocked = append(unlocked, s.fireFlag(userID, models.ConditionEarlyUpload)...)
	}
	if hour < lateUploadEndHour {
		unlocked = append(unlocked, s.fireFlag(userID, models.ConditionLateUpload)...)
	}
	return unlocked
}

// OnVideoLiked fires the giving side for the liker and the receiving side
// for the video's owner.
func (s *TriggerService) OnVideoLiked(likerID, ownerID uint) []models.Achievement {
	unlocked := s.triggerMetric(likerID, models.ConditionLikeVideo)
	if ownerID != likerID {
		unlocked = append(unlocked, s.triggerMetric(ownerID, models.ConditionReceiveLike)...)
	}
	return unlocked
}

// OnComment fires the comment ladder.
func (s *TriggerService) OnComment(userID uint) []models.Achievement {
	return s.triggerMetric(userID, models.ConditionComment)
}

// OnVideoWatched fires the watch-count and accumulated watch-time ladders.
func (s *TriggerService) OnVideoWatched(userID uint) []models.Achievement {
	unlocked := s.triggerMetric(userID, models.ConditionWatchVideo)
	unlocked = append(unlocked, s.triggerMetric(userID, models.ConditionWatchTime)...)
	return unlocked
}

// OnFollow fires the following side for the follower and the audience
// side for the followed user.
func (s *TriggerService) OnFollow(followerID, followingID uint) []models.Achievement {
	unlocked := s.triggerMetric(followerID, models.ConditionFollowUser)
	if followingID != followerID {
		unlocked = append(unlocked, s.triggerMetric(followingID, models.ConditionReceiveFollow)...)
	}
	return unlocked
}

// OnLogin advances the user's daily check-in streak and fires the streak
// ladder, plus the birthday flag when the date matches.
func (s *TriggerService) OnLogin(user *models.User, now time.Time) []models.Achievement {
	streak, err := s.advanceCheckin(user.ID, now)
	if err != nil {
		log.Printf("⚠️ Failed to advance check-in streak for user %d: %v", user.ID, err)
	}

	var unlocked []models.Achievement
	if streak > 0 {
		more, err := s.Trigger(user.ID, models.ConditionConsecutiveDays, streak)
		if err != nil {
			log.Printf("⚠️ Streak trigger failed for user %d: %v", user.ID, err)
		}
		unlocked = append(unlocked, more...)
	}

	if user.Birthday != nil &&
		user.Birthday.Month() == now.Month() && user.Birthday.Day() == now.Day() {
		unlocked = append(unlocked, s.fireFlag(user.ID, models.ConditionBirthdayLogin)...)
	}
	return unlocked
}

func (s *TriggerService) fireFlag(userID uint, cond models.ConditionType) []models.Achievement {
	unlocked, err := s.Trigger(userID, cond, 0)
	if err != nil {
		log.Printf("⚠️ Trigger %s failed for user %d: %v", cond, userID, err)
	}
	return unlocked
}

// advanceCheckin upserts the user's daily check-in row and returns the
// streak after today's login. Same calendar day twice keeps the streak,
// yesterday extends it, anything older resets it to 1.
func (s *TriggerService) advanceCheckin(userID uint, now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var checkin models.DailyCheckin
	err := s.db.Where("user_id = ?", userID).First(&checkin).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		checkin = models.DailyCheckin{UserID: userID, CheckinDate: today, ConsecutiveDays: 1}
		if err := s.db.Create(&checkin).Error; err != nil {
			return 0, err
		}
		return 1, nil
	case err != nil:
		return 0, err
	}

	last := time.Date(checkin.CheckinDate.Year(), checkin.CheckinDate.Month(), checkin.CheckinDate.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case last.Equal(today):
		// Already checked in today.
	case last.Equal(today.AddDate(0, 0, -1)):
		checkin.ConsecutiveDays++
		checkin.CheckinDate = today
	default:
		checkin.ConsecutiveDays = 1
		checkin.CheckinDate = today
	}

	if err := s.db.Save(&checkin).Error; err != nil {
		return 0, err
	}
	return checkin.ConsecutiveDays, nil
}
