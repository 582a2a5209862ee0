// services/grant.go - Idempotent Unlock Grants
package services

import (
	"errors"
	"log"
	"time"

	"vidverse/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantService owns the one write path for unlocks. All trigger, backfill
// and admin flows call Grant, so idempotency is enforced in exactly one
// place: the composite unique index on (user_id, achievement_id).
type GrantService struct {
	db         *gorm.DB
	catalog    *CatalogService
	dispatcher *Dispatcher
}

func NewGrantService(db *gorm.DB, catalog *CatalogService, dispatcher *Dispatcher) *GrantService {
	return &GrantService{db: db, catalog: catalog, dispatcher: dispatcher}
}

// Grant records an unlock. Returns true only for the call that actually
// created the row; duplicates and lost races both return (false, nil).
// Side effects are published after the insert commits, so an unlock can
// never be rolled back by a failing reward.
func (s *GrantService) Grant(userID uint, achievement *models.Achievement) (bool, error) {
	record := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
		UnlockedAt:    time.Now(),
		Progress:      1,
		IsDisplayed:   true,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&record)

	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	log.Printf("🏆 User %d unlocked achievement %q (+%d points)", userID, achievement.Name, achievement.Points)

	if s.dispatcher != nil {
		s.dispatcher.Publish(UnlockEvent{
			UserID:      userID,
			Achievement: *achievement,
			UnlockedAt:  record.UnlockedAt,
		})
	}
	return true, nil
}

// GrantByID loads the definition and grants it.
func (s *GrantService) GrantByID(userID, achievementID uint) (bool, error) {
	achievement, err := s.catalog.FindByID(achievementID)
	if err != nil {
		return false, err
	}
	return s.Grant(userID, achievement)
}

// GrantByName grants a definition looked up by name. A missing name is a
// no-op rather than an error, so callers can fire-and-forget special
// grants that may not exist in every deployment's catalog.
func (s *GrantService) GrantByName(userID uint, name string) (bool, error) {
	achievement, err := s.catalog.FindByName(name)
	if errors.Is(err, ErrAchievementNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.Grant(userID, achievement)
}

// Unlocked reports whether the user already holds the achievement.
func (s *GrantService) Unlocked(userID, achievementID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	return count > 0, err
}

// UnlockedSet returns the ids of every achievement the user holds, as
// one read. Trigger evaluation uses it to keep repeat actions off the
// write path.
func (s *GrantService) UnlockedSet(userID uint) (map[uint]struct{}, error) {
	var ids []uint
	err := s.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// CountUnlocked returns how many achievements the user holds.
func (s *GrantService) CountUnlocked(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// UnlockCounts returns per-user unlock totals for a batch of users, for
// listings that show how decorated each account is. Users with no
// unlocks are simply absent from the map.
func (s *GrantService) UnlockCounts(userIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		UserID uint
		Total  int64
	}
	err := s.db.Model(&models.UserAchievement{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

// ListUnlocked returns a user's unlocks with definitions attached,
// newest first.
func (s *GrantService) ListUnlocked(userID uint) ([]models.UserAchievement, error) {
	var unlocks []models.UserAchievement
	err := s.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&unlocks).Error
	return unlocks, err
}

// WireUnlockRewards subscribes the standard unlock side effects: an
// experience award and an in-app notification. Both are best-effort.
func WireUnlockRewards(d *Dispatcher, levels *LevelService, notifications *NotificationService) {
	d.Subscribe(func(ev UnlockEvent) {
		if _, err := levels.AddExperience(ev.UserID, ev.Achievement.Points*2, ev.Achievement.Points, "achievement: "+ev.Achievement.Name); err != nil {
			log.Printf("⚠️ Failed to award XP for unlock (user %d, achievement %d): %v", ev.UserID, ev.Achievement.ID, err)
		}
		if err := notifications.NotifyUnlock(ev.UserID, &ev.Achievement); err != nil {
			log.Printf("⚠️ Failed to write unlock notification (user %d, achievement %d): %v", ev.UserID, ev.Achievement.ID, err)
		}
	})
}
