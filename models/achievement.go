// models/achievement.go
package models

import (
	"fmt"
	"time"
)

// ConditionType is the closed tag that selects which metric and
// comparison rule governs an achievement definition. Definitions with a
// type outside this set are rejected at seed/create time, never at
// evaluation time.
type ConditionType string

const (
	ConditionRegister          ConditionType = "REGISTER"
	ConditionUploadVideo       ConditionType = "UPLOAD_VIDEO"
	ConditionLikeVideo         ConditionType = "LIKE_VIDEO"
	ConditionComment           ConditionType = "COMMENT"
	ConditionWatchVideo        ConditionType = "WATCH_VIDEO"
	ConditionWatchTime         ConditionType = "WATCH_TIME"
	ConditionConsecutiveDays   ConditionType = "CONSECUTIVE_DAYS"
	ConditionReceiveLike       ConditionType = "RECEIVE_LIKE"
	ConditionFollowUser        ConditionType = "FOLLOW_USER"
	ConditionReceiveFollow     ConditionType = "RECEIVE_FOLLOW"
	ConditionCategoryDiversity ConditionType = "CATEGORY_DIVERSITY"
	ConditionShortVideo        ConditionType = "SHORT_VIDEO"
	ConditionLongVideo         ConditionType = "LONG_VIDEO"
	ConditionMarathonVideo     ConditionType = "MARATHON_VIDEO"
	ConditionWeekendUpload     ConditionType = "WEEKEND_UPLOAD"
	ConditionHolidayUpload     ConditionType = "HOLIDAY_UPLOAD"
	ConditionEarlyUpload       ConditionType = "EARLY_UPLOAD"
	ConditionLateUpload        ConditionType = "LATE_UPLOAD"
	ConditionBirthdayLogin     ConditionType = "BIRTHDAY_LOGIN"
)

// flagConditions match on the first occurrence of their action alone;
// no threshold comparison is performed for them.
var flagConditions = map[ConditionType]bool{
	ConditionRegister:      true,
	ConditionHolidayUpload: true,
	ConditionEarlyUpload:   true,
	ConditionLateUpload:    true,
	ConditionBirthdayLogin: true,
}

var knownConditions = map[ConditionType]bool{
	ConditionRegister:          true,
	ConditionUploadVideo:       true,
	ConditionLikeVideo:         true,
	ConditionComment:           true,
	ConditionWatchVideo:        true,
	ConditionWatchTime:         true,
	ConditionConsecutiveDays:   true,
	ConditionReceiveLike:       true,
	ConditionFollowUser:        true,
	ConditionReceiveFollow:     true,
	ConditionCategoryDiversity: true,
	ConditionShortVideo:        true,
	ConditionLongVideo:         true,
	ConditionMarathonVideo:     true,
	ConditionWeekendUpload:     true,
	ConditionHolidayUpload:     true,
	ConditionEarlyUpload:       true,
	ConditionLateUpload:        true,
	ConditionBirthdayLogin:     true,
}

// IsValid reports whether t is one of the supported condition types.
func (t ConditionType) IsValid() bool {
	return knownConditions[t]
}

// IsFlag reports whether t matches on action occurrence alone.
func (t ConditionType) IsFlag() bool {
	return flagConditions[t]
}

// Achievement categories
const (
	CategoryBasic     = "basic"
	CategoryUpload    = "upload"
	CategorySocial    = "social"
	CategoryWatch     = "watch"
	CategoryMilestone = "milestone"
	CategorySpecial   = "special"
)

// Achievement rarities
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Achievement is one unlockable catalog entry: a condition plus a reward.
type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `gorm:"not null" json:"description"`
	Icon        string `json:"icon"`
	Category    string `gorm:"not null;index" json:"category"`
	Rarity      string `gorm:"not null" json:"rarity"`

	// Reward
	Points int `gorm:"default:0" json:"points"`

	// Unlock condition
	ConditionType  ConditionType `gorm:"not null;index" json:"condition_type"`
	ConditionValue int64         `gorm:"default:0" json:"condition_value"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate rejects definitions the evaluator could not handle. Called at
// seed time and on every admin create/update so the evaluation hot path
// stays total.
func (a *Achievement) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("achievement name is required")
	}
	if !a.ConditionType.IsValid() {
		return fmt.Errorf("unknown condition type %q for achievement %q", a.ConditionType, a.Name)
	}
	if !a.ConditionType.IsFlag() && a.ConditionValue <= 0 {
		return fmt.Errorf("achievement %q needs a positive condition value", a.Name)
	}
	return nil
}

// UserAchievement is the persisted proof that a user satisfied a
// definition. The composite unique index on (user_id, achievement_id) is
// the only serialization point of the subsystem: every grant path
// funnels through it, and a losing concurrent insert is treated as
// "already unlocked", never as an error.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	Progress      float64   `gorm:"default:1" json:"progress"`
	IsDisplayed   bool      `gorm:"default:true" json:"is_displayed"`
	Notified      bool      `gorm:"default:false" json:"notified"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
