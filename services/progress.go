// services/progress.go - Progress Computation
package services

import (
	"fmt"
	"time"

	"vidverse/models"

	"gorm.io/gorm"
)

// AchievementProgress is one row of a user's dashboard: a definition plus
// how far along the user is.
type AchievementProgress struct {
	Achievement models.Achievement `json:"achievement"`
	Unlocked    bool               `json:"unlocked"`
	UnlockedAt  *time.Time         `json:"unlocked_at,omitempty"`
	Current     int64              `json:"current"`
	Target      int64              `json:"target"`
	Percent     float64            `json:"percent"`
	Description string             `json:"description"`
}

// ProgressSummary aggregates a user's standing across the whole catalog.
type ProgressSummary struct {
	Total        int                   `json:"total"`
	Unlocked     int                   `json:"unlocked"`
	PointsEarned int                   `json:"points_earned"`
	Achievements []AchievementProgress `json:"achievements"`
}

type ProgressService struct {
	db      *gorm.DB
	catalog *CatalogService
	metrics MetricProvider
}

func NewProgressService(db *gorm.DB, catalog *CatalogService, metrics MetricProvider) *ProgressService {
	return &ProgressService{db: db, catalog: catalog, metrics: metrics}
}

// Percent computes a 0..100 progress figure. Unlocked is always 100
// regardless of what the metric says now (likes can be withdrawn, videos
// deleted). Flag conditions have no measurable ramp, so they sit at 0
// until the moment they unlock.
func (s *ProgressService) Percent(userID uint, achievement models.Achievement, unlocked bool) float64 {
	if unlocked {
		return 100
	}
	if achievement.ConditionType.IsFlag() || achievement.ConditionValue <= 0 {
		return 0
	}
	value, err := s.metrics.Metric(userID, achievement.ConditionType)
	if err != nil {
		return 0
	}
	return percentOf(value, achievement.ConditionValue)
}

func percentOf(current, target int64) float64 {
	if target <= 0 {
		return 0
	}
	percent := float64(current) / float64(target) * 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

// describeProgress renders a short "current/target" line per condition
// type, in the words the dashboard shows.
func describeProgress(cond models.ConditionType, current, target int64, unlocked bool) string {
	switch cond {
	case models.ConditionUploadVideo:
		return fmt.Sprintf("Uploaded %d/%d videos", current, target)
	case models.ConditionLikeVideo:
		return fmt.Sprintf("Liked %d/%d videos", current, target)
	case models.ConditionComment:
		return fmt.Sprintf("Posted %d/%d comments", current, target)
	case models.ConditionWatchVideo:
		return fmt.Sprintf("Watched %d/%d videos", current, target)
	case models.ConditionWatchTime:
		return fmt.Sprintf("Watched %d/%d hours", current/3600, target/3600)
	case models.ConditionReceiveLike:
		return fmt.Sprintf("Received %d/%d likes", current, target)
	case models.ConditionFollowUser:
		return fmt.Sprintf("Followed %d/%d users", current, target)
	case models.ConditionReceiveFollow:
		return fmt.Sprintf("Gained %d/%d followers", current, target)
	case models.ConditionConsecutiveDays:
		return fmt.Sprintf("Checked in %d/%d days in a row", current, target)
	case models.ConditionCategoryDiversity:
		return fmt.Sprintf("Uploaded in %d/%d categories", current, target)
	case models.ConditionShortVideo:
		return fmt.Sprintf("Uploaded %d/%d short videos", current, target)
	case models.ConditionLongVideo:
		return fmt.Sprintf("Uploaded %d/%d long videos", current, target)
	case models.ConditionMarathonVideo:
		return fmt.Sprintf("Uploaded %d/%d marathon videos", current, target)
	case models.ConditionWeekendUpload:
		return fmt.Sprintf("Uploaded %d/%d weekend videos", current, target)
	case models.ConditionRegister:
		if unlocked {
			return "Completed registration"
		}
		return "Register an account"
	default:
		// One-off flags have no ramp to describe.
		if unlocked {
			return "Unlocked"
		}
		return "Not yet earned"
	}
}

// Overview builds the full dashboard for one user: every active
// definition with its unlock state and progress.
func (s *ProgressService) Overview(userID uint) (*ProgressSummary, error) {
	achievements, err := s.catalog.ListActive()
	if err != nil {
		return nil, err
	}

	var unlocks []models.UserAchievement
	if err := s.db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	unlockedAt := make(map[uint]time.Time, len(unlocks))
	for _, ua := range unlocks {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	summary := &ProgressSummary{
		Total:        len(achievements),
		Achievements: make([]AchievementProgress, 0, len(achievements)),
	}

	for _, a := range achievements {
		at, unlocked := unlockedAt[a.ID]
		row := AchievementProgress{
			Achievement: a,
			Unlocked:    unlocked,
			Target:      a.ConditionValue,
		}
		if unlocked {
			t := at
			row.UnlockedAt = &t
			row.Percent = 100
			row.Current = a.ConditionValue
			summary.Unlocked++
			summary.PointsEarned += a.Points
		} else if !a.ConditionType.IsFlag() {
			// One metric read serves both the counter and the percent.
			if value, err := s.metrics.Metric(userID, a.ConditionType); err == nil {
				row.Current = value
				row.Percent = percentOf(value, a.ConditionValue)
			}
		}
		row.Description = describeProgress(a.ConditionType, row.Current, row.Target, unlocked)
		summary.Achievements = append(summary.Achievements, row)
	}
	return summary, nil
}
