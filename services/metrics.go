// services/metrics.go - Metric Provider
package services

import (
	"errors"
	"time"

	"vidverse/models"

	"gorm.io/gorm"
)

// ErrMetricUnavailable is returned for condition types whose state cannot
// be recomputed from stored data. Flag conditions like EARLY_UPLOAD depend
// on the moment an action happened and are only grantable at trigger time.
var ErrMetricUnavailable = errors.New("metric unavailable for condition type")

// MetricProvider resolves a user's current value for a condition type.
// Backfill and progress both read through this interface.
type MetricProvider interface {
	Metric(userID uint, cond models.ConditionType) (int64, error)
}

type DBMetricProvider struct {
	db *gorm.DB
}

func NewDBMetricProvider(db *gorm.DB) *DBMetricProvider {
	return &DBMetricProvider{db: db}
}

func (p *DBMetricProvider) Metric(userID uint, cond models.ConditionType) (int64, error) {
	switch cond {
	case models.ConditionUploadVideo:
		return p.count(p.db.Model(&models.Video{}).Where("user_id = ?", userID))

	case models.ConditionShortVideo:
		return p.count(p.db.Model(&models.Video{}).
			Where("user_id = ? AND duration_seconds > 0 AND duration_seconds < ?", userID, models.ShortVideoMaxSeconds))

	case models.ConditionLongVideo:
		return p.count(p.db.Model(&models.Video{}).
			Where("user_id = ? AND duration_seconds > ?", userID, models.LongVideoMinSeconds))

	case models.ConditionMarathonVideo:
		return p.count(p.db.Model(&models.Video{}).
			Where("user_id = ? AND duration_seconds > ?", userID, models.MarathonVideoMinSeconds))

	case models.ConditionLikeVideo:
		return p.count(p.db.Model(&models.VideoLike{}).Where("user_id = ?", userID))

	case models.ConditionReceiveLike:
		return p.count(p.db.Model(&models.VideoLike{}).
			Joins("JOIN videos ON videos.id = video_likes.video_id").
			Where("videos.user_id = ?", userID))

	case models.ConditionComment:
		return p.count(p.db.Model(&models.Comment{}).Where("user_id = ?", userID))

	case models.ConditionWatchVideo:
		return p.count(p.db.Model(&models.ViewHistory{}).Where("user_id = ?", userID))

	case models.ConditionWatchTime:
		var total int64
		err := p.db.Model(&models.ViewHistory{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(watch_time_seconds), 0)").
			Scan(&total).Error
		return total, err

	case models.ConditionFollowUser:
		return p.count(p.db.Model(&models.UserFollow{}).Where("follower_id = ?", userID))

	case models.ConditionReceiveFollow:
		return p.count(p.db.Model(&models.UserFollow{}).Where("following_id = ?", userID))

	case models.ConditionConsecutiveDays:
		var checkin models.DailyCheckin
		err := p.db.Where("user_id = ?", userID).First(&checkin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return checkin.ConsecutiveDays, nil

	case models.ConditionCategoryDiversity:
		var n int64
		err := p.db.Model(&models.Video{}).
			Where("user_id = ? AND category <> ''", userID).
			Distinct("category").
			Count(&n).Error
		return n, err

	case models.ConditionWeekendUpload:
		// Day-of-week SQL differs across drivers, so count in Go.
		var stamps []time.Time
		err := p.db.Model(&models.Video{}).
			Where("user_id = ?", userID).
			Pluck("created_at", &stamps).Error
		if err != nil {
			return 0, err
		}
		var n int64
		for _, t := range stamps {
			switch t.Weekday() {
			case time.Saturday, time.Sunday:
				n++
			}
		}
		return n, nil
	}

	return 0, ErrMetricUnavailable
}

func (p *DBMetricProvider) count(q *gorm.DB) (int64, error) {
	var n int64
	err := q.Count(&n).Error
	return n, err
}
