// models/activity.go - Metric source tables
//
// These tables are owned by the surrounding video/social subsystems; the
// achievement engine only reads them, through the metric provider, as
// independent non-transactional counts. The rows kept here are the
// minimum the provider needs.
package models

import (
	"time"
)

// Duration buckets for the short/long/marathon conditions, in seconds.
const (
	ShortVideoMaxSeconds    int64 = 300
	LongVideoMinSeconds     int64 = 1800
	MarathonVideoMinSeconds int64 = 3600
)

// Video represents an uploaded video.
type Video struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	User            *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Title           string    `json:"title" gorm:"not null;size:200"`
	Category        string    `json:"category" gorm:"size:50;index"`
	DurationSeconds int64     `json:"duration_seconds" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
}

// VideoLike records one user liking one video.
type VideoLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	VideoID   uint      `json:"video_id" gorm:"not null;index"`
	Video     *Video    `json:"video,omitempty" gorm:"foreignKey:VideoID"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment left on a video.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	VideoID   uint      `json:"video_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewHistory accumulates watch time per user and video.
type ViewHistory struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"not null;index"`
	VideoID          uint      `json:"video_id" gorm:"not null;index"`
	WatchTimeSeconds int64     `json:"watch_time_seconds" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserFollow records one user following another.
type UserFollow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;index"`
	FollowingID uint      `json:"following_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyCheckin keeps the login streak counter the CONSECUTIVE_DAYS
// condition reads. Maintained by the login path.
type DailyCheckin struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	CheckinDate     time.Time `json:"checkin_date"`
	ConsecutiveDays int64     `json:"consecutive_days" gorm:"default:0"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

func (VideoLike) TableName() string {
	return "video_likes"
}

func (Comment) TableName() string {
	return "comments"
}

func (ViewHistory) TableName() string {
	return "view_histories"
}

func (UserFollow) TableName() string {
	return "user_follows"
}

func (DailyCheckin) TableName() string {
	return "daily_checkins"
}
