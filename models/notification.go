// models/notification.go
package models

import (
	"time"
)

// Notification types
const (
	NotificationAchievement = "ACHIEVEMENT"
)

// Notification is a best-effort message written after an unlock commits.
// Delivery beyond this row is someone else's problem; a failed write
// never rolls the unlock back.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	Type        string    `json:"type" gorm:"not null;size:50;index"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	Content     string    `json:"content" gorm:"type:text"`
	RelatedID   uint      `json:"related_id"`
	RelatedType string    `json:"related_type" gorm:"size:50"`
	IsRead      bool      `json:"is_read" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
