// services/notify.go - Notifications
package services

import (
	"fmt"

	"vidverse/models"

	"gorm.io/gorm"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// rarityEmoji decorates unlock notifications by rarity tier.
func rarityEmoji(rarity string) string {
	switch rarity {
	case models.RarityUncommon:
		return "🥈"
	case models.RarityRare:
		return "🥇"
	case models.RarityEpic:
		return "💎"
	case models.RarityLegendary:
		return "👑"
	default:
		return "🥉"
	}
}

// NotifyUnlock writes an in-app notification for a fresh unlock.
func (s *NotificationService) NotifyUnlock(userID uint, achievement *models.Achievement) error {
	notification := models.Notification{
		UserID:      userID,
		Type:        models.NotificationAchievement,
		Title:       fmt.Sprintf("%s Achievement unlocked: %s", rarityEmoji(achievement.Rarity), achievement.Name),
		Content:     fmt.Sprintf("%s (+%d points)", achievement.Description, achievement.Points),
		RelatedID:   achievement.ID,
		RelatedType: "achievement",
	}
	return s.db.Create(&notification).Error
}

// ListUnread returns a user's unread notifications, newest first.
func (s *NotificationService) ListUnread(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags a single notification as read.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}
