// handlers/notifications.go - Unlock Notification Endpoints
package handlers

import (
	"strconv"
	"vidverse/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns the authenticated user's unread notifications.
// GET /api/notifications
func GetNotifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	notifications, err := notifyService.ListUnread(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch notifications"})
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkNotificationRead marks one notification as read.
// PUT /api/notifications/:id/read
func MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	notificationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid notification ID"})
	}

	if err := notifyService.MarkRead(userID, uint(notificationID)); err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to mark as read"})
	}
	return c.JSON(fiber.Map{"success": true})
}
