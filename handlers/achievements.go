// handlers/achievements.go - Achievement Dashboard Endpoints
package handlers

import (
	"context"
	"strconv"
	"vidverse/database"
	"vidverse/middleware"
	"vidverse/models"
	"vidverse/services"

	"github.com/gofiber/fiber/v2"
)

var (
	catalogService  *services.CatalogService
	grantService    *services.GrantService
	triggerService  *services.TriggerService
	progressService *services.ProgressService
	notifyService   *services.NotificationService
	progressCache   *services.ProgressCache
	dispatcher      *services.Dispatcher
)

// InitAchievementHandlers wires the achievement services once the
// database is up. The dispatcher is shared with main so the unlock feed
// and reward subscribers see the same events.
func InitAchievementHandlers(d *services.Dispatcher, cache *services.ProgressCache) {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitAchievementHandlers")
	}

	dispatcher = d
	progressCache = cache
	catalogService = services.NewCatalogService(db)
	metrics := services.NewDBMetricProvider(db)
	grantService = services.NewGrantService(db, catalogService, dispatcher)
	triggerService = services.NewTriggerService(db, catalogService, grantService, metrics)
	progressService = services.NewProgressService(db, catalogService, metrics)
	notifyService = services.NewNotificationService(db)

	// A fresh unlock must show up on the next dashboard read.
	if progressCache != nil {
		dispatcher.Subscribe(func(ev services.UnlockEvent) {
			progressCache.Invalidate(context.Background(), ev.UserID)
		})
	}
}

// GetAchievements returns all active catalog entries.
// GET /api/achievements
func GetAchievements(c *fiber.Ctx) error {
	achievements, err := catalogService.ListActive()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch achievements",
		})
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
	})
}

// GetMyProgress returns the authenticated user's full dashboard.
// GET /api/achievements/progress
func GetMyProgress(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	ctx := c.UserContext()
	if progressCache != nil {
		if summary, ok := progressCache.Get(ctx, userID); ok {
			return c.JSON(fiber.Map{"success": true, "progress": summary, "cached": true})
		}
	}

	summary, err := progressService.Overview(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to compute progress",
		})
	}

	if progressCache != nil {
		progressCache.Set(ctx, userID, summary)
	}
	return c.JSON(fiber.Map{"success": true, "progress": summary})
}

// GetMyUnlocked returns the authenticated user's unlocks, newest first.
// GET /api/achievements/unlocked
func GetMyUnlocked(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	unlocks, err := grantService.ListUnlocked(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch unlocked achievements",
		})
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": unlocks,
		"count":        len(unlocks),
	})
}

// GetUserAchievements returns another user's displayed unlocks.
// GET /api/users/:id/achievements
func GetUserAchievements(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid user ID"})
	}

	db := database.GetDB()
	var unlocks []models.UserAchievement
	if err := db.Preload("Achievement").
		Where("user_id = ? AND is_displayed = ?", uint(targetID), true).
		Order("unlocked_at DESC").
		Find(&unlocks).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch achievements",
		})
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": unlocks,
		"count":        len(unlocks),
	})
}

// SetAchievementDisplay toggles whether one of the user's unlocks shows
// on their public profile.
// PUT /api/achievements/:id/display
func SetAchievementDisplay(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	achievementID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid achievement ID"})
	}

	var req struct {
		Displayed bool `json:"displayed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	result := db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, uint(achievementID)).
		Update("is_displayed", req.Displayed)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Achievement not unlocked"})
	}
	return c.JSON(fiber.Map{"success": true})
}
