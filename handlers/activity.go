// handlers/activity.go - Activity Recording Endpoints
//
// These endpoints stand in for the wider video platform: each one
// persists the activity row and then fires the matching achievement
// triggers. Trigger failures are already contained inside the service,
// so the activity write is never lost to an achievement problem.
package handlers

import (
	"strconv"
	"time"
	"vidverse/database"
	"vidverse/middleware"
	"vidverse/models"

	"github.com/gofiber/fiber/v2"
)

type UploadVideoRequest struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type WatchRequest struct {
	WatchTimeSeconds int64 `json:"watch_time_seconds"`
}

// UploadVideo records a new video and fires the upload triggers.
// POST /api/videos
func UploadVideo(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req UploadVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Title required"})
	}

	db := database.GetDB()
	video := models.Video{
		UserID:          userID,
		Title:           req.Title,
		Category:        req.Category,
		DurationSeconds: req.DurationSeconds,
		CreatedAt:       time.Now(),
	}
	if err := db.Create(&video).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save video"})
	}

	unlocked := triggerService.OnVideoUploaded(userID, video.DurationSeconds, video.CreatedAt)

	return c.Status(201).JSON(fiber.Map{
		"success":          true,
		"video":            video,
		"new_achievements": unlocked,
	})
}

// LikeVideo records a like and fires both sides of the like triggers.
// POST /api/videos/:id/like
func LikeVideo(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	videoID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid video ID"})
	}

	db := database.GetDB()
	var video models.Video
	if err := db.First(&video, uint(videoID)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Video not found"})
	}

	var existing models.VideoLike
	if err := db.Where("user_id = ? AND video_id = ?", userID, video.ID).First(&existing).Error; err == nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Already liked"})
	}

	like := models.VideoLike{UserID: userID, VideoID: video.ID, CreatedAt: time.Now()}
	if err := db.Create(&like).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save like"})
	}

	unlocked := triggerService.OnVideoLiked(userID, video.UserID)

	return c.JSON(fiber.Map{
		"success":          true,
		"new_achievements": unlocked,
	})
}

// CommentVideo records a comment and fires the comment trigger.
// POST /api/videos/:id/comments
func CommentVideo(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	videoID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid video ID"})
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil || req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Comment content required"})
	}

	db := database.GetDB()
	var video models.Video
	if err := db.First(&video, uint(videoID)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Video not found"})
	}

	comment := models.Comment{
		UserID:    userID,
		VideoID:   video.ID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&comment).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save comment"})
	}

	unlocked := triggerService.OnComment(userID)

	return c.Status(201).JSON(fiber.Map{
		"success":          true,
		"comment":          comment,
		"new_achievements": unlocked,
	})
}

// WatchVideo records a viewing session and fires the watch triggers.
// POST /api/videos/:id/watch
func WatchVideo(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	videoID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid video ID"})
	}

	var req WatchRequest
	_ = c.BodyParser(&req)
	if req.WatchTimeSeconds < 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid watch time"})
	}

	db := database.GetDB()
	var video models.Video
	if err := db.First(&video, uint(videoID)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Video not found"})
	}

	view := models.ViewHistory{
		UserID:           userID,
		VideoID:          video.ID,
		WatchTimeSeconds: req.WatchTimeSeconds,
		CreatedAt:        time.Now(),
	}
	if err := db.Create(&view).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save view"})
	}

	unlocked := triggerService.OnVideoWatched(userID)

	return c.JSON(fiber.Map{
		"success":          true,
		"new_achievements": unlocked,
	})
}

// FollowUser records a follow and fires both sides of the follow triggers.
// POST /api/users/:id/follow
func FollowUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid user ID"})
	}
	if uint(targetID) == userID {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Cannot follow yourself"})
	}

	db := database.GetDB()
	var target models.User
	if err := db.First(&target, uint(targetID)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "User not found"})
	}

	var existing models.UserFollow
	if err := db.Where("follower_id = ? AND following_id = ?", userID, target.ID).First(&existing).Error; err == nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Already following"})
	}

	follow := models.UserFollow{FollowerID: userID, FollowingID: target.ID, CreatedAt: time.Now()}
	if err := db.Create(&follow).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save follow"})
	}

	unlocked := triggerService.OnFollow(userID, target.ID)

	return c.JSON(fiber.Map{
		"success":          true,
		"new_achievements": unlocked,
	})
}
