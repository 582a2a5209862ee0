package admin

import (
	"net/http"
	"strconv"
	"vidverse/database"
	"vidverse/models"
	"vidverse/services"
	"vidverse/utils"
)

var (
	catalogService  *services.CatalogService
	grantsService   *services.GrantService
	backfillService *services.BackfillService
)

// InitAchievementAdmin wires the catalog, grant and backfill services
// for the admin surface. The backfill shares the public grant path, so
// its unlocks go through the same dispatcher and side effects.
func InitAchievementAdmin(catalog *services.CatalogService, grants *services.GrantService, backfill *services.BackfillService) {
	catalogService = catalog
	grantsService = grants
	backfillService = backfill
}

// GetAchievements returns the full catalog, inactive entries included
func GetAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := catalogService.ListAll()
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Failed to fetch achievements")
		return
	}
	utils.JSON(w, http.StatusOK, achievements)
}

// CreateAchievement creates a new achievement definition
func CreateAchievement(w http.ResponseWriter, r *http.Request) {
	var achievement models.Achievement
	if err := utils.ParseJSON(r, &achievement); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := catalogService.Create(&achievement); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, achievement)
}

// UpdateAchievement updates an existing achievement definition
func UpdateAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid achievement ID")
		return
	}

	achievement, err := catalogService.FindByID(uint(id))
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "Achievement not found")
		return
	}

	if err := utils.ParseJSON(r, achievement); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	achievement.ID = uint(id)

	if err := catalogService.Update(achievement); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, achievement)
}

// DeactivateAchievement hides an achievement from future evaluation.
// Definitions are never hard-deleted: unlock rows reference them.
func DeactivateAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid achievement ID")
		return
	}

	if err := catalogService.Deactivate(uint(id)); err != nil {
		utils.JSONError(w, http.StatusNotFound, "Achievement not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Achievement deactivated",
	})
}

// DetectUser runs retroactive detection for one user
// POST /api/admin/achievements/detect/{id}
func DetectUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}

	granted, err := backfillService.DetectUser(uint(id))
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Detection failed")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user_id": uint(id),
		"granted": granted,
	})
}

// DetectAll starts a background sweep over every user
// POST /api/admin/achievements/detect-all
func DetectAll(w http.ResponseWriter, r *http.Request) {
	backfillService.RunAsync()
	utils.JSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Backfill started",
	})
}
