// handlers/leaderboard.go (served from the ops net/http server)
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"vidverse/database"
	"vidverse/models"
)

// writeJSON is a small helper for this file.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// GetLeaderboardHTTP returns the global achievement leaderboard
// GET /api/leaderboard?category=points&limit=100&offset=0
func GetLeaderboardHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = "points"
	}
	limit := clampInt(parseIntDefault(q.Get("limit"), 100), 1, 100)
	offset := maxInt(parseIntDefault(q.Get("offset"), 0), 0)

	db := database.GetDB()

	if category == "achievements" {
		// Rank by unlock count, joined from user_achievements.
		type CountEntry struct {
			UserID       uint   `json:"user_id"`
			Username     string `json:"username"`
			Level        int    `json:"level"`
			Points       int    `json:"points"`
			Achievements int64  `json:"achievements"`
		}
		var entries []CountEntry
		db.Raw(`
			SELECT
				users.id AS user_id,
				users.username,
				users.level,
				users.points,
				COUNT(user_achievements.id) AS achievements
			FROM users
			LEFT JOIN user_achievements ON user_achievements.user_id = users.id
			WHERE users.is_guest = false
			GROUP BY users.id, users.username, users.level, users.points
			ORDER BY achievements DESC, users.points DESC
			LIMIT ? OFFSET ?
		`, limit, offset).Scan(&entries)

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"entries":  entries,
			"category": category,
			"limit":    limit,
			"offset":   offset,
		})
		return
	}

	var orderBy string
	switch category {
	case "level":
		orderBy = "level DESC, xp DESC"
	case "xp":
		orderBy = "xp DESC, level DESC"
	default:
		category = "points"
		orderBy = "points DESC, level DESC"
	}

	var users []models.User
	if err := db.Where("is_guest = ?", false).
		Order(orderBy).
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "Failed to fetch leaderboard",
		})
		return
	}

	// Remove sensitive data
	for i := range users {
		users[i].Password = ""
		users[i].Email = nil
	}

	var total int64
	db.Model(&models.User{}).Where("is_guest = ?", false).Count(&total)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"users":    users,
		"category": category,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetUserRankHTTP returns a user's rank in the leaderboard
// GET /api/leaderboard/user/{id}?category=points
func GetUserRankHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/leaderboard/user/")
	userID := path
	if userID == "" || strings.Contains(userID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing user id"})
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "points"
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("id = ? OR username = ?", userID, userID).First(&user).Error; err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}

	var rank int64
	switch category {
	case "level":
		db.Raw("SELECT COUNT(*) + 1 FROM users WHERE is_guest = false AND (level > ? OR (level = ? AND xp > ?))",
			user.Level, user.Level, user.XP).Scan(&rank)
	case "xp":
		db.Raw("SELECT COUNT(*) + 1 FROM users WHERE is_guest = false AND (xp > ? OR (xp = ? AND level > ?))",
			user.XP, user.XP, user.Level).Scan(&rank)
	case "achievements":
		db.Raw(`
			SELECT COUNT(*) + 1 FROM (
				SELECT u.id, COUNT(ua.id) AS n
				FROM users u
				LEFT JOIN user_achievements ua ON ua.user_id = u.id
				WHERE u.is_guest = false
				GROUP BY u.id
			) counts
			WHERE counts.n > (SELECT COUNT(*) FROM user_achievements WHERE user_id = ?)
		`, user.ID).Scan(&rank)
	default:
		category = "points"
		db.Raw("SELECT COUNT(*) + 1 FROM users WHERE is_guest = false AND (points > ? OR (points = ? AND level > ?))",
			user.Points, user.Points, user.Level).Scan(&rank)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"user_id":  user.ID,
		"username": user.Username,
		"rank":     rank,
		"category": category,
	})
}

// helpers
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
