// services/level.go - Leveling
package services

import (
	"fmt"
	"log"
	"math"

	"vidverse/models"

	"gorm.io/gorm"
)

// LevelService applies experience rewards and level-ups. Unlock side
// effects call it best-effort; a failure here never undoes a grant.
type LevelService struct {
	db *gorm.DB
}

func NewLevelService(db *gorm.DB) *LevelService {
	return &LevelService{db: db}
}

type LevelResult struct {
	UserID       uint `json:"user_id"`
	XPAwarded    int  `json:"xp_awarded"`
	PointsEarned int  `json:"points_earned"`
	Level        int  `json:"level"`
	LevelsGained int  `json:"levels_gained"`
	LeveledUp    bool `json:"leveled_up"`
}

// AddExperience credits xp and points to a user and applies any level-ups.
// Each level gained pays a bonus on top of the points earned directly.
func (s *LevelService) AddExperience(userID uint, xp, points int, reason string) (*LevelResult, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	user.XP += xp
	user.Points += points

	levelsGained := 0
	for {
		xpNeeded := XPForLevel(user.Level + 1)
		if user.XP >= xpNeeded {
			user.Level++
			user.XP -= xpNeeded
			levelsGained++
			levelReward := 50 + (user.Level * 10)
			user.Points += levelReward
		} else {
			break
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to save user %d: %w", userID, err)
	}

	if levelsGained > 0 {
		log.Printf("⬆️  User %d reached level %d (%s)", userID, user.Level, reason)
	}

	return &LevelResult{
		UserID:       userID,
		XPAwarded:    xp,
		PointsEarned: user.Points,
		Level:        user.Level,
		LevelsGained: levelsGained,
		LeveledUp:    levelsGained > 0,
	}, nil
}

// XPForLevel returns the experience required to advance into the given level.
func XPForLevel(level int) int {
	return int(100 * math.Pow(float64(level), 1.5))
}
