// services/catalog.go - Achievement Catalog
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"vidverse/models"

	"gorm.io/gorm"
)

// ErrAchievementNotFound is returned by catalog lookups when no
// definition matches. Direct-grant call sites treat it as a no-op, not a
// fatal error.
var ErrAchievementNotFound = errors.New("achievement not found")

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Seed inserts the default achievement set if the catalog is empty.
// Safe to call on every startup. Every definition is validated before
// anything is written, so one bad entry aborts the whole seed instead of
// leaving an unevaluable definition behind.
func (s *CatalogService) Seed() error {
	var count int64
	if err := s.db.Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Achievement catalog already seeded (%d definitions)", count)
		return nil
	}

	defaults := defaultAchievements()
	for i := range defaults {
		if err := defaults[i].Validate(); err != nil {
			return fmt.Errorf("seed aborted: %w", err)
		}
	}

	if err := s.db.Create(&defaults).Error; err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}

	log.Printf("✅ Seeded %d default achievements", len(defaults))
	return nil
}

// ListActive returns all active definitions.
func (s *CatalogService) ListActive() ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := s.db.Where("is_active = ?", true).Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

// ListActiveByCondition returns active definitions for one condition type.
func (s *CatalogService) ListActiveByCondition(cond models.ConditionType) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := s.db.Where("is_active = ? AND condition_type = ?", true, cond).
		Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

// ListAll returns the full catalog, inactive definitions included.
func (s *CatalogService) ListAll() ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := s.db.Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (s *CatalogService) FindByID(id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := s.db.First(&achievement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAchievementNotFound
		}
		return nil, err
	}
	return &achievement, nil
}

func (s *CatalogService) FindByName(name string) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := s.db.Where("name = ?", name).First(&achievement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAchievementNotFound
		}
		return nil, err
	}
	return &achievement, nil
}

// Create validates and inserts an admin-supplied definition. Unknown
// condition types are rejected here, at data-entry time.
func (s *CatalogService) Create(achievement *models.Achievement) error {
	if err := achievement.Validate(); err != nil {
		return err
	}
	return s.db.Create(achievement).Error
}

// Update validates and saves changes to an existing definition.
func (s *CatalogService) Update(achievement *models.Achievement) error {
	if err := achievement.Validate(); err != nil {
		return err
	}
	return s.db.Save(achievement).Error
}

// Deactivate hides a definition from future evaluation without touching
// existing unlock records. Definitions referenced by unlocks are never
// deleted.
func (s *CatalogService) Deactivate(id uint) error {
	result := s.db.Model(&models.Achievement{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAchievementNotFound
	}
	return nil
}

func defaultAchievements() []models.Achievement {
	now := time.Now()
	mk := func(name, description, icon, category, rarity string, points int, cond models.ConditionType, value int64) models.Achievement {
		return models.Achievement{
			Name:           name,
			Description:    description,
			Icon:           icon,
			Category:       category,
			Rarity:         rarity,
			Points:         points,
			ConditionType:  cond,
			ConditionValue: value,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	return []models.Achievement{
		// Basic
		mk("Welcome Aboard", "Complete registration", "fa-user-plus", models.CategoryBasic, models.RarityCommon, 10, models.ConditionRegister, 0),
		mk("Persistent", "Log in 7 days in a row", "fa-calendar-check", models.CategoryBasic, models.RarityCommon, 20, models.ConditionConsecutiveDays, 7),
		mk("Loyal Viewer", "Log in 30 days in a row", "fa-calendar-alt", models.CategoryBasic, models.RarityUncommon, 50, models.ConditionConsecutiveDays, 30),
		mk("Die-hard Fan", "Log in 100 days in a row", "fa-calendar-plus", models.CategoryBasic, models.RarityRare, 150, models.ConditionConsecutiveDays, 100),
		mk("Super User", "Log in 365 days in a row", "fa-calendar-star", models.CategoryBasic, models.RarityLegendary, 500, models.ConditionConsecutiveDays, 365),

		// Upload
		mk("First Upload", "Upload your first video", "fa-upload", models.CategoryUpload, models.RarityCommon, 10, models.ConditionUploadVideo, 1),
		mk("Junior Creator", "Upload 5 videos", "fa-video", models.CategoryUpload, models.RarityCommon, 25, models.ConditionUploadVideo, 5),
		mk("Active Creator", "Upload 10 videos", "fa-film", models.CategoryUpload, models.RarityUncommon, 50, models.ConditionUploadVideo, 10),
		mk("Seasoned Creator", "Upload 25 videos", "fa-camera", models.CategoryUpload, models.RarityRare, 100, models.ConditionUploadVideo, 25),
		mk("Pro Creator", "Upload 50 videos", "fa-broadcast-tower", models.CategoryUpload, models.RarityEpic, 200, models.ConditionUploadVideo, 50),
		mk("Legendary Creator", "Upload 100 videos", "fa-crown", models.CategoryUpload, models.RarityLegendary, 500, models.ConditionUploadVideo, 100),
		mk("Short and Sweet", "Upload 10 videos under five minutes", "fa-bolt", models.CategoryUpload, models.RarityUncommon, 40, models.ConditionShortVideo, 10),
		mk("Feature Length", "Upload 5 videos over thirty minutes", "fa-hourglass-half", models.CategoryUpload, models.RarityRare, 75, models.ConditionLongVideo, 5),
		mk("Marathon Maker", "Upload a video over an hour long", "fa-infinity", models.CategoryUpload, models.RarityEpic, 150, models.ConditionMarathonVideo, 1),

		// Social
		mk("First Like Given", "Like your first video", "fa-thumbs-up", models.CategorySocial, models.RarityCommon, 5, models.ConditionLikeVideo, 1),
		mk("Generous", "Like 100 videos", "fa-heart", models.CategorySocial, models.RarityUncommon, 40, models.ConditionLikeVideo, 100),
		mk("First Fan", "Receive your first like", "fa-star", models.CategorySocial, models.RarityCommon, 5, models.ConditionReceiveLike, 1),
		mk("Well Liked", "Receive 100 likes", "fa-fire", models.CategorySocial, models.RarityUncommon, 75, models.ConditionReceiveLike, 100),
		mk("Crowd Favorite", "Receive 500 likes", "fa-gem", models.CategorySocial, models.RarityRare, 150, models.ConditionReceiveLike, 500),
		mk("Superstar", "Receive 5000 likes", "fa-medal", models.CategorySocial, models.RarityLegendary, 750, models.ConditionReceiveLike, 5000),
		mk("First Comment", "Leave your first comment", "fa-comment", models.CategorySocial, models.RarityCommon, 5, models.ConditionComment, 1),
		mk("Chatterbox", "Leave 100 comments", "fa-comments", models.CategorySocial, models.RarityRare, 60, models.ConditionComment, 100),
		mk("Social Butterfly", "Follow 100 users", "fa-user-friends", models.CategorySpecial, models.RarityRare, 75, models.ConditionFollowUser, 100),
		mk("Crowd Magnet", "Gain 1000 followers", "fa-magnet", models.CategorySpecial, models.RarityLegendary, 500, models.ConditionReceiveFollow, 1000),

		// Watch
		mk("First Watch", "Watch your first video", "fa-play", models.CategoryWatch, models.RarityCommon, 5, models.ConditionWatchVideo, 1),
		mk("Movie Buff", "Watch more than an hour of video", "fa-clock", models.CategoryWatch, models.RarityCommon, 10, models.ConditionWatchTime, 3600),
		mk("Binge Watcher", "Watch more than 10 hours of video", "fa-tv", models.CategoryWatch, models.RarityUncommon, 25, models.ConditionWatchTime, 36000),
		mk("Screen Fiend", "Watch more than 100 hours of video", "fa-eye", models.CategoryWatch, models.RarityEpic, 150, models.ConditionWatchTime, 360000),
		mk("Ultimate Audience", "Watch more than 500 hours of video", "fa-couch", models.CategoryWatch, models.RarityLegendary, 500, models.ConditionWatchTime, 1800000),

		// Milestone
		mk("Versatile", "Upload videos in 5 different categories", "fa-palette", models.CategoryMilestone, models.RarityEpic, 150, models.ConditionCategoryDiversity, 5),

		// Special
		mk("Early Bird", "Upload a video before 8 in the morning", "fa-sun", models.CategorySpecial, models.RarityUncommon, 30, models.ConditionEarlyUpload, 0),
		mk("Night Owl", "Upload a video in the small hours", "fa-moon", models.CategorySpecial, models.RarityUncommon, 30, models.ConditionLateUpload, 0),
		mk("Weekend Warrior", "Upload 5 videos on weekends", "fa-calendar-week", models.CategorySpecial, models.RarityCommon, 20, models.ConditionWeekendUpload, 5),
		mk("Holiday Spirit", "Upload a video on a holiday", "fa-gift", models.CategorySpecial, models.RarityRare, 50, models.ConditionHolidayUpload, 0),
		mk("Birthday Cake", "Log in on your birthday", "fa-birthday-cake", models.CategorySpecial, models.RarityEpic, 100, models.ConditionBirthdayLogin, 0),
	}
}
