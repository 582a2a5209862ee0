// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"vidverse/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Notification{},
		&models.Video{},
		&models.VideoLike{},
		&models.Comment{},
		&models.ViewHistory{},
		&models.UserFollow{},
		&models.DailyCheckin{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes AutoMigrate does not cover. The unique
// composite index on user_achievements is the grant-idempotency
// constraint; everything else is read-path support.
func createIndexes() {
	db := GetDB()
	log.Println("Creating indexes...")

	// Grant idempotency: at most one unlock per (user, achievement).
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_user_achievement ON user_achievements(user_id, achievement_id)")

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_level ON users(level DESC)")

	// Catalog indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_active ON achievements(is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_condition ON achievements(condition_type)")

	// Unlock read-path indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_achievements_unlocked ON user_achievements(unlocked_at DESC)")

	// Metric source indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_videos_user ON videos(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_videos_user_category ON videos(user_id, category)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_video_likes_user ON video_likes(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_video_likes_video ON video_likes(video_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_comments_user ON comments(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_view_histories_user ON view_histories(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_follows_follower ON user_follows(follower_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_follows_following ON user_follows(following_id)")

	// Notification indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)")

	log.Println("✅ Indexes created successfully")
}
