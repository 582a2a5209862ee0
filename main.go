// ~/Documents/CODING/vidverse/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"
	"vidverse/database"
	"vidverse/handlers"
	"vidverse/handlers/admin"
	"vidverse/middleware"
	"vidverse/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()
	db := database.GetDB()

	// Unlock side effects run off the request path through the dispatcher
	dispatcher := services.NewDispatcher(256)
	levelService := services.NewLevelService(db)
	notifyService := services.NewNotificationService(db)
	services.WireUnlockRewards(dispatcher, levelService, notifyService)
	handlers.InitUnlockFeed(dispatcher)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Optional Redis dashboard cache
	progressCache := services.NewProgressCache()

	// Wire achievement services into the handlers
	handlers.InitAchievementHandlers(dispatcher, progressCache)

	// Admin surface shares the same grant path
	catalogService := services.NewCatalogService(db)
	metrics := services.NewDBMetricProvider(db)
	grantService := services.NewGrantService(db, catalogService, dispatcher)
	backfillService := services.NewBackfillService(db, catalogService, grantService, metrics)
	admin.InitAchievementAdmin(catalogService, grantService, backfillService)

	// Seed the default catalog
	if err := catalogService.Seed(); err != nil {
		log.Fatalf("FATAL: achievement catalog seed failed: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/upgrade", middleware.AuthMiddleware, handlers.UpgradeGuest)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.GetMe)

	// Achievement routes
	achievementGroup := api.Group("/achievements")
	achievementGroup.Get("/", handlers.GetAchievements)
	achievementGroup.Get("/progress", middleware.AuthMiddleware, handlers.GetMyProgress)
	achievementGroup.Get("/unlocked", middleware.AuthMiddleware, handlers.GetMyUnlocked)
	achievementGroup.Put("/:id/display", middleware.AuthMiddleware, handlers.SetAchievementDisplay)

	// Activity routes: each records the action and fires its triggers
	videoGroup := api.Group("/videos")
	videoGroup.Use(middleware.AuthMiddleware)
	videoGroup.Post("/", handlers.UploadVideo)
	videoGroup.Post("/:id/like", handlers.LikeVideo)
	videoGroup.Post("/:id/comments", handlers.CommentVideo)
	videoGroup.Post("/:id/watch", handlers.WatchVideo)

	// User routes
	userGroup := api.Group("/users")
	userGroup.Get("/:id/achievements", handlers.GetUserAchievements)
	userGroup.Post("/:id/follow", middleware.AuthMiddleware, handlers.FollowUser)

	// Notification routes
	notificationGroup := api.Group("/notifications")
	notificationGroup.Use(middleware.AuthMiddleware)
	notificationGroup.Get("/", handlers.GetNotifications)
	notificationGroup.Put("/:id/read", handlers.MarkNotificationRead)

	// Live unlock feed
	app.Use("/ws/unlocks", handlers.RequireWebSocketUpgrade)
	app.Get("/ws/unlocks", middleware.WebSocketAuthMiddleware, handlers.UnlockFeed())

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Get("/users/:id", admin.GetUser)
	adminProtected.Put("/users/:id", admin.UpdateUser)
	adminProtected.Delete("/users/:id", admin.DeleteUser)
	adminProtected.Post("/users/:id/ban", admin.BanUser)
	adminProtected.Post("/users/:id/reset-password", admin.ResetUserPassword)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	// Ops server on a second port (pure net/http): admin catalog
	// management, backfill, leaderboards
	opsPort := getEnv("OPS_PORT", "4000")
	opsMux := http.NewServeMux()
	opsMux.HandleFunc("GET /api/leaderboard", handlers.GetLeaderboardHTTP)
	opsMux.HandleFunc("GET /api/leaderboard/user/{id}", handlers.GetUserRankHTTP)
	opsMux.Handle("GET /api/admin/users", middleware.HTTPAdminAuth(http.HandlerFunc(handlers.GetUsers)))
	opsMux.Handle("GET /api/admin/users/{id}", middleware.HTTPAdminAuth(http.HandlerFunc(handlers.GetUser)))
	opsMux.Handle("PUT /api/admin/users/{id}", middleware.HTTPAdminAuth(http.HandlerFunc(handlers.UpdateUser)))
	opsMux.Handle("DELETE /api/admin/users/{id}", middleware.HTTPAdminAuth(http.HandlerFunc(handlers.DeleteUser)))
	opsMux.Handle("GET /api/admin/achievements", middleware.HTTPAdminAuth(http.HandlerFunc(admin.GetAchievements)))
	opsMux.Handle("POST /api/admin/achievements", middleware.HTTPAdminAuth(http.HandlerFunc(admin.CreateAchievement)))
	opsMux.Handle("PUT /api/admin/achievements/{id}", middleware.HTTPAdminAuth(http.HandlerFunc(admin.UpdateAchievement)))
	opsMux.Handle("DELETE /api/admin/achievements/{id}", middleware.HTTPAdminAuth(http.HandlerFunc(admin.DeactivateAchievement)))
	opsMux.Handle("POST /api/admin/achievements/detect/{id}", middleware.HTTPAdminAuth(http.HandlerFunc(admin.DetectUser)))
	opsMux.Handle("POST /api/admin/achievements/detect-all", middleware.HTTPAdminAuth(http.HandlerFunc(admin.DetectAll)))

	opsServer := &http.Server{
		Addr:    ":" + opsPort,
		Handler: opsMux,
	}

	go func() {
		log.Printf("🌐 Ops server starting on port %s", opsPort)
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ops server failed:", err)
		}
	}()

	// Start Fiber HTTP/REST server on port 3000
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🏆 Achievement engine ready, live feed at ws://localhost:%s/ws/unlocks", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		// Additional production checks
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
