// handlers/auth.go - Authentication Endpoints
package handlers

import (
	"fmt"
	"os"
	"time"
	"vidverse/database"
	"vidverse/middleware"
	"vidverse/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GuestLoginRequest struct {
	GuestName string `json:"guest_name,omitempty"`
}

type UpgradeGuestRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success      bool                 `json:"success"`
	Token        string               `json:"token,omitempty"`
	User         UserInfo             `json:"user,omitempty"`
	Achievements []models.Achievement `json:"new_achievements,omitempty"`
	Error        string               `json:"error,omitempty"`
}

type UserInfo struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsGuest   bool      `json:"is_guest"`
	Level     int       `json:"level"`
	XP        int       `json:"xp"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

func userInfo(user models.User) UserInfo {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	return UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     email,
		IsGuest:   user.IsGuest,
		Level:     user.Level,
		XP:        user.XP,
		Points:    user.Points,
		CreatedAt: user.CreatedAt,
	}
}

// GuestLogin creates a new guest session. Guests can browse but do not
// earn achievements until they upgrade.
func GuestLogin(c *fiber.Ctx) error {
	var req GuestLoginRequest
	// Empty body is fine for guests.
	_ = c.BodyParser(&req)

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Database not available"})
	}

	guestName := req.GuestName
	if guestName == "" {
		guestName = fmt.Sprintf("Guest_%s", uuid.New().String()[:8])
	}
	guestEmail := fmt.Sprintf("guest_%s@vidverse.local", uuid.New().String()[:8])

	user := models.User{
		Username:  guestName,
		Email:     &guestEmail,
		Password:  "",
		IsGuest:   true,
		Level:     1,
		XP:        0,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to create guest account"})
	}

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to generate token"})
	}

	return c.JSON(AuthResponse{Success: true, Token: token, User: userInfo(user)})
}

// Login authenticates a registered user and advances their daily
// check-in streak, which can itself unlock achievements.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Username and password required"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Database not available"})
	}

	var user models.User
	if err := db.Where("username = ? AND is_guest = ?", req.Username, false).First(&user).Error; err != nil {
		return c.Status(401).JSON(AuthResponse{Success: false, Error: "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(AuthResponse{Success: false, Error: "Invalid credentials"})
	}
	if user.IsBanned {
		return c.Status(403).JSON(AuthResponse{Success: false, Error: "Account suspended"})
	}

	db.Model(&user).Updates(map[string]interface{}{
		"last_login":    time.Now(),
		"last_activity": time.Now(),
	})

	unlocked := triggerService.OnLogin(&user, time.Now())

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to generate token"})
	}

	return c.JSON(AuthResponse{
		Success:      true,
		Token:        token,
		User:         userInfo(user),
		Achievements: unlocked,
	})
}

// Register creates a new account and fires the registration achievement.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Username and password required"})
	}
	if len(req.Password) < 6 {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Password must be at least 6 characters"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Database not available"})
	}

	var existingUser models.User
	if err := db.Where("username = ?", req.Username).First(&existingUser).Error; err == nil {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Username already taken"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to hash password"})
	}

	user := models.User{
		Username:  req.Username,
		Email:     &req.Email,
		Password:  string(hashedPassword),
		IsGuest:   false,
		Level:     1,
		XP:        0,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to create account"})
	}

	unlocked := triggerService.OnRegister(user.ID)

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to generate token"})
	}

	return c.JSON(AuthResponse{
		Success:      true,
		Token:        token,
		User:         userInfo(user),
		Achievements: unlocked,
	})
}

// UpgradeGuest converts a guest account into a registered one. The
// registration achievement fires here, since this is the moment the
// account really registers.
func UpgradeGuest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(AuthResponse{Success: false, Error: "Unauthorized"})
	}

	var req UpgradeGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Username and password required"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Database not available"})
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(AuthResponse{Success: false, Error: "User not found"})
	}
	if !user.IsGuest {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Account is already registered"})
	}

	var existingUser models.User
	if err := db.Where("username = ? AND id <> ?", req.Username, userID).First(&existingUser).Error; err == nil {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Username already taken"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to hash password"})
	}

	user.Username = req.Username
	user.Email = &req.Email
	user.Password = string(hashedPassword)
	user.IsGuest = false
	if err := db.Save(&user).Error; err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to upgrade account"})
	}

	unlocked := triggerService.OnRegister(user.ID)

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to generate token"})
	}

	return c.JSON(AuthResponse{
		Success:      true,
		Token:        token,
		User:         userInfo(user),
		Achievements: unlocked,
	})
}

// GetMe returns the authenticated user's profile.
func GetMe(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(AuthResponse{Success: false, Error: "Unauthorized"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(AuthResponse{Success: false, Error: "User not found"})
	}
	return c.JSON(AuthResponse{Success: true, User: userInfo(user)})
}

func generateToken(user models.User) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "vidverse-secret-change-in-production"
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_guest": user.IsGuest,
		"exp":      time.Now().Add(time.Hour * 720).Unix(), // 30 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
