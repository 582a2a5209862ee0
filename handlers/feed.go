// handlers/feed.go - Live Unlock Feed
package handlers

import (
	"log"
	"sync"
	"time"
	"vidverse/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Unlock feed connections, keyed by connection with the viewer's user ID
// as value. A user can hold several tabs open.
var (
	feedMu      sync.Mutex
	feedClients = make(map[*websocket.Conn]uint)
)

type unlockMessage struct {
	Type        string    `json:"type"`
	UserID      uint      `json:"user_id"`
	Achievement string    `json:"achievement"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Rarity      string    `json:"rarity"`
	Points      int       `json:"points"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// InitUnlockFeed subscribes the websocket broadcast to the unlock
// dispatcher. Each connected client only receives their own unlocks.
func InitUnlockFeed(d *services.Dispatcher) {
	d.Subscribe(func(ev services.UnlockEvent) {
		msg := unlockMessage{
			Type:        "achievement_unlocked",
			UserID:      ev.UserID,
			Achievement: ev.Achievement.Name,
			Description: ev.Achievement.Description,
			Icon:        ev.Achievement.Icon,
			Rarity:      ev.Achievement.Rarity,
			Points:      ev.Achievement.Points,
			UnlockedAt:  ev.UnlockedAt,
		}

		feedMu.Lock()
		defer feedMu.Unlock()
		for conn, userID := range feedClients {
			if userID != ev.UserID {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("⚠️ Dropping unlock feed client for user %d: %v", userID, err)
				conn.Close()
				delete(feedClients, conn)
			}
		}
	})
}

// RequireWebSocketUpgrade rejects plain HTTP requests on the feed route.
func RequireWebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// UnlockFeed holds the websocket open and registers the client for
// unlock broadcasts. Runs behind the auth middleware, which leaves the
// user ID in locals before the upgrade.
func UnlockFeed() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		rawID, ok := conn.Locals("userId").(float64)
		if !ok {
			conn.Close()
			return
		}
		userID := uint(rawID)

		feedMu.Lock()
		feedClients[conn] = userID
		feedMu.Unlock()

		log.Printf("🔌 Unlock feed connected for user %d", userID)

		defer func() {
			feedMu.Lock()
			delete(feedClients, conn)
			feedMu.Unlock()
			conn.Close()
			log.Printf("🔌 Unlock feed disconnected for user %d", userID)
		}()

		// Reads only serve to detect the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
