// services/cache.go - Dashboard Read Cache
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressCache keeps rendered dashboard summaries in Redis for a short
// TTL. The cache is optional: when REDIS_ADDR is unset or Redis is down,
// every read falls through to the database and nothing breaks. Stale
// progress for a few seconds is acceptable; unlock state itself is only
// ever read from the database.
type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressCache connects to Redis when configured. Returns a disabled
// cache (nil client) otherwise.
func NewProgressCache() *ProgressCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return &ProgressCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable (%v), progress cache disabled", err)
		return &ProgressCache{}
	}

	log.Println("✅ Progress cache connected to Redis")
	return &ProgressCache{client: client, ttl: 30 * time.Second}
}

func (c *ProgressCache) Enabled() bool {
	return c != nil && c.client != nil
}

func progressKey(userID uint) string {
	return fmt.Sprintf("achievements:progress:%d", userID)
}

// Get loads a cached summary. ok is false on miss, disabled cache, or
// any Redis error.
func (c *ProgressCache) Get(ctx context.Context, userID uint) (*ProgressSummary, bool) {
	if !c.Enabled() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, progressKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	var summary ProgressSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// Set stores a summary, best-effort.
func (c *ProgressCache) Set(ctx context.Context, userID uint, summary *ProgressSummary) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, progressKey(userID), raw, c.ttl).Err(); err != nil {
		log.Printf("⚠️ Failed to cache progress for user %d: %v", userID, err)
	}
}

// Invalidate drops a user's cached summary, called after every fresh
// unlock so the dashboard reflects it immediately.
func (c *ProgressCache) Invalidate(ctx context.Context, userID uint) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, progressKey(userID)).Err(); err != nil {
		log.Printf("⚠️ Failed to invalidate progress cache for user %d: %v", userID, err)
	}
}
