// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
// When nil (Redis not configured), publishing is a no-op so the game engine
// never depends on Redis being up.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the round historian drains.
var DefaultQueueName = "doodlecourt_rounds"

// RoundRecord is one finished round (or game end) for after-the-fact
// history. In-progress game state is never persisted.
type RoundRecord struct {
	RecordID   uuid.UUID      `json:"record_id"`
	RoomCode   string         `json:"room_code"`
	Round      int            `json:"round"`
	Alignment  string         `json:"alignment"`
	Prompt     string         `json:"prompt"`
	JudgeName  string         `json:"judge_name"`
	WinnerName string         `json:"winner_name"`
	Scores     map[string]int `json:"scores"`
	GameOver   bool           `json:"game_over"`
	Timestamp  int64          `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment
// variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishRoundRecord serializes the record to JSON and pushes it onto the
// history queue. Quick network send only; never blocks game logic.
func PublishRoundRecord(ctx context.Context, record RoundRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundRecord: %w", err)
	}
	queueName := getEnv("HISTORY_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
