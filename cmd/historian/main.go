// cmd/historian/main.go is an asynchronous historian service that pops round
// records from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/doodlecourt/doodlecourt/internal/cache"
	"github.com/doodlecourt/doodlecourt/internal/database"
)

// HistorianService encapsulates the Redis + DB logic for capturing finished
// rounds and finalizing matches when a game-over record arrives.
type HistorianService struct {
	redisClient *redis.Client
	batchSize   int
	flushDelay  time.Duration

	batchMu  sync.Mutex
	batch    []cache.RoundRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService instance from environment variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		batch:       make([]cache.RoundRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database and starts the queue-draining loop.
func (hs *HistorianService) Run() {
	database.ConnectDB()

	go hs.readRedisLoop()

	log.Println("doodlecourt-historian service started.")
	<-hs.ctx.Done()
	log.Println("doodlecourt-historian shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve round records from the Redis queue.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("HISTORY_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a 3-second timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var record cache.RoundRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid round record: %v\n", err)
				continue
			}

			hs.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes if the threshold is reached.
func (hs *HistorianService) appendToBatch(record cache.RoundRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		hs.flushBatchToDB()
	}
}

// flushBatchToDB flushes the current batch to the database in a single transaction.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]cache.RoundRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	ctx := context.Background()
	err := beginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertRoundTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertRoundTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flushBatchToDB: %v\n", err)
	} else {
		log.Printf("Flushed %d rounds to DB.\n", len(batchCopy))
	}
}

// insertRoundTx inserts a single round record into the game_rounds table and
// upserts the match row. A game-over record finalizes the match.
func insertRoundTx(ctx context.Context, tx pgx.Tx, rec cache.RoundRecord) error {
	upsertMatchQ := `
		INSERT INTO matches (room_code, status, started_at)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (room_code)
		DO NOTHING
	`
	_, err := tx.Exec(ctx, upsertMatchQ, rec.RoomCode)
	if err != nil {
		return err
	}

	roundInsertQ := `
		INSERT INTO game_rounds (
			id, room_code, round, alignment, prompt, judge_name, winner_name, scores, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, to_timestamp($9::double precision / 1000))
	`
	jsonScores, err := json.Marshal(rec.Scores)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, roundInsertQ,
		rec.RecordID, rec.RoomCode, rec.Round, rec.Alignment, rec.Prompt,
		rec.JudgeName, rec.WinnerName, jsonScores, rec.Timestamp,
	)
	if err != nil {
		return err
	}

	if rec.GameOver {
		finalizeQ := `
			UPDATE matches
			SET status = 'completed', winner_name = $2, ended_at = NOW()
			WHERE room_code = $1 AND status = 'in_progress'
		`
		_, err = tx.Exec(ctx, finalizeQ, rec.RoomCode, rec.WinnerName)
		if err != nil {
			return err
		}
	}
	return nil
}

// beginTxFunc starts a transaction on the pool, calls f, and commits or rolls back.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.Stop()
	log.Println("Historian shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
