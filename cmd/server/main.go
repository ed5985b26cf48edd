// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/doodlecourt/doodlecourt/internal/auth"
	"github.com/doodlecourt/doodlecourt/internal/cache"
	"github.com/doodlecourt/doodlecourt/internal/handlers"
	"github.com/doodlecourt/doodlecourt/internal/middleware"
	"github.com/doodlecourt/doodlecourt/internal/registry"
)

func main() {
	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Round history is optional; the game runs fine without Redis.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("Redis unavailable, round history disabled: %v", err)
	}

	rs := handlers.NewRoomServer(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rs.Registry.StartSweeper(ctx, 5*time.Minute, registry.DefaultIdleTimeout)

	mux := http.NewServeMux()

	// room endpoints
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(rs),
	)))
	mux.Handle("/room/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListRoomsHandler(rs),
	)))
	mux.Handle("/room/state", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomStateHandler(rs),
	)))

	// room websocket
	mux.Handle("/room/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, rs),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
