// internal/handlers/server.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/doodlecourt/doodlecourt/internal/registry"
)

// RoomServer bundles the room registry with the logger for the HTTP and
// WebSocket handlers. All game state lives in the registry's rooms; the
// server itself is stateless.
type RoomServer struct {
	Registry *registry.Registry
	Logger   *logrus.Logger
}

// NewRoomServer builds a RoomServer around a fresh registry.
func NewRoomServer(logger *logrus.Logger) *RoomServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &RoomServer{
		Registry: registry.New(logger),
		Logger:   logger,
	}
}
