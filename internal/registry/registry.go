// internal/registry/registry.go
package registry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/doodlecourt/doodlecourt/internal/game"
)

// DefaultIdleTimeout is how long a room may sit without a state-mutating
// action before the sweep evicts it.
const DefaultIdleTimeout = 30 * time.Minute

// Registry owns every active room, keyed by code. Rooms are independent
// aggregates; the registry only allocates codes, looks rooms up, and evicts
// the idle ones.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*game.Room
	rng   *rand.Rand

	logger *logrus.Logger
}

// New returns an empty registry.
func New(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		rooms:  make(map[string]*game.Room),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// CreateRoom allocates a unique code and stores a fresh room under it. The
// room's OnEmpty callback is wired so the room evicts itself when the last
// player leaves.
func (reg *Registry) CreateRoom() *game.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	var code string
	for {
		code = newCode(reg.rng)
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}
	room := game.NewRoom(code)
	room.OnEmpty = func(c string) {
		reg.RemoveRoom(c)
	}
	reg.rooms[code] = room
	reg.logger.WithField("code", code).Info("room created")
	return room
}

// GetRoom looks a room up by code.
func (reg *Registry) GetRoom(code string) (*game.Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// RemoveRoom closes a room and drops it from the registry. Closing is
// terminal: in-flight timers are stopped and later actions against the code
// fail.
func (reg *Registry) RemoveRoom(code string) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	if ok {
		delete(reg.rooms, code)
	}
	reg.mu.Unlock()
	if ok {
		room.Close()
		reg.logger.WithField("code", code).Info("room removed")
	}
}

// Rooms returns a snapshot of all live rooms.
func (reg *Registry) Rooms() []*game.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]*game.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		out = append(out, room)
	}
	return out
}

// Count returns how many rooms are live.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// ListInactiveRooms returns the codes of rooms with no mutating action
// within the timeout window.
func (reg *Registry) ListInactiveRooms(timeout time.Duration) []string {
	reg.mu.Lock()
	rooms := make(map[string]*game.Room, len(reg.rooms))
	for code, room := range reg.rooms {
		rooms[code] = room
	}
	reg.mu.Unlock()

	now := time.Now()
	var codes []string
	for code, room := range rooms {
		if now.Sub(room.LastActivity()) > timeout {
			codes = append(codes, code)
		}
	}
	return codes
}

// StartSweeper evicts idle rooms on a fixed interval until ctx is done. A
// room that saw any mutating action inside the timeout window is never
// evicted.
func (reg *Registry) StartSweeper(ctx context.Context, interval, timeout time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, code := range reg.ListInactiveRooms(timeout) {
					reg.logger.WithField("code", code).Info("evicting idle room")
					reg.RemoveRoom(code)
				}
			}
		}
	}()
}
