// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/doodlecourt/doodlecourt/internal/game"
)

// CreateRoomHandler allocates a new room and returns its code. The host
// device calls this, then every player (host included) joins over the room
// WebSocket.
func CreateRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		room := rs.Registry.CreateRoom()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    room.Code,
			"avatars": game.Avatars,
			"decks":   game.DeckNames(),
		})
	}
}

// ListRoomsHandler returns a summary of every live room, for ops visibility.
// GET /room/list
func ListRoomsHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := rs.Registry.Rooms()
		summaries := make([]map[string]interface{}, 0, len(rooms))
		for _, room := range rooms {
			st := room.State()
			summaries = append(summaries, map[string]interface{}{
				"code":    st.Code,
				"phase":   st.Phase,
				"round":   st.Round,
				"players": len(st.Players),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": len(summaries),
			"rooms": summaries,
		})
	}
}

// RoomStateHandler returns the public snapshot of one room, mostly for the
// host display to recover after a page reload. GET /room/state?code=XXXX
func RoomStateHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		room, ok := rs.Registry.GetRoom(code)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(room.State())
	}
}
