// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/doodlecourt/doodlecourt/internal/auth"
	"github.com/doodlecourt/doodlecourt/internal/cache"
	"github.com/doodlecourt/doodlecourt/internal/game"
	"github.com/doodlecourt/doodlecourt/internal/middleware"
)

// RoomMessage is the envelope for incoming WebSocket messages. Fields are
// optional; each action type reads the ones it needs.
type RoomMessage struct {
	Type string `json:"type"`

	Name     string          `json:"name,omitempty"`
	Avatar   string          `json:"avatar,omitempty"`
	PlayerID string          `json:"playerId,omitempty"`
	TargetID string          `json:"targetId,omitempty"`
	Token    string          `json:"token,omitempty"`
	Value    string          `json:"value,omitempty"`
	Index    *int            `json:"index,omitempty"`
	Kind     string          `json:"kind,omitempty"`
	Msg      string          `json:"msg,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Settings *game.Settings  `json:"settings,omitempty"`
}

// RoomWSHandler upgrades the connection for a room at /room/ws/{code} and
// runs the read loop. A connection is anonymous until its first join or
// reconnect message binds it to a seat.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/room/ws/")
		if idx := strings.Index(code, "/"); idx != -1 {
			code = code[:idx]
		}
		if code == "" {
			http.Error(w, "missing room code in path (/room/ws/{code})", http.StatusBadRequest)
			return
		}
		room, ok := rs.Registry.GetRoom(code)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		if room.Closed() {
			http.Error(w, "room has closed", http.StatusGone)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"doodlecourt"},
			OriginPatterns: []string{"*"}, // tighten for production deployments
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", code, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "doodlecourt" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'doodlecourt' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		playerID := readRoomMessages(ctx, c, room, logger)

		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
		if playerID != uuid.Nil && !room.Closed() {
			room.MarkDisconnected(playerID)
			broadcastRoom(room, "player_disconnected", map[string]interface{}{
				"playerId": playerID.String(),
			})
		}
	}
}

// readRoomMessages runs the read loop until the connection drops, routing
// each message to the room's action methods. Returns the player ID the
// connection was bound to, or uuid.Nil.
func readRoomMessages(ctx context.Context, c *websocket.Conn, room *game.Room, logger *logrus.Logger) uuid.UUID {
	playerID := uuid.Nil
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("WebSocket read error in room %s: %v", room.Code, err)
			}
			return playerID
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg RoomMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsError(ctx, c, "invalid JSON")
			continue
		}
		logger.Debugf("room %s: action %q from %s", room.Code, msg.Type, playerID)

		switch msg.Type {
		case "join":
			res, err := room.AddPlayer(msg.Name, msg.Avatar)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			playerID = res.Player.ID
			attachConn(room, playerID, c)
			token, terr := auth.CreateReconnectToken(room.Code, playerID.String())
			if terr != nil {
				logger.Warnf("room %s: failed to issue reconnect token: %v", room.Code, terr)
			}
			sendWsMessage(ctx, c, map[string]interface{}{
				"type":   "joined",
				"player": res.Player,
				"isHost": res.IsHost,
				"token":  token,
				"state":  room.State(),
			})
			broadcastRoom(room, "player_joined", res)

		case "reconnect":
			sub, verr := auth.VerifyReconnectToken(msg.Token, room.Code)
			if verr != nil {
				sendWsError(ctx, c, "invalid reconnect token")
				continue
			}
			id, perr := uuid.Parse(sub)
			if perr != nil {
				sendWsError(ctx, c, "invalid reconnect token")
				continue
			}
			p, err := room.Reconnect(id)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			playerID = p.ID
			attachConn(room, playerID, c)
			sendWsMessage(ctx, c, map[string]interface{}{
				"type":  "reconnected",
				"state": room.State(),
			})
			broadcastRoom(room, "player_reconnected", map[string]interface{}{
				"playerId": p.ID.String(),
				"name":     p.Name,
			})

		case "leave":
			if playerID == uuid.Nil {
				sendWsError(ctx, c, "not joined")
				continue
			}
			res, err := room.RemovePlayer(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "player_left", res)
			playerID = uuid.Nil

		case "kick":
			target, ok := parseID(msg.PlayerID)
			if !ok || playerID != room.HostID {
				sendWsError(ctx, c, "host-only action")
				continue
			}
			res, err := room.RemovePlayer(target)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "player_kicked", res)

		case "set_avatar":
			if err := room.SetAvatar(playerID, msg.Avatar); err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "avatar_changed", map[string]interface{}{
				"playerId": playerID.String(),
				"avatar":   msg.Avatar,
			})

		case "start_game":
			var settings game.Settings
			if msg.Settings != nil {
				settings = *msg.Settings
			}
			res, err := room.Start(playerID, settings)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "game_started", res)

		case "roll_alignment":
			res, err := room.RollAlignment(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "alignment_rolled", res)

		case "select_alignment":
			res, err := room.SelectJudgeAlignment(playerID, msg.Value)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "alignment_selected", res)

		case "draw_prompts":
			res, err := room.DrawPrompts(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "prompts_drawn", res)

		case "reroll_prompts":
			res, err := room.RerollPrompts(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "prompts_drawn", res)

		case "select_prompt":
			if msg.Index == nil {
				sendWsError(ctx, c, "missing prompt index")
				continue
			}
			res, err := room.SelectPrompt(playerID, *msg.Index)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "prompt_selected", res)
			// Cosmetic countdown: clients show it, but only the judge's
			// explicit end_drawing advances the phase.
			room.StartCountdown(res.TimerSeconds, func() {
				broadcastRoom(room, "drawing_time_up", map[string]interface{}{
					"round": room.State().Round,
				})
			})

		case "submit_drawing":
			res, err := room.SubmitDrawing(playerID, msg.Payload)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "drawing_submitted", res)

		case "end_drawing":
			res, err := room.EndDrawing(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "judging_started", res)

		case "select_winner":
			target, ok := parseID(msg.PlayerID)
			if !ok {
				sendWsError(ctx, c, "missing winner id")
				continue
			}
			res, err := room.SelectWinner(playerID, target)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "winner_selected", res)
			go publishRoundRecord(room, res.WinnerName, res.GameOver)

		case "award_token":
			target, ok := parseID(msg.PlayerID)
			if !ok {
				sendWsError(ctx, c, "missing player id")
				continue
			}
			res, err := room.AwardToken(playerID, target, game.TokenKind(msg.Kind))
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "token_awarded", res)

		case "steal":
			target, ok := parseID(msg.TargetID)
			if !ok {
				sendWsError(ctx, c, "missing target id")
				continue
			}
			res, err := room.ExecuteSteal(playerID, target)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "point_stolen", res)

		case "check_modifier":
			res, err := room.CheckModifierPhase(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "modifier_check", res)

		case "draw_curse":
			res, err := room.DrawCurseCard(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "curse_drawn", res)

		case "use_held_curse":
			res, err := room.UseHeldCurse(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "curse_drawn", res)

		case "apply_curse":
			target, ok := parseID(msg.TargetID)
			if !ok {
				sendWsError(ctx, c, "missing target id")
				continue
			}
			res, err := room.ApplyCurse(playerID, target)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "curse_applied", res)

		case "hold_curse":
			res, err := room.HoldCurse(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "curse_held", res)

		case "advance_round":
			res, err := room.AdvanceRound(playerID)
			if err != nil {
				sendWsError(ctx, c, err.Error())
				continue
			}
			broadcastRoom(room, "round_advanced", res)

		case "chat":
			if playerID == uuid.Nil {
				continue
			}
			p := room.PlayerByID(playerID)
			if p == nil {
				continue
			}
			broadcastRoom(room, "chat", map[string]interface{}{
				"playerId": p.ID.String(),
				"name":     p.Name,
				"msg":      msg.Msg,
				"ts":       time.Now().Unix(),
			})

		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})

		default:
			sendWsError(ctx, c, "unknown action type: "+msg.Type)
		}
	}
}

// attachConn stores the live connection on the player under the room lock.
func attachConn(room *game.Room, playerID uuid.UUID, c *websocket.Conn) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	for _, p := range room.Players {
		if p.ID == playerID {
			p.Conn = c
			p.Connected = true
			return
		}
	}
}

// broadcastRoom sends {"type": ..., "data": ...} to every connected player.
// Writes happen asynchronously with a per-write timeout so a slow client
// never stalls game logic.
func broadcastRoom(room *game.Room, eventType string, data interface{}) {
	room.Mu.Lock()
	conns := make([]*websocket.Conn, 0, len(room.Players))
	for _, p := range room.Players {
		if p.Connected && p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	room.Mu.Unlock()

	msgBytes, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})
	if err != nil {
		return
	}
	go func() {
		for _, conn := range conns {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			_ = conn.Write(ctx, websocket.MessageText, msgBytes)
			cancel()
		}
	}()
}

// publishRoundRecord ships the finished round to the history queue.
func publishRoundRecord(room *game.Room, winnerName string, gameOver bool) {
	st := room.State()
	scores := make(map[string]int, len(st.Players))
	judgeName := ""
	for _, p := range st.Players {
		scores[p.Name] = p.Score
		if p.IsJudge {
			judgeName = p.Name
		}
	}
	rec := cache.RoundRecord{
		RecordID:   uuid.New(),
		RoomCode:   st.Code,
		Round:      st.Round,
		Alignment:  string(st.Alignment),
		Prompt:     st.SelectedPrompt,
		JudgeName:  judgeName,
		WinnerName: winnerName,
		Scores:     scores,
		GameOver:   gameOver,
		Timestamp:  time.Now().UnixMilli(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = cache.PublishRoundRecord(ctx, rec)
}

func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
}

// sendWsMessage marshals and writes a single message with a write timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, msgBytes)
}

// sendWsError sends a structured error to one client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
