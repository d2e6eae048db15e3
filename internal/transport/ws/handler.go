package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"gridclash/internal/model"
	"gridclash/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler upgrades connections and dispatches room-scoped events
type Handler struct {
	hub     *Hub
	rooms   *service.RoomService
	turns   *service.TurnService
	actions *service.ActionService
	combat  *service.CombatService
	stats   *service.StatsService
	bots    *service.VirtualPlayerService
	log     zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, rooms *service.RoomService, turns *service.TurnService, actions *service.ActionService, combat *service.CombatService, stats *service.StatsService, bots *service.VirtualPlayerService, log zerolog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		rooms:   rooms,
		turns:   turns,
		actions: actions,
		combat:  combat,
		stats:   stats,
		bots:    bots,
		log:     log.With().Str("component", "ws").Logger(),
	}
}

// RoomWS handles GET /v1/ws/rooms/{code}. The query carries the join
// request; admission runs before the connection is registered. A join
// dropped by the admission rules closes the socket without a reply (the
// deliberately-quiet stale-join race).
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	name := r.URL.Query().Get("player")
	avatar := r.URL.Query().Get("avatar")

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	player := &model.Player{
		Name:   name,
		Avatar: avatar,
		Life:   4,
		Speed:  4,
	}
	result := h.rooms.JoinRoom(code, player)
	if result == nil {
		wsConn.Close()
		return
	}
	if !result.Success {
		payload, _ := json.Marshal(result)
		wsConn.WriteMessage(websocket.TextMessage, mustEnvelope(MsgJoinResult, payload))
		wsConn.Close()
		return
	}

	conn := &Connection{
		RoomCode:   code,
		PlayerName: result.PlayerJoin,
		Send:       make(chan []byte, 256),
		Hub:        h.hub,
	}
	h.hub.Register(conn)

	payload, _ := json.Marshal(result)
	conn.Send <- mustEnvelope(MsgJoinResult, payload)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func mustEnvelope(t MessageType, payload json.RawMessage) []byte {
	data, _ := json.Marshal(&Message{Type: t, Payload: payload})
	return data
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		// a dropped socket is a leave; the admin dropping tears the room down
		h.rooms.LeaveRoom(conn.RoomCode, conn.PlayerName)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("player", conn.PlayerName).Msg("websocket error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(conn, "malformed message")
			continue
		}
		h.dispatch(conn, &msg)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case data, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) sendError(conn *Connection, reason string) {
	payload, _ := json.Marshal(map[string]string{"error": reason})
	select {
	case conn.Send <- mustEnvelope(MsgError, payload):
	default:
	}
}
