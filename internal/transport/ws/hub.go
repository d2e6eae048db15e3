package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Client → server message types
const (
	MsgLeaveRoom           MessageType = "leaveRoom"
	MsgKickPlayer          MessageType = "kickPlayer"
	MsgToggleRoomLock      MessageType = "toggleRoomLock"
	MsgStartGame           MessageType = "startGame"
	MsgEndTurn             MessageType = "endTurn"
	MsgPlayerMoved         MessageType = "playerMoved"
	MsgToggleDoor          MessageType = "toggleDoor"
	MsgItemChoice          MessageType = "itemChoice"
	MsgStartFight          MessageType = "startFight"
	MsgCombatUpdate        MessageType = "combatUpdate"
	MsgCombatEscaped       MessageType = "combatEscaped"
	MsgCombatEnded         MessageType = "combatEnded"
	MsgQuitGame            MessageType = "quitGame"
	MsgGetAllGlobalInfo    MessageType = "getAllGlobalInfo"
	MsgAddVirtualPlayer    MessageType = "addVirtualPlayer"
	MsgRemoveVirtualPlayer MessageType = "removeVirtualPlayer"
)

// Server → client reply types that have no broadcast counterpart
const (
	MsgJoinResult  MessageType = "joinResult"
	MsgLeaveResult MessageType = "leaveResult"
	MsgError       MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one player's WebSocket connection
type Connection struct {
	RoomCode   string
	PlayerName string
	Send       chan []byte
	Hub        *Hub
}

// BroadcastMessage is a message routed through the hub
type BroadcastMessage struct {
	RoomCode string
	ToPlayer string // empty means every player in the room
	Message  *Message
}

// Hub manages the WebSocket connections of all rooms
type Hub struct {
	// roomCode -> playerName -> connection
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	dropRoom   chan string

	log zerolog.Logger
}

// NewHub creates a new WebSocket hub and starts its routing loop
func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		dropRoom:   make(chan string),
		log:        log.With().Str("component", "hub").Logger(),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.RoomCode] == nil {
				h.conns[conn.RoomCode] = make(map[string]*Connection)
			}
			h.conns[conn.RoomCode][conn.PlayerName] = conn
			h.mu.Unlock()
			h.log.Debug().Str("room", conn.RoomCode).Str("player", conn.PlayerName).Msg("connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if players, ok := h.conns[conn.RoomCode]; ok {
				if existing, ok := players[conn.PlayerName]; ok && existing == conn {
					delete(players, conn.PlayerName)
					close(conn.Send)
					if len(players) == 0 {
						delete(h.conns, conn.RoomCode)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug().Str("room", conn.RoomCode).Str("player", conn.PlayerName).Msg("disconnected")

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for name, conn := range h.conns[msg.RoomCode] {
				if msg.ToPlayer != "" && name != msg.ToPlayer {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// slow consumer, drop the frame
				}
			}
			h.mu.RUnlock()

		case code := <-h.dropRoom:
			h.mu.Lock()
			for _, conn := range h.conns[code] {
				close(conn.Send)
			}
			delete(h.conns, code)
			h.mu.Unlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToRoom sends a message to every player in a room (implements service.Broadcaster)
func (h *Hub) BroadcastToRoom(roomCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// SendToPlayer sends a message to a single player (implements service.Broadcaster)
func (h *Hub) SendToPlayer(roomCode, playerName string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		ToPlayer: playerName,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectRoom closes every connection of a destroyed room (implements service.Broadcaster)
func (h *Hub) DisconnectRoom(roomCode string) {
	h.dropRoom <- roomCode
}
