package ws

import (
	"encoding/json"

	"gridclash/internal/model"
	"gridclash/internal/service"
)

// Typed payloads for the closed set of client events. Unknown kinds are
// rejected with an error reply instead of being looked up in a string table.
type (
	kickPlayerReq struct {
		PlayerName string `json:"playerName"`
	}
	toggleLockReq struct {
		IsLocked bool `json:"isLocked"`
	}
	playerMovedReq struct {
		Path []model.Position `json:"path"`
	}
	toggleDoorReq struct {
		Position model.Position `json:"position"`
	}
	itemChoiceReq struct {
		Kind model.ItemKind `json:"kind"`
	}
	startFightReq struct {
		Players [2]string `json:"players"`
	}
	combatEscapedReq struct {
		PlayerName string `json:"playerName"`
	}
	combatEndedReq struct {
		Winner string `json:"winner"`
		Loser  string `json:"loser"`
	}
	addVirtualReq struct {
		Mode model.AggressionMode `json:"mode"`
	}
	removeVirtualReq struct {
		PlayerName string `json:"playerName"`
	}
)

// dispatch routes one inbound event to its service. Every event is
// room-scoped: the room code and acting player come from the connection.
func (h *Handler) dispatch(conn *Connection, msg *Message) {
	code := conn.RoomCode
	actor := conn.PlayerName

	switch msg.Type {
	case MsgLeaveRoom:
		result := h.rooms.LeaveRoom(code, actor)
		h.reply(conn, MsgLeaveResult, result)

	case MsgKickPlayer:
		var req kickPlayerReq
		if !h.decode(conn, msg, &req) {
			return
		}
		// the kicked player's own connection is told first, then removed
		h.hub.SendToPlayer(code, req.PlayerName, service.EvtKicked, map[string]string{"redirect": "/home"})
		result := h.rooms.KickPlayer(code, req.PlayerName)
		h.reply(conn, MsgLeaveResult, result)

	case MsgToggleRoomLock:
		var req toggleLockReq
		if !h.decode(conn, msg, &req) {
			return
		}
		h.rooms.ToggleRoomLock(code, req.IsLocked)

	case MsgStartGame:
		h.rooms.StartGame(code)

	case MsgEndTurn:
		if room := h.roomOf(conn); room != nil {
			h.turns.EndTurn(room)
		}

	case MsgPlayerMoved:
		var req playerMovedReq
		if !h.decode(conn, msg, &req) {
			return
		}
		h.actions.MovePlayer(code, actor, req.Path)

	case MsgToggleDoor:
		var req toggleDoorReq
		if !h.decode(conn, msg, &req) {
			return
		}
		h.actions.ToggleDoor(code, actor, req.Position)

	case MsgItemChoice:
		var req itemChoiceReq
		if !h.decode(conn, msg, &req) {
			return
		}
		h.actions.ItemChoice(code, actor, req.Kind)

	case MsgStartFight:
		var req startFightReq
		if !h.decode(conn, msg, &req) {
			return
		}
		h.combat.StartFight(code, req.Players)

	case MsgCombatUpdate:
		var req model.CombatUpdate
		if !h.decode(conn, msg, &req) {
			return
		}
		h.combat.Update(code, req)

	case MsgCombatEscaped:
		var req combatEscapedReq
		if !h.decode(conn, msg, &req) {
			return
		}
		h.combat.Escaped(code, req.PlayerName)

	case MsgCombatEnded:
		var req combatEndedReq
		if !h.decode(conn, msg, &req) {
			return
		}
		h.combat.Ended(code, req.Winner, req.Loser)

	case MsgQuitGame:
		if h.rooms.IsFirstPlayer(code, actor) {
			// the administrator abandoning tears the match down for everyone
			h.rooms.LeaveRoom(code, actor)
			return
		}
		h.actions.QuitGame(code, actor)

	case MsgGetAllGlobalInfo:
		if snapshot := h.stats.GlobalSnapshot(code); snapshot != nil {
			h.hub.BroadcastToRoom(code, service.EvtGlobalStats, snapshot)
		}

	case MsgAddVirtualPlayer:
		var req addVirtualReq
		if !h.decode(conn, msg, &req) {
			return
		}
		bot, err := h.bots.AddVirtualPlayer(code, req.Mode)
		if err != nil {
			h.sendError(conn, err.Error())
			return
		}
		h.reply(conn, "virtualPlayerAdded", bot)

	case MsgRemoveVirtualPlayer:
		var req removeVirtualReq
		if !h.decode(conn, msg, &req) {
			return
		}
		result := h.bots.RemoveVirtualPlayer(code, req.PlayerName)
		h.reply(conn, MsgLeaveResult, result)

	default:
		h.sendError(conn, "unknown message type")
	}
}

func (h *Handler) decode(conn *Connection, msg *Message, dst interface{}) bool {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		h.sendError(conn, "malformed payload")
		return false
	}
	return true
}

func (h *Handler) reply(conn *Connection, t MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case conn.Send <- mustEnvelope(t, data):
	default:
	}
}

func (h *Handler) roomOf(conn *Connection) *model.Room {
	return h.rooms.Room(conn.RoomCode)
}
