package service

// Broadcaster interface for room-scoped WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgType string, payload interface{})
	SendToPlayer(roomCode, playerName string, msgType string, payload interface{})
	DisconnectRoom(roomCode string)
}

// Outbound event names. State is always fully mutated before the matching
// broadcast is emitted.
const (
	EvtUpdatePlayers     = "updatePlayers"
	EvtRoomLockStatus    = "roomLockStatus"
	EvtKicked            = "kicked"
	EvtTimeIncrement     = "timeIncrement"
	EvtEndOfNotice       = "endOfNotice"
	EvtNextTurn          = "nextTurn"
	EvtVirtualPlayerTurn = "virtualPlayerTurn"
	EvtUpdateBoard       = "updateBoard"
	EvtAnimatePlayerMove = "animatePlayerMove"
	EvtInventoryFull     = "inventoryFull"
	EvtStartFight        = "startFight"
	EvtCombatUpdate      = "combatUpdate"
	EvtCombatEscaped     = "combatEscaped"
	EvtCombatEnded       = "combatEnded"
	EvtGlobalStats       = "globalStats"
	EvtGameOver          = "gameOver"
)
