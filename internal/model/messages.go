package model

// Symbolic error strings delivered in response payloads. These are not
// process exit codes; the server is long-running.
const (
	ReasonRoomNotFound    = "roomNotFound"
	ReasonRoomLocked      = "roomLocked"
	ReasonPlayerNotFound  = "playerNotFound"
	ReasonRoomFull        = "roomFull"
	ReasonInvalidRoomSize = "invalidRoomSize"
	ReasonInvalidPlayer   = "invalidPlayer"
)

// JoinResult is the structured outcome of a join attempt. A nil *JoinResult
// from the service means the attempt was deliberately dropped (locked or
// missing room, empty name) and no reply is owed.
type JoinResult struct {
	Success        bool      `json:"success"`
	Reason         string    `json:"reason,omitempty"`
	PlayerJoin     string    `json:"playerJoin,omitempty"` // resolved unique name
	CurrentPlayers int       `json:"currentPlayers,omitempty"`
	Capacity       int       `json:"capacity,omitempty"`
	AllPlayers     []*Player `json:"allPlayers,omitempty"`
}

// LeaveResult is the structured outcome of a leave or kick
type LeaveResult struct {
	Success    bool      `json:"success"`
	Reason     string    `json:"reason,omitempty"`
	Redirect   string    `json:"redirect,omitempty"`
	AllPlayers []*Player `json:"allPlayers,omitempty"`
}

// TimeIncrement is broadcast once per second while a room timer runs
type TimeIncrement struct {
	SecondsRemaining int  `json:"secondsRemaining"`
	IsPreTurnNotice  bool `json:"isPreTurnNotice"`
}

// NextTurn announces whose turn begins after an advance
type NextTurn struct {
	PlayerName string `json:"playerName"`
	IsVirtual  bool   `json:"isVirtual"`
}

// MoveStep is one intermediate position during an animated move
type MoveStep struct {
	PlayerName string   `json:"playerName"`
	Position   Position `json:"position"`
	Remaining  int      `json:"remaining"` // movement points left after the step
}

// CombatStart is broadcast when a fight begins
type CombatStart struct {
	SessionCode string    `json:"sessionCode"`
	Players     [2]string `json:"players"`
}

// CombatUpdate relays life totals after an exchange; the dice arithmetic
// happens on the caller's side
type CombatUpdate struct {
	AttackerLife int `json:"attackerLife"`
	DefenderLife int `json:"defenderLife"`
}

// CombatOutcome is broadcast when a fight ends
type CombatOutcome struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

// GlobalStats is the end-of-game statistics snapshot. Field names follow the
// established client contract.
type GlobalStats struct {
	AllTime           int `json:"allTime"`    // whole minutes of match duration
	SecondTime        int `json:"secondTime"` // leftover seconds
	PercentageOfTile  int `json:"percentageOfTile"`
	PercentageOfDors  int `json:"percentageOfDors"`
	NbrPlayerOpenDoor int `json:"nbrPlayerOpenDoor"`
	AllDoors          int `json:"allDoors"`
	NbOfTakenFleg     int `json:"nbOfTakenFleg"`
}

// RoomLockStatus is broadcast after a lock toggle
type RoomLockStatus struct {
	IsLocked bool `json:"isLocked"`
}

// GameOver announces the end of a match
type GameOver struct {
	Winner string `json:"winner,omitempty"`
	Reason string `json:"reason"`
}
