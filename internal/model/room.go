package model

import (
	"sync"
	"time"
)

// TurnState is the per-room countdown state. At most one live countdown
// goroutine exists per room; its identity is the Stop channel.
type TurnState struct {
	ActiveIndex int  `json:"activeIndex"`
	Remaining   int  `json:"remaining"`
	Notice      bool `json:"notice"` // pre-turn notification in progress

	Stop chan struct{} `json:"-"` // nil when no countdown is running
}

// RoomStats is the per-room statistics block
type RoomStats struct {
	StartedAt time.Time `json:"startedAt"`

	// door-manipulation ledger: a door counts once no matter how often toggled
	DoorsToggled map[Position]struct{} `json:"-"`
	// room-wide visit ledger, union of all player visits
	Visited map[Position]struct{} `json:"-"`

	TotalDoors  int    `json:"totalDoors"`
	FlagPickups int    `json:"flagPickups"`
	Winner      string `json:"winner,omitempty"`
}

// CombatSession is the ephemeral two-player sub-match nested inside a room
type CombatSession struct {
	Code           string `json:"code"`
	Attacker       string `json:"attacker"`
	Defender       string `json:"defender"`
	AttackerLife   int    `json:"attackerLife"`
	DefenderLife   int    `json:"defenderLife"`
	SavedRemaining int    `json:"-"` // turn seconds left when combat paused the clock
}

// Room is the aggregate owning all mutable state of one match. Every
// component reads and writes through this struct; unrelated rooms share
// nothing. Handlers lock the room for the duration of a mutation.
type Room struct {
	sync.Mutex `json:"-"`

	Code    string    `json:"code"`
	Game    *Game     `json:"game"`
	Size    SizeClass `json:"size"`
	Locked  bool      `json:"locked"`
	Started bool      `json:"started"`

	// set on teardown; holders of a stale pointer must not restart anything
	Destroyed bool `json:"-"`

	Players []*Player  `json:"players"` // insertion order = join order = turn order
	Board   [][]*Tile  `json:"board"`
	Spawns  []Position `json:"-"`

	Turn   TurnState      `json:"turn"`
	Combat *CombatSession `json:"-"`
	Stats  RoomStats      `json:"stats"`
}

// NewRoom builds the aggregate for a freshly created room
func NewRoom(code string, game *Game) *Room {
	board, spawns := BuildBoard(game)
	return &Room{
		Code:   code,
		Game:   game,
		Size:   game.Size,
		Board:  board,
		Spawns: spawns,
		Stats: RoomStats{
			DoorsToggled: make(map[Position]struct{}),
			Visited:      make(map[Position]struct{}),
			TotalDoors:   CountDoors(board),
		},
	}
}

// FindPlayer returns the player with the given resolved name and its index,
// or (nil, -1)
func (r *Room) FindPlayer(name string) (*Player, int) {
	for i, p := range r.Players {
		if p.Name == name {
			return p, i
		}
	}
	return nil, -1
}

// ActivePlayer returns the player whose turn it is, or nil before game start
func (r *Room) ActivePlayer() *Player {
	if r.Turn.ActiveIndex < 0 || r.Turn.ActiveIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.Turn.ActiveIndex]
}

// Capacity returns the max player count for the room's size class
func (r *Room) Capacity() int {
	return SizeTable[r.Size].MaxPlayers
}

// TileAt returns the board tile at pos, nil when out of bounds
func (r *Room) TileAt(pos Position) *Tile {
	return TileAt(r.Board, pos)
}
