package service

import (
	"gridclash/internal/model"
	"gridclash/internal/store"

	"github.com/rs/zerolog"
)

// ActionService arbitrates movement, door toggling and item handling against
// the authoritative board held in the room registry.
type ActionService struct {
	store       *store.RoomStore
	broadcaster Broadcaster
	stats       *StatsService
	turns       *TurnService
	log         zerolog.Logger
}

// NewActionService creates a new action arbitration service
func NewActionService(roomStore *store.RoomStore, stats *StatsService, turns *TurnService, log zerolog.Logger) *ActionService {
	return &ActionService{
		store: roomStore,
		stats: stats,
		turns: turns,
		log:   log.With().Str("component", "actions").Logger(),
	}
}

// SetBroadcaster injects the WebSocket hub
func (s *ActionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// MovePlayer validates and commits a tile-by-tile path for the active
// player. Each committed step is broadcast in order, then the final board.
// Movement stops at the first invalid step or when a pickup fills the
// inventory and the player must choose an item to drop.
func (s *ActionService) MovePlayer(code, name string, path []model.Position) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	player, _ := room.FindPlayer(name)
	if player == nil || room.ActivePlayer() != player || room.Turn.Notice {
		room.Unlock()
		return
	}

	var steps []model.MoveStep
	inventoryFull := false

	for _, next := range path {
		tile := room.TileAt(next)
		if tile == nil || !adjacent(player.Position, next) {
			break
		}
		if !tile.Traversable() || tile.Player != "" {
			break
		}
		cost := tile.Cost()
		if cost > player.MovementLeft {
			break
		}

		if origin := room.TileAt(player.Position); origin != nil {
			origin.Player = ""
		}
		tile.Player = player.Name
		player.Position = next
		player.MovementLeft -= cost
		player.MarkVisited()
		room.Stats.Visited[next] = struct{}{}

		steps = append(steps, model.MoveStep{
			PlayerName: player.Name,
			Position:   next,
			Remaining:  player.MovementLeft,
		})

		if tile.Item != nil {
			if len(player.Inventory) < model.MaxInventory {
				player.Inventory = append(player.Inventory, *tile.Item)
				if tile.Item.Kind == model.ItemFlag {
					room.Stats.FlagPickups++
				}
				tile.Item = nil
			} else {
				inventoryFull = true
				break
			}
		}
	}
	board := room.Board
	inventory := append([]model.Item(nil), player.Inventory...)
	room.Unlock()

	if len(steps) == 0 {
		return
	}
	if s.broadcaster != nil {
		for _, step := range steps {
			s.broadcaster.BroadcastToRoom(code, EvtAnimatePlayerMove, step)
		}
		s.broadcaster.BroadcastToRoom(code, EvtUpdateBoard, board)
		if inventoryFull {
			s.broadcaster.SendToPlayer(code, name, EvtInventoryFull, inventory)
		}
	}

	s.stats.UpdateExploration(code, name)
	s.autoEndTurn(room, name)
}

// ToggleDoor flips an adjacent door tile between its open and closed states.
// The first manipulation of a given door is recorded in the room's door
// ledger and credited to the acting player.
func (s *ActionService) ToggleDoor(code, name string, pos model.Position) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	player, _ := room.FindPlayer(name)
	tile := room.TileAt(pos)
	if player == nil || tile == nil || tile.Terrain != model.TerrainDoor ||
		room.ActivePlayer() != player || room.Turn.Notice ||
		player.ActionsLeft <= 0 || !adjacent(player.Position, pos) {
		room.Unlock()
		return
	}

	tile.Open = !tile.Open
	player.ActionsLeft--

	if _, counted := room.Stats.DoorsToggled[pos]; !counted {
		room.Stats.DoorsToggled[pos] = struct{}{}
		player.Stats.DoorsManipulated++
	}
	board := room.Board
	room.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtUpdateBoard, board)
	}
	s.autoEndTurn(room, name)
}

// ItemChoice removes the chosen item from the player's inventory and places
// it on the closest free tile around the player. A player with an empty
// inventory still gets a well-formed board broadcast and nothing changes.
// A flag dropped by a player not currently taking their turn is an
// elimination drop, not a voluntary choice.
func (s *ActionService) ItemChoice(code, name string, kind model.ItemKind) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	player, _ := room.FindPlayer(name)
	if player == nil {
		room.Unlock()
		return
	}

	if item, held := player.RemoveItem(kind); held {
		target := model.NearestFree(room.Board, player.Position)
		if tile := room.TileAt(target); tile != nil {
			tile.Item = &item
		}
		if kind == model.ItemFlag && room.ActivePlayer() != player {
			s.log.Info().Str("room", code).Str("player", name).Msg("flag dropped by eliminated player")
		}
	}
	board := room.Board
	room.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtUpdateBoard, board)
	}
}

// CanEndTurn reports whether the player's turn is exhausted: the reachable
// set has collapsed to the player's own tile and either the action budget is
// spent or no adjacent door remains to interact with.
func (s *ActionService) CanEndTurn(code, name string) bool {
	room := s.store.Get(code)
	if room == nil {
		return false
	}
	room.Lock()
	defer room.Unlock()

	player, _ := room.FindPlayer(name)
	if player == nil {
		return false
	}
	return turnExhausted(room, player)
}

func turnExhausted(room *model.Room, player *model.Player) bool {
	reachable := model.Reachable(room.Board, player.Position, player.MovementLeft)
	if len(reachable) > 1 {
		return false
	}

	if player.ActionsLeft <= 0 {
		return true
	}
	for _, n := range model.Neighbors(room.Board, player.Position) {
		if room.Board[n.Y][n.X].Terrain == model.TerrainDoor {
			return false
		}
	}
	return true
}

// autoEndTurn ends the active turn when no legal action remains
func (s *ActionService) autoEndTurn(room *model.Room, name string) {
	room.Lock()
	player, _ := room.FindPlayer(name)
	exhausted := player != nil && room.ActivePlayer() == player && !room.Turn.Notice &&
		turnExhausted(room, player)
	room.Unlock()

	if exhausted {
		s.turns.EndTurn(room)
	}
}

// QuitGame removes a quitting player's board presence mid-match, dropping
// its items. When only one player remains the match is declared over.
func (s *ActionService) QuitGame(code, name string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	player, idx := room.FindPlayer(name)
	if player == nil {
		room.Unlock()
		return
	}

	if tile := room.TileAt(player.Position); tile != nil && tile.Player == player.Name {
		tile.Player = ""
	}
	for _, item := range player.Inventory {
		dropped := item
		target := model.NearestFree(room.Board, player.Position)
		if tile := room.TileAt(target); tile != nil {
			tile.Item = &dropped
		}
	}
	player.Inventory = nil

	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	if room.Turn.ActiveIndex > idx {
		room.Turn.ActiveIndex--
	}
	if room.Turn.ActiveIndex >= len(room.Players) {
		room.Turn.ActiveIndex = 0
	}

	lastStanding := ""
	if len(room.Players) == 1 {
		lastStanding = room.Players[0].Name
		room.Stats.Winner = lastStanding
	}
	board := room.Board
	players := room.Players
	room.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtUpdateBoard, board)
		s.broadcaster.BroadcastToRoom(code, EvtUpdatePlayers, players)
	}

	if lastStanding != "" {
		s.turns.StopTimer(room)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToRoom(code, EvtGameOver, model.GameOver{
				Winner: lastStanding,
				Reason: "lastPlayerStanding",
			})
		}
		s.log.Info().Str("room", code).Str("winner", lastStanding).Msg("match over, single player remains")
	}
}

func adjacent(a, b model.Position) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx+dy == 1
}
