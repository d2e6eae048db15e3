package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"gridclash/internal/cache"
	"gridclash/internal/model"
	"gridclash/internal/repository"
	"gridclash/internal/store"

	"github.com/rs/zerolog"
)

// TimerControl is the narrow slice of the turn engine the room service needs:
// starting the opening countdown and stopping the clock during teardown.
type TimerControl interface {
	StartNotice(room *model.Room)
	StopTimer(room *model.Room)
}

// RoomService handles room lifecycle and player admission
type RoomService struct {
	store       *store.RoomStore
	gameRepo    repository.GameRepo
	leaderboard cache.LeaderboardCache
	broadcaster Broadcaster
	timers      TimerControl
	log         zerolog.Logger
}

// NewRoomService creates a new room service
func NewRoomService(roomStore *store.RoomStore, gameRepo repository.GameRepo, leaderboard cache.LeaderboardCache, log zerolog.Logger) *RoomService {
	return &RoomService{
		store:       roomStore,
		gameRepo:    gameRepo,
		leaderboard: leaderboard,
		log:         log.With().Str("component", "rooms").Logger(),
	}
}

// SetBroadcaster injects the WebSocket hub
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetTimerControl injects the turn engine
func (s *RoomService) SetTimerControl(t TimerControl) {
	s.timers = t
}

// CreateRoom validates the size class, loads the game document, builds the
// board and registers the room. Returns the new room with its unique code.
func (s *RoomService) CreateRoom(ctx context.Context, gameID string, size model.SizeClass) (*model.Room, error) {
	if _, ok := model.SizeTable[size]; !ok {
		return nil, fmt.Errorf("%s: %q", model.ReasonInvalidRoomSize, size)
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game not found")
	}
	game.Size = size

	return s.CreateRoomFromGame(game)
}

// CreateRoomFromGame registers a room for an already-loaded game definition
func (s *RoomService) CreateRoomFromGame(game *model.Game) (*model.Room, error) {
	if _, ok := model.SizeTable[game.Size]; !ok {
		return nil, fmt.Errorf("%s: %q", model.ReasonInvalidRoomSize, game.Size)
	}

	code, err := s.generateRoomCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	room := model.NewRoom(code, game)
	if !s.store.Put(room) {
		return nil, fmt.Errorf("room code collision: %s", code)
	}

	s.log.Info().Str("room", code).Str("game", game.Name).Str("size", string(game.Size)).Msg("room created")
	return room, nil
}

// Room returns the live aggregate for a code, or nil when no such room exists
func (s *RoomService) Room(code string) *model.Room {
	return s.store.Get(code)
}

// JoinRoom admits a player. A nil result means the attempt was deliberately
// dropped: locked room, unknown room, or empty name (stale join races are
// quiet by contract). A full room yields a structured roomFull result.
func (s *RoomService) JoinRoom(code string, player *model.Player) *model.JoinResult {
	if player == nil || player.Name == "" {
		return nil
	}
	room := s.store.Get(code)
	if room == nil {
		return nil
	}

	room.Lock()
	defer room.Unlock()

	if room.Locked {
		return nil
	}
	if len(room.Players) >= room.Capacity() {
		return &model.JoinResult{
			Success:        false,
			Reason:         model.ReasonRoomFull,
			CurrentPlayers: len(room.Players),
			Capacity:       room.Capacity(),
		}
	}

	player.Name = resolveName(room, player.Name)
	player.IsAdmin = len(room.Players) == 0
	player.Visited = make(map[model.Position]struct{})
	room.Players = append(room.Players, player)

	result := &model.JoinResult{
		Success:    true,
		PlayerJoin: player.Name,
		AllPlayers: room.Players,
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtUpdatePlayers, room.Players)
	}
	return result
}

// resolveName returns the desired name unchanged when free, otherwise the
// smallest-suffixed variant (base-2, base-3, …) not already taken.
func resolveName(room *model.Room, base string) string {
	taken := func(name string) bool {
		_, i := room.FindPlayer(name)
		return i >= 0
	}
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// LeaveRoom removes a player. The administrator leaving destroys the whole
// room; so does the last remaining player leaving voluntarily.
func (s *RoomService) LeaveRoom(code, name string) *model.LeaveResult {
	room := s.store.Get(code)
	if room == nil {
		return &model.LeaveResult{Success: false, Reason: model.ReasonRoomNotFound}
	}

	room.Lock()
	player, idx := room.FindPlayer(name)
	if player == nil {
		room.Unlock()
		return &model.LeaveResult{Success: false, Reason: model.ReasonPlayerNotFound}
	}

	if idx == 0 {
		room.Unlock()
		s.DestroyRoom(code)
		return &model.LeaveResult{Success: true, Redirect: "/home"}
	}

	s.removePlayerLocked(room, idx)
	remaining := room.Players
	room.Unlock()

	if len(remaining) == 0 {
		s.DestroyRoom(code)
		return &model.LeaveResult{Success: true, Redirect: "/home"}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtUpdatePlayers, remaining)
	}
	return &model.LeaveResult{Success: true, Redirect: "/home", AllPlayers: remaining}
}

// KickPlayer removes a player through the same path as a voluntary leave.
// Notifying the kicked player's own connection is the caller's job.
func (s *RoomService) KickPlayer(code, name string) *model.LeaveResult {
	return s.LeaveRoom(code, name)
}

// removePlayerLocked splices the player out, clears its board presence and
// keeps the turn index pointing at the same active player. Caller holds the lock.
func (s *RoomService) removePlayerLocked(room *model.Room, idx int) {
	player := room.Players[idx]
	if tile := room.TileAt(player.Position); tile != nil && tile.Player == player.Name {
		tile.Player = ""
	}
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	if room.Turn.ActiveIndex > idx {
		room.Turn.ActiveIndex--
	}
	if room.Turn.ActiveIndex >= len(room.Players) {
		room.Turn.ActiveIndex = 0
	}
}

// IsRoomFull reports whether the room is at its size-class capacity
func (s *RoomService) IsRoomFull(code string) bool {
	room := s.store.Get(code)
	if room == nil {
		return false
	}
	room.Lock()
	defer room.Unlock()
	return len(room.Players) >= room.Capacity()
}

// IsRoomLocked reports the room's lock flag
func (s *RoomService) IsRoomLocked(code string) bool {
	room := s.store.Get(code)
	if room == nil {
		return false
	}
	room.Lock()
	defer room.Unlock()
	return room.Locked
}

// ToggleRoomLock sets the lock flag and broadcasts the resulting status.
// Unlocking a room already at capacity is silently refused; the broadcast
// then carries the unchanged value and the client renders a message.
func (s *RoomService) ToggleRoomLock(code string, locked bool) {
	room := s.store.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	if locked || len(room.Players) < room.Capacity() {
		room.Locked = locked
	}
	status := model.RoomLockStatus{IsLocked: room.Locked}
	room.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtRoomLockStatus, status)
	}
}

// IsFirstPlayer resolves the possibly-suffixed identity of the given base
// name and reports whether that player is the administrator.
func (s *RoomService) IsFirstPlayer(code, name string) bool {
	room := s.store.Get(code)
	if room == nil {
		return false
	}
	room.Lock()
	defer room.Unlock()

	if player, _ := room.FindPlayer(name); player != nil {
		return player.IsAdmin
	}
	for _, p := range room.Players {
		if strings.HasPrefix(p.Name, name+"-") {
			return p.IsAdmin
		}
	}
	return false
}

// StartGame locks the room, seats every player on a spawn tile and kicks off
// the first pre-turn notice.
func (s *RoomService) StartGame(code string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	if room.Started {
		room.Unlock()
		return
	}
	room.Started = true
	room.Locked = true
	room.Stats.StartedAt = time.Now()
	room.Turn.ActiveIndex = 0

	for i, p := range room.Players {
		spawn := p.Spawn
		if len(room.Spawns) > 0 {
			spawn = room.Spawns[i%len(room.Spawns)]
		}
		// spawn markers can be fewer than seats; never stack two players
		if tile := room.TileAt(spawn); tile == nil || tile.Player != "" {
			spawn = model.NearestFree(room.Board, spawn)
		}
		p.Spawn = spawn
		p.Position = p.Spawn
		p.ResetTurn()
		p.MarkVisited()
		room.Stats.Visited[p.Position] = struct{}{}
		if tile := room.TileAt(p.Position); tile != nil {
			tile.Player = p.Name
		}
	}
	room.Unlock()

	s.log.Info().Str("room", code).Int("players", len(room.Players)).Msg("game started")
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtUpdateBoard, room.Board)
	}
	if s.timers != nil {
		s.timers.StartNotice(room)
	}
}

// DestroyRoom tears a room down: the timer is stopped, final victory counts
// are pushed to the all-time leaderboard, connections are dropped and the
// registry entry is deleted. Safe to call for an already-deleted code.
func (s *RoomService) DestroyRoom(code string) {
	room := s.store.Delete(code)
	if room == nil {
		return
	}

	room.Lock()
	room.Destroyed = true
	started := room.Started
	players := room.Players
	room.Unlock()

	if s.timers != nil {
		s.timers.StopTimer(room)
	}

	if started && s.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, p := range players {
			if p.Stats.NbVictory == 0 || p.IsVirtual {
				continue
			}
			if err := s.leaderboard.AddVictories(ctx, p.Name, p.Stats.NbVictory); err != nil {
				s.log.Warn().Err(err).Str("player", p.Name).Msg("leaderboard update failed")
			}
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.DisconnectRoom(code)
	}
	s.log.Info().Str("room", code).Msg("room destroyed")
}

// generateRoomCode creates a unique 4-digit PIN
func (s *RoomService) generateRoomCode() (string, error) {
	const digits = "0123456789"
	const codeLen = 4

	for attempts := 0; attempts < 100; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		for i := range b {
			b[i] = digits[int(b[i])%len(digits)]
		}
		code := string(b)
		if !s.store.Exists(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique room code")
}
