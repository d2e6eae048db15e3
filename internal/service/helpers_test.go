package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"gridclash/internal/cache"
	"gridclash/internal/model"
	"gridclash/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type sentMsg struct {
	Room    string
	Player  string // empty for room-wide broadcasts
	Type    string
	Payload interface{}
}

// fakeBroadcaster records everything the services emit
type fakeBroadcaster struct {
	mu           sync.Mutex
	messages     []sentMsg
	disconnected []string
}

func (f *fakeBroadcaster) BroadcastToRoom(roomCode string, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMsg{Room: roomCode, Type: msgType, Payload: payload})
}

func (f *fakeBroadcaster) SendToPlayer(roomCode, playerName string, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMsg{Room: roomCode, Player: playerName, Type: msgType, Payload: payload})
}

func (f *fakeBroadcaster) DisconnectRoom(roomCode string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = append(f.disconnected, roomCode)
}

func (f *fakeBroadcaster) all() []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMsg, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *fakeBroadcaster) ofType(msgType string) []sentMsg {
	var out []sentMsg
	for _, m := range f.all() {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeBroadcaster) last(msgType string) (sentMsg, bool) {
	msgs := f.ofType(msgType)
	if len(msgs) == 0 {
		return sentMsg{}, false
	}
	return msgs[len(msgs)-1], true
}

func (f *fakeBroadcaster) droppedRooms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.disconnected))
	copy(out, f.disconnected)
	return out
}

// fakeLeaderboard records victory pushes in memory
type fakeLeaderboard struct {
	mu     sync.Mutex
	scores map[string]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]int)}
}

func (f *fakeLeaderboard) AddVictories(_ context.Context, playerName string, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[playerName] += n
	return nil
}

func (f *fakeLeaderboard) GetTop(_ context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]cache.LeaderboardEntry, 0, len(f.scores))
	for name, score := range f.scores {
		entries = append(entries, cache.LeaderboardEntry{PlayerName: name, Victories: score})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Victories > entries[j].Victories })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeLeaderboard) score(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scores[name]
}

// fixture wires the full service graph against fakes, with a fast clock
type fixture struct {
	store   *store.RoomStore
	rooms   *RoomService
	turns   *TurnService
	stats   *StatsService
	actions *ActionService
	combat  *CombatService
	bots    *VirtualPlayerService
	board   *fakeLeaderboard
	bc      *fakeBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	f := &fixture{
		store: store.NewRoomStore(),
		board: newFakeLeaderboard(),
		bc:    &fakeBroadcaster{},
	}
	f.rooms = NewRoomService(f.store, nil, f.board, log)
	// 2-second turns, 1-second notices, with a 30ms "second" so phase
	// changes outlive the polling interval of the assertions
	f.turns = NewTurnService(2, 1, 30*time.Millisecond, log)
	f.stats = NewStatsService(f.store, log)
	f.actions = NewActionService(f.store, f.stats, f.turns, log)
	f.combat = NewCombatService(f.store, f.stats, f.turns, log)
	f.bots = NewVirtualPlayerService(f.store, f.rooms, f.turns, 2, time.Millisecond, log)

	f.rooms.SetTimerControl(f.turns)
	f.turns.SetBotDriver(f.bots)
	f.rooms.SetBroadcaster(f.bc)
	f.turns.SetBroadcaster(f.bc)
	f.actions.SetBroadcaster(f.bc)
	f.combat.SetBroadcaster(f.bc)
	f.bots.SetBroadcaster(f.bc)
	return f
}

// testGame builds an all-ground game with one spawn marker per seat along
// the top row
func testGame(size model.SizeClass) *model.Game {
	grid := model.SizeTable[size].Grid
	base := make([][]model.LayerCell, grid)
	overlay := make([][]model.LayerCell, grid)
	for y := 0; y < grid; y++ {
		base[y] = make([]model.LayerCell, grid)
		overlay[y] = make([]model.LayerCell, grid)
	}
	for i := 0; i < model.SizeTable[size].MaxPlayers; i++ {
		overlay[0][i].Spawn = true
	}
	return &model.Game{
		Name:    "fixture",
		Size:    size,
		Base:    base,
		Overlay: overlay,
		Visible: true,
	}
}

func (f *fixture) createRoom(t *testing.T, size model.SizeClass) *model.Room {
	t.Helper()
	room, err := f.rooms.CreateRoomFromGame(testGame(size))
	require.NoError(t, err)
	t.Cleanup(func() { f.rooms.DestroyRoom(room.Code) })
	return room
}

func newPlayer(name string) *model.Player {
	return &model.Player{
		Name:        name,
		Life:        4,
		Speed:       4,
		AttackDice:  model.DiceD6,
		DefenseDice: model.DiceD4,
	}
}

func (f *fixture) join(t *testing.T, room *model.Room, name string) *model.Player {
	t.Helper()
	p := newPlayer(name)
	result := f.rooms.JoinRoom(room.Code, p)
	require.NotNil(t, result)
	require.True(t, result.Success)
	return p
}

// seat places an already-joined player at an exact board position with a
// fresh turn budget, bypassing the spawn layout
func seat(room *model.Room, p *model.Player, pos model.Position) {
	room.Lock()
	defer room.Unlock()
	room.Started = true
	p.Position = pos
	p.Spawn = pos
	p.ResetTurn()
	p.MarkVisited()
	room.Stats.Visited[pos] = struct{}{}
	if tile := room.TileAt(pos); tile != nil {
		tile.Player = p.Name
	}
}

func turnSnapshot(room *model.Room) model.TurnState {
	room.Lock()
	defer room.Unlock()
	return model.TurnState{
		ActiveIndex: room.Turn.ActiveIndex,
		Remaining:   room.Turn.Remaining,
		Notice:      room.Turn.Notice,
	}
}
