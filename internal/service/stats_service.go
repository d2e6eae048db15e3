package service

import (
	"time"

	"gridclash/internal/model"
	"gridclash/internal/store"

	"github.com/rs/zerolog"
)

// StatsService is the only writer of the per-player statistics counters.
// Everything is keyed by (roomCode, playerName).
type StatsService struct {
	store *store.RoomStore
	log   zerolog.Logger
}

// NewStatsService creates a new statistics aggregator
func NewStatsService(roomStore *store.RoomStore, log zerolog.Logger) *StatsService {
	return &StatsService{
		store: roomStore,
		log:   log.With().Str("component", "stats").Logger(),
	}
}

// withPlayer runs fn on the named player under the room lock
func (s *StatsService) withPlayer(code, name string, fn func(room *model.Room, p *model.Player)) {
	room := s.store.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	defer room.Unlock()
	player, _ := room.FindPlayer(name)
	if player == nil {
		return
	}
	fn(room, player)
}

// SetVictories assigns the victory count and re-derives the combat total
func (s *StatsService) SetVictories(code, name string, n int) {
	s.withPlayer(code, name, func(_ *model.Room, p *model.Player) {
		p.Stats.NbVictory = n
		p.Stats.NbCombat = p.Stats.NbVictory + p.Stats.NbDefeat
	})
}

// SetDefeats assigns the defeat count and re-derives the combat total
func (s *StatsService) SetDefeats(code, name string, n int) {
	s.withPlayer(code, name, func(_ *model.Room, p *model.Player) {
		p.Stats.NbDefeat = n
		p.Stats.NbCombat = p.Stats.NbVictory + p.Stats.NbDefeat
	})
}

// AddDamage accumulates damage dealt
func (s *StatsService) AddDamage(code, name string, amount int) {
	s.withPlayer(code, name, func(_ *model.Room, p *model.Player) {
		p.Stats.DamageDealt += amount
	})
}

// AddLifeLost accumulates life lost
func (s *StatsService) AddLifeLost(code, name string, amount int) {
	s.withPlayer(code, name, func(_ *model.Room, p *model.Player) {
		p.Stats.LifeLost += amount
	})
}

// AddEvasion counts a successful combat escape
func (s *StatsService) AddEvasion(code, name string) {
	s.withPlayer(code, name, func(_ *model.Room, p *model.Player) {
		p.Stats.NbEvasion++
	})
}

// AddCombatForBot applies the extra combat-count increment virtual players
// get, since they never receive a "you fought" event of their own
func (s *StatsService) AddCombatForBot(code, name string) {
	s.withPlayer(code, name, func(_ *model.Room, p *model.Player) {
		if p.IsVirtual {
			p.Stats.NbCombat++
		}
	})
}

// UpdateExploration recomputes the player's rounded-up exploration percent.
// Called on every movement event.
func (s *StatsService) UpdateExploration(code, name string) {
	s.withPlayer(code, name, func(room *model.Room, p *model.Player) {
		total := model.SizeTable[room.Size].Grid * model.SizeTable[room.Size].Grid
		p.Stats.TilePercentage = ceilPct(len(p.Visited), total)
	})
}

// GlobalSnapshot assembles the end-of-game statistics block for a room
func (s *StatsService) GlobalSnapshot(code string) *model.GlobalStats {
	room := s.store.Get(code)
	if room == nil {
		return nil
	}
	room.Lock()
	defer room.Unlock()

	elapsed := int(time.Since(room.Stats.StartedAt) / time.Second)
	if room.Stats.StartedAt.IsZero() {
		elapsed = 0
	}
	total := model.SizeTable[room.Size].Grid * model.SizeTable[room.Size].Grid

	openedBy := 0
	for _, p := range room.Players {
		if p.Stats.DoorsManipulated > 0 {
			openedBy++
		}
	}

	return &model.GlobalStats{
		AllTime:           elapsed / 60,
		SecondTime:        elapsed % 60,
		PercentageOfTile:  ceilPct(len(room.Stats.Visited), total),
		PercentageOfDors:  ceilPct(len(room.Stats.DoorsToggled), room.Stats.TotalDoors),
		NbrPlayerOpenDoor: openedBy,
		AllDoors:          room.Stats.TotalDoors,
		NbOfTakenFleg:     room.Stats.FlagPickups,
	}
}

// ceilPct is the rounded-up percentage of part over total, 0 when total is 0
func ceilPct(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part*100 + total - 1) / total
}
