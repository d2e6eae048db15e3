package service

import (
	"gridclash/internal/model"
	"gridclash/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CombatService coordinates the ephemeral two-player combat session inside a
// room. The dice arithmetic happens on the caller's side; this service
// relays state, pauses the turn clock and settles the outcome.
type CombatService struct {
	store       *store.RoomStore
	broadcaster Broadcaster
	stats       *StatsService
	turns       *TurnService
	log         zerolog.Logger
}

// NewCombatService creates a new combat coordinator
func NewCombatService(roomStore *store.RoomStore, stats *StatsService, turns *TurnService, log zerolog.Logger) *CombatService {
	return &CombatService{
		store: roomStore,
		stats: stats,
		turns: turns,
		log:   log.With().Str("component", "combat").Logger(),
	}
}

// SetBroadcaster injects the WebSocket hub
func (s *CombatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartFight opens a combat session between two players, stops the room's
// turn clock for its duration and broadcasts the combatants.
func (s *CombatService) StartFight(code string, players [2]string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	attacker, _ := room.FindPlayer(players[0])
	defender, _ := room.FindPlayer(players[1])
	if attacker == nil || defender == nil || room.Combat != nil {
		room.Unlock()
		return
	}
	if room.ActivePlayer() == attacker && attacker.ActionsLeft > 0 {
		attacker.ActionsLeft--
	}
	session := &model.CombatSession{
		Code:           uuid.NewString(),
		Attacker:       attacker.Name,
		Defender:       defender.Name,
		AttackerLife:   attacker.Life,
		DefenderLife:   defender.Life,
		SavedRemaining: room.Turn.Remaining,
	}
	room.Combat = session
	room.Unlock()

	s.turns.StopTimer(room)

	s.log.Info().Str("room", code).Str("attacker", session.Attacker).Str("defender", session.Defender).Msg("fight started")
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtStartFight, model.CombatStart{
			SessionCode: session.Code,
			Players:     [2]string{session.Attacker, session.Defender},
		})
	}
}

// Update relays the combatants' life totals after an exchange and folds the
// deltas into the damage/life-lost counters.
func (s *CombatService) Update(code string, upd model.CombatUpdate) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	session := room.Combat
	if session == nil {
		room.Unlock()
		return
	}
	attackerHit := session.DefenderLife - upd.DefenderLife
	defenderHit := session.AttackerLife - upd.AttackerLife
	session.AttackerLife = upd.AttackerLife
	session.DefenderLife = upd.DefenderLife
	attacker, defender := session.Attacker, session.Defender
	room.Unlock()

	if attackerHit > 0 {
		s.stats.AddDamage(code, attacker, attackerHit)
		s.stats.AddLifeLost(code, defender, attackerHit)
	}
	if defenderHit > 0 {
		s.stats.AddDamage(code, defender, defenderHit)
		s.stats.AddLifeLost(code, attacker, defenderHit)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtCombatUpdate, upd)
	}
}

// Escaped ends the session after a successful evasion and restores the
// interrupted turn with the exact time it had left.
func (s *CombatService) Escaped(code, escapee string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	session := room.Combat
	if session == nil {
		room.Unlock()
		return
	}
	room.Combat = nil
	remaining := session.SavedRemaining
	room.Unlock()

	s.stats.AddEvasion(code, escapee)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtCombatEscaped, map[string]string{"playerName": escapee})
	}
	s.turns.ResumeTurn(room, remaining)
}

// Ended settles a finished fight: victory/defeat counters, loser item drops,
// teleport to spawn, then either resumes the winner's turn or ends the
// loser's turn immediately.
func (s *CombatService) Ended(code, winnerName, loserName string) {
	room := s.store.Get(code)
	if room == nil {
		return
	}

	room.Lock()
	session := room.Combat
	if session == nil {
		room.Unlock()
		return
	}
	winner, _ := room.FindPlayer(winnerName)
	loser, _ := room.FindPlayer(loserName)
	if winner == nil || loser == nil {
		room.Combat = nil
		room.Unlock()
		return
	}
	room.Combat = nil
	remaining := session.SavedRemaining

	// loser drops everything but permanent items, then returns to spawn
	kept := loser.Inventory[:0]
	for _, item := range loser.Inventory {
		if item.Permanent {
			kept = append(kept, item)
			continue
		}
		dropped := item
		target := model.NearestFree(room.Board, loser.Position)
		if tile := room.TileAt(target); tile != nil {
			tile.Item = &dropped
		}
	}
	loser.Inventory = kept

	if tile := room.TileAt(loser.Position); tile != nil && tile.Player == loser.Name {
		tile.Player = ""
	}
	respawn := loser.Spawn
	if tile := room.TileAt(respawn); tile == nil || tile.Player != "" {
		respawn = model.NearestFree(room.Board, loser.Spawn)
	}
	loser.Position = respawn
	if tile := room.TileAt(respawn); tile != nil {
		tile.Player = loser.Name
	}

	winnerVictories := winner.Stats.NbVictory + 1
	loserDefeats := loser.Stats.NbDefeat + 1
	winnerActive := room.ActivePlayer() == winner
	loserActive := room.ActivePlayer() == loser
	board := room.Board
	room.Unlock()

	s.stats.SetVictories(code, winnerName, winnerVictories)
	s.stats.SetDefeats(code, loserName, loserDefeats)
	s.stats.AddCombatForBot(code, winnerName)
	s.stats.AddCombatForBot(code, loserName)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(code, EvtUpdateBoard, board)
		s.broadcaster.BroadcastToRoom(code, EvtCombatEnded, model.CombatOutcome{
			Winner: winnerName,
			Loser:  loserName,
		})
	}

	if winnerVictories >= victoriesToWin {
		room.Lock()
		room.Stats.Winner = winnerName
		room.Unlock()
		s.turns.StopTimer(room)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToRoom(code, EvtGameOver, model.GameOver{
				Winner: winnerName,
				Reason: "victories",
			})
		}
		s.log.Info().Str("room", code).Str("winner", winnerName).Msg("match won by victories")
		return
	}

	if loserActive {
		// the eliminated player's turn ends regardless of remaining budget
		s.turns.EndTurn(room)
		return
	}

	if winnerActive {
		// the winner may still act; re-run the normal eligibility check
		room.Lock()
		exhausted := turnExhausted(room, winner)
		room.Unlock()
		if exhausted {
			s.turns.EndTurn(room)
			return
		}
	}
	s.turns.ResumeTurn(room, remaining)
}

// victoriesToWin ends the match when a player reaches this victory count
const victoriesToWin = 3
