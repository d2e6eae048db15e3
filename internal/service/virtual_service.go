package service

import (
	"fmt"
	"math/rand"
	"time"

	"gridclash/internal/model"
	"gridclash/internal/store"

	"github.com/rs/zerolog"
)

// Decider produces a virtual player's actions for one turn. The movement and
// combat heuristics live behind this interface; the coordinator only drives
// and retries them.
type Decider interface {
	Act(room *model.Room, playerName string) error
}

// botNames is the pool virtual players draw from; collisions fall back to
// the normal name-suffixing path.
var botNames = []string{"Marvin", "Hal", "Glados", "Bender", "Tars", "Kitt"}

// VirtualPlayerService admits and removes bots and drives their turns
type VirtualPlayerService struct {
	store       *store.RoomStore
	rooms       *RoomService
	turns       *TurnService
	broadcaster Broadcaster
	decider     Decider

	retryMax   int
	retryDelay time.Duration

	log zerolog.Logger
}

// NewVirtualPlayerService creates a new virtual-player coordinator
func NewVirtualPlayerService(roomStore *store.RoomStore, rooms *RoomService, turns *TurnService, retryMax int, retryDelay time.Duration, log zerolog.Logger) *VirtualPlayerService {
	s := &VirtualPlayerService{
		store:      roomStore,
		rooms:      rooms,
		turns:      turns,
		retryMax:   retryMax,
		retryDelay: retryDelay,
		log:        log.With().Str("component", "bots").Logger(),
	}
	s.decider = &endTurnDecider{turns: turns}
	return s
}

// SetBroadcaster injects the WebSocket hub
func (s *VirtualPlayerService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetDecider replaces the default decision heuristics
func (s *VirtualPlayerService) SetDecider(d Decider) {
	s.decider = d
}

// AddVirtualPlayer builds a bot with the requested aggression mode and admits
// it through the normal join path (capacity, lock and name rules apply).
func (s *VirtualPlayerService) AddVirtualPlayer(code string, mode model.AggressionMode) (*model.Player, error) {
	if mode != model.ModeAttacker && mode != model.ModeDefensive {
		return nil, fmt.Errorf("unknown aggression mode: %q", mode)
	}

	bot := &model.Player{
		Name:      botNames[rand.Intn(len(botNames))],
		Avatar:    fmt.Sprintf("bot-%d", rand.Intn(6)+1),
		IsVirtual: true,
		Mode:      mode,
		Life:      4,
		Speed:     4 + rand.Intn(3),
	}
	if rand.Intn(2) == 0 {
		bot.AttackDice, bot.DefenseDice = model.DiceD6, model.DiceD4
	} else {
		bot.AttackDice, bot.DefenseDice = model.DiceD4, model.DiceD6
	}

	result := s.rooms.JoinRoom(code, bot)
	if result == nil {
		// a nil result covers both a missing room and a deliberately dropped
		// join attempt on a locked one
		if s.store.Get(code) == nil {
			return nil, fmt.Errorf("%s", model.ReasonRoomNotFound)
		}
		return nil, fmt.Errorf("%s", model.ReasonRoomLocked)
	}
	if !result.Success {
		return nil, fmt.Errorf("%s", result.Reason)
	}

	s.log.Info().Str("room", code).Str("bot", bot.Name).Str("mode", string(mode)).Msg("virtual player added")
	return bot, nil
}

// RemoveVirtualPlayer removes a bot through the normal kick path
func (s *VirtualPlayerService) RemoveVirtualPlayer(code, name string) *model.LeaveResult {
	return s.rooms.KickPlayer(code, name)
}

// TriggerBotTurn drives the active virtual player's decision-making with a
// bounded retry loop. Called when the pre-turn notice of a bot's turn ends.
func (s *VirtualPlayerService) TriggerBotTurn(room *model.Room) {
	room.Lock()
	active := room.ActivePlayer()
	if active == nil || !active.IsVirtual {
		room.Unlock()
		return
	}
	name := active.Name
	room.Unlock()

	go s.driveBotTurn(room.Code, name)
}

// driveBotTurn retries the decider up to retryMax times with a fixed delay.
// Each attempt re-validates that the room still exists and the bot is still
// the active player; the room may have been destroyed since scheduling.
// Exhausted retries are swallowed and the turn is force-ended so a stalled
// bot never freezes the room.
func (s *VirtualPlayerService) driveBotTurn(code, name string) {
	for attempt := 1; attempt <= s.retryMax; attempt++ {
		room := s.store.Get(code)
		if room == nil {
			return
		}
		room.Lock()
		active := room.ActivePlayer()
		stale := active == nil || active.Name != name || room.Turn.Notice
		room.Unlock()
		if stale {
			return
		}

		err := s.decider.Act(room, name)
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Str("room", code).Str("bot", name).Int("attempt", attempt).Msg("bot action failed")
		time.Sleep(s.retryDelay)
	}

	// the force-end itself must re-validate: the turn may have rotated past
	// the bot during the last retry delay, and ending it again would skip
	// the next player
	room := s.store.Get(code)
	if room == nil {
		return
	}
	room.Lock()
	active := room.ActivePlayer()
	stale := active == nil || active.Name != name || room.Turn.Notice
	room.Unlock()
	if stale {
		return
	}

	s.log.Error().Str("room", code).Str("bot", name).Msg("bot retries exhausted, ending its turn")
	s.turns.EndTurn(room)
}

// endTurnDecider is the fallback decider: the bot simply passes. Real
// heuristics are injected by the caller.
type endTurnDecider struct {
	turns *TurnService
}

func (d *endTurnDecider) Act(room *model.Room, _ string) error {
	d.turns.EndTurn(room)
	return nil
}
