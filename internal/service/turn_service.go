package service

import (
	"time"

	"gridclash/internal/model"

	"github.com/rs/zerolog"
)

// BotDriver reacts to a virtual player's turn beginning
type BotDriver interface {
	TriggerBotTurn(room *model.Room)
}

// TurnService drives the per-room countdown state machine:
// Idle → PreTurnNotice → ActiveTurn → advance → PreTurnNotice …
type TurnService struct {
	broadcaster Broadcaster
	bots        BotDriver

	turnSeconds   int
	noticeSeconds int
	tick          time.Duration

	log zerolog.Logger
}

// NewTurnService creates a new turn engine. tick is the real-time length of
// one countdown second (tests shrink it).
func NewTurnService(turnSeconds, noticeSeconds int, tick time.Duration, log zerolog.Logger) *TurnService {
	return &TurnService{
		turnSeconds:   turnSeconds,
		noticeSeconds: noticeSeconds,
		tick:          tick,
		log:           log.With().Str("component", "turns").Logger(),
	}
}

// SetBroadcaster injects the WebSocket hub
func (s *TurnService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetBotDriver injects the virtual-player coordinator
func (s *TurnService) SetBotDriver(d BotDriver) {
	s.bots = d
}

// StartNotice announces the active player and starts the pre-turn countdown
func (s *TurnService) StartNotice(room *model.Room) {
	room.Lock()
	room.Turn.Notice = true
	room.Turn.Remaining = s.noticeSeconds
	active := room.ActivePlayer()
	room.Unlock()

	if active != nil && s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(room.Code, EvtNextTurn, model.NextTurn{
			PlayerName: active.Name,
			IsVirtual:  active.IsVirtual,
		})
	}
	s.StartTimer(room)
}

// StartTimer begins ticking the room's countdown. Calling it while a
// countdown is already running is a no-op, never a reset. A destroyed room
// is refused: combat pauses leave Stop nil, so a stale pointer could
// otherwise revive a countdown for a room the registry no longer holds.
func (s *TurnService) StartTimer(room *model.Room) {
	room.Lock()
	if room.Destroyed || room.Turn.Stop != nil {
		room.Unlock()
		return
	}
	stop := make(chan struct{})
	room.Turn.Stop = stop
	room.Unlock()

	go s.run(room, stop)
}

// ResumeTurn restarts an interrupted active turn with the exact remaining
// seconds it had (combat escape path)
func (s *TurnService) ResumeTurn(room *model.Room, remaining int) {
	room.Lock()
	room.Turn.Notice = false
	room.Turn.Remaining = remaining
	room.Unlock()
	s.StartTimer(room)
}

// StopTimer clears the room's countdown. Idempotent and always safe to call.
func (s *TurnService) StopTimer(room *model.Room) {
	room.Lock()
	if room.Turn.Stop != nil {
		close(room.Turn.Stop)
		room.Turn.Stop = nil
	}
	room.Unlock()
}

// EndTurn forcibly ends the active turn: the countdown stops, the next
// player is selected and a fresh pre-turn notice begins.
func (s *TurnService) EndTurn(room *model.Room) {
	room.Lock()
	if room.Turn.Stop != nil {
		close(room.Turn.Stop)
		room.Turn.Stop = nil
	}
	s.advanceLocked(room)
	room.Unlock()

	s.StartNotice(room)
}

// advanceLocked picks the next player in join order and resets its per-turn
// budget. Caller holds the room lock.
func (s *TurnService) advanceLocked(room *model.Room) {
	if len(room.Players) == 0 {
		return
	}
	room.Turn.ActiveIndex = (room.Turn.ActiveIndex + 1) % len(room.Players)
	room.ActivePlayer().ResetTurn()
}

func (s *TurnService) run(room *model.Room, stop chan struct{}) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.handleTick(room, stop) {
				return
			}
		}
	}
}

// handleTick processes one countdown second. It re-validates that the stop
// handle still belongs to this goroutine: the room may have been destroyed
// or the timer replaced since the tick was scheduled.
func (s *TurnService) handleTick(room *model.Room, stop chan struct{}) bool {
	room.Lock()
	if room.Turn.Stop != stop {
		room.Unlock()
		return false
	}

	room.Turn.Remaining--
	remaining := room.Turn.Remaining
	notice := room.Turn.Notice

	if remaining > 0 {
		room.Unlock()
		s.broadcastTime(room.Code, remaining, notice)
		return true
	}

	if notice {
		// notice expired: the active turn proper begins
		room.Turn.Notice = false
		room.Turn.Remaining = s.turnSeconds
		active := room.ActivePlayer()
		room.Unlock()

		s.broadcastTime(room.Code, 0, true)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToRoom(room.Code, EvtEndOfNotice, model.TimeIncrement{
				SecondsRemaining: s.turnSeconds,
				IsPreTurnNotice:  false,
			})
		}
		if active != nil && active.IsVirtual {
			if s.broadcaster != nil {
				s.broadcaster.BroadcastToRoom(room.Code, EvtVirtualPlayerTurn, model.NextTurn{
					PlayerName: active.Name,
					IsVirtual:  true,
				})
			}
			if s.bots != nil {
				s.bots.TriggerBotTurn(room)
			}
		}
		return true
	}

	// active turn expired: advance and restart at the pre-turn notice
	s.advanceLocked(room)
	room.Turn.Notice = true
	room.Turn.Remaining = s.noticeSeconds
	next := room.ActivePlayer()
	room.Unlock()

	s.broadcastTime(room.Code, 0, false)
	if next != nil && s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(room.Code, EvtNextTurn, model.NextTurn{
			PlayerName: next.Name,
			IsVirtual:  next.IsVirtual,
		})
	}
	return true
}

func (s *TurnService) broadcastTime(code string, remaining int, notice bool) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(code, EvtTimeIncrement, model.TimeIncrement{
		SecondsRemaining: remaining,
		IsPreTurnNotice:  notice,
	})
}
