package service

import (
	"testing"
	"time"

	"gridclash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnCountdownPhases(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	f.join(t, room, "Alice")
	f.join(t, room, "Bob")

	f.turns.StartNotice(room)
	defer f.turns.StopTimer(room)

	// the pre-turn notice runs first
	state := turnSnapshot(room)
	assert.True(t, state.Notice)

	// notice expires into the active turn with the full turn budget
	require.Eventually(t, func() bool {
		s := turnSnapshot(room)
		return !s.Notice && s.ActiveIndex == 0
	}, 2*time.Second, 5*time.Millisecond)

	_, ok := f.bc.last(EvtEndOfNotice)
	assert.True(t, ok)

	// the active turn expires and the next player's notice begins
	require.Eventually(t, func() bool {
		s := turnSnapshot(room)
		return s.Notice && s.ActiveIndex == 1
	}, 2*time.Second, 5*time.Millisecond)

	msg, ok := f.bc.last(EvtNextTurn)
	require.True(t, ok)
	next, ok := msg.Payload.(model.NextTurn)
	require.True(t, ok)
	assert.Equal(t, "Bob", next.PlayerName)
}

func TestTimeIncrementsNeverNegative(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	f.join(t, room, "Alice")
	f.join(t, room, "Bob")

	f.turns.StartNotice(room)
	defer f.turns.StopTimer(room)

	// run through a full rotation back to the first player
	require.Eventually(t, func() bool {
		s := turnSnapshot(room)
		return s.Notice && s.ActiveIndex == 0 && len(f.bc.ofType(EvtTimeIncrement)) > 4
	}, 5*time.Second, 5*time.Millisecond)

	for _, msg := range f.bc.ofType(EvtTimeIncrement) {
		inc, ok := msg.Payload.(model.TimeIncrement)
		require.True(t, ok)
		assert.GreaterOrEqual(t, inc.SecondsRemaining, 0)
	}
}

func TestStartTimerIsNoOpWhileRunning(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	f.join(t, room, "Alice")

	f.turns.StartTimer(room)
	defer f.turns.StopTimer(room)

	room.Lock()
	first := room.Turn.Stop
	room.Unlock()
	require.NotNil(t, first)

	// a second start must not replace the running countdown
	f.turns.StartTimer(room)
	room.Lock()
	second := room.Turn.Stop
	room.Unlock()
	assert.True(t, first == second)
}

func TestStopTimerIsIdempotent(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	f.join(t, room, "Alice")

	f.turns.StartTimer(room)
	f.turns.StopTimer(room)
	f.turns.StopTimer(room) // second stop must not panic or close twice

	room.Lock()
	assert.Nil(t, room.Turn.Stop)
	room.Unlock()

	// stopping a room that never ran is equally safe
	other := f.createRoom(t, model.SizeSmall)
	f.turns.StopTimer(other)
}

func TestDestroyedRoomNeverRestartsItsClock(t *testing.T) {
	f := newFixture(t)
	room, _, _ := startedFight(t, f) // the fight pauses the clock: Stop is nil

	f.rooms.DestroyRoom(room.Code)

	// a caller still holding the old pointer tries to revive the countdown
	f.turns.ResumeTurn(room, 10)
	f.combat.Escaped(room.Code, "Bob")

	room.Lock()
	assert.True(t, room.Destroyed)
	assert.Nil(t, room.Turn.Stop)
	room.Unlock()

	before := len(f.bc.ofType(EvtTimeIncrement))
	time.Sleep(150 * time.Millisecond)
	assert.Len(t, f.bc.ofType(EvtTimeIncrement), before)
}

func TestEndTurnAdvancesAndResets(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	f.join(t, room, "Alice")
	bob := f.join(t, room, "Bob")

	room.Lock()
	bob.MovementLeft = 0
	bob.ActionsLeft = 0
	room.Unlock()

	f.turns.EndTurn(room)
	defer f.turns.StopTimer(room)

	state := turnSnapshot(room)
	assert.Equal(t, 1, state.ActiveIndex)
	assert.True(t, state.Notice)

	room.Lock()
	assert.Equal(t, bob.Speed, bob.MovementLeft)
	assert.Equal(t, 1, bob.ActionsLeft)
	room.Unlock()
}

func TestVirtualPlayerTurnTriggersBot(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	f.join(t, room, "Alice")

	bot, err := f.bots.AddVirtualPlayer(room.Code, model.ModeAttacker)
	require.NoError(t, err)

	room.Lock()
	room.Turn.ActiveIndex = 1 // the bot
	room.Unlock()

	f.turns.StartNotice(room)
	defer f.turns.StopTimer(room)

	// the default decider passes, so the bot's turn hands over to Alice
	require.Eventually(t, func() bool {
		s := turnSnapshot(room)
		return s.ActiveIndex == 0 && s.Notice
	}, 2*time.Second, 5*time.Millisecond)

	msg, ok := f.bc.last(EvtVirtualPlayerTurn)
	require.True(t, ok)
	turn, ok := msg.Payload.(model.NextTurn)
	require.True(t, ok)
	assert.Equal(t, bot.Name, turn.PlayerName)
	assert.True(t, turn.IsVirtual)
}
