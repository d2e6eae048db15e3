package service

import (
	"testing"
	"time"

	"gridclash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombatCountersStayDerived(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	alice := f.join(t, room, "Alice")

	f.stats.SetVictories(room.Code, "Alice", 2)
	f.stats.SetDefeats(room.Code, "Alice", 1)

	room.Lock()
	assert.Equal(t, 2, alice.Stats.NbVictory)
	assert.Equal(t, 1, alice.Stats.NbDefeat)
	assert.Equal(t, 3, alice.Stats.NbCombat)
	room.Unlock()

	// overwriting re-derives, it never accumulates
	f.stats.SetVictories(room.Code, "Alice", 1)
	room.Lock()
	assert.Equal(t, 2, alice.Stats.NbCombat)
	room.Unlock()
}

func TestStatsIgnoreUnknownTargets(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	f.join(t, room, "Alice")

	// none of these may panic or touch anything
	f.stats.SetVictories("0000", "Alice", 1)
	f.stats.AddDamage(room.Code, "Mallory", 3)
	f.stats.AddEvasion(room.Code, "Mallory")
}

func TestAddCombatForBot(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	alice := f.join(t, room, "Alice")
	bot, err := f.bots.AddVirtualPlayer(room.Code, model.ModeDefensive)
	require.NoError(t, err)

	f.stats.AddCombatForBot(room.Code, "Alice")
	f.stats.AddCombatForBot(room.Code, bot.Name)

	room.Lock()
	assert.Equal(t, 0, alice.Stats.NbCombat)
	assert.Equal(t, 1, bot.Stats.NbCombat)
	room.Unlock()
}

func TestUpdateExplorationRoundsUp(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall) // 10x10 = 100 tiles
	alice := f.join(t, room, "Alice")

	room.Lock()
	alice.Visited = map[model.Position]struct{}{
		{X: 0, Y: 0}: {},
		{X: 1, Y: 0}: {},
		{X: 2, Y: 0}: {},
	}
	room.Unlock()

	f.stats.UpdateExploration(room.Code, "Alice")

	room.Lock()
	assert.Equal(t, 3, alice.Stats.TilePercentage)
	room.Unlock()
}

func TestCeilPct(t *testing.T) {
	assert.Equal(t, 0, ceilPct(0, 0))
	assert.Equal(t, 0, ceilPct(5, 0))
	assert.Equal(t, 0, ceilPct(0, 7))
	assert.Equal(t, 34, ceilPct(1, 3))
	assert.Equal(t, 50, ceilPct(1, 2))
	assert.Equal(t, 100, ceilPct(3, 3))
	assert.Equal(t, 1, ceilPct(1, 100))
}

func TestGlobalSnapshot(t *testing.T) {
	f := newFixture(t)
	room := f.createRoom(t, model.SizeSmall)
	alice := f.join(t, room, "Alice")
	f.join(t, room, "Bob")

	room.Lock()
	room.Stats.StartedAt = time.Now().Add(-90 * time.Second)
	room.Stats.TotalDoors = 4
	room.Stats.DoorsToggled[model.Position{X: 3, Y: 3}] = struct{}{}
	room.Stats.FlagPickups = 2
	for x := 0; x < 30; x++ {
		room.Stats.Visited[model.Position{X: x % 10, Y: x / 10}] = struct{}{}
	}
	alice.Stats.DoorsManipulated = 1
	room.Unlock()

	snap := f.stats.GlobalSnapshot(room.Code)
	require.NotNil(t, snap)

	assert.Equal(t, 1, snap.AllTime) // whole minutes
	// leftover seconds, with slack for wall-clock drift during the test
	assert.GreaterOrEqual(t, snap.SecondTime, 30)
	assert.Less(t, snap.SecondTime, 35)
	assert.Equal(t, 30, snap.PercentageOfTile)
	assert.Equal(t, 25, snap.PercentageOfDors)
	assert.Equal(t, 1, snap.NbrPlayerOpenDoor)
	assert.Equal(t, 4, snap.AllDoors)
	assert.Equal(t, 2, snap.NbOfTakenFleg)

	assert.Nil(t, f.stats.GlobalSnapshot("0000"))
}
