package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/world"
)

func TestMoveDirectAppliesSpeedAndThemeModifier(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior") // speed 240
	start := p.Pos
	ctx.Run.Tracking.MoveIntent[p.ID] = world.Vec2{X: 1}

	sys := &MovementSystem{}
	sys.Update(ctx, 0.1)
	assert.InDelta(t, start.X+24, p.Pos.X, 1e-9)
	assert.InDelta(t, start.Y, p.Pos.Y, 1e-9)

	ctx.Run.Dungeon.ThemeMods.MovementModifier = 0.5
	sys.Update(ctx, 0.1)
	assert.InDelta(t, start.X+24+12, p.Pos.X, 1e-9)
}

func TestMoveSlidesAlongWalls(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	p.Pos = world.Vec2{X: 300, Y: 10}
	ctx.Run.Tracking.MoveIntent[p.ID] = world.Vec2{X: 1, Y: -1}

	sys := &MovementSystem{}
	sys.Update(ctx, 0.1)

	// The north wall blocks the Y component; the X component carries on.
	assert.Greater(t, p.Pos.X, 300.0)
	assert.Equal(t, 10.0, p.Pos.Y)
}

func TestMomentumBuildsAndCapsAtSpeed(t *testing.T) {
	ctx := testContext(t)
	ctx.Run.Dungeon.ThemeMods.Momentum = true
	p := addPlayer(ctx, "warrior")
	start := p.Pos
	ctx.Run.Tracking.MoveIntent[p.ID] = world.Vec2{X: 1}

	sys := &MovementSystem{}
	for i := 0; i < 60; i++ {
		sys.Update(ctx, 1.0/30)
	}

	vel := ctx.Run.Tracking.Momentum[p.ID]
	assert.Greater(t, vel.X, 0.0)
	assert.LessOrEqual(t, vel.Len(), p.Stats.Speed+1e-9)
	assert.Greater(t, p.Pos.X, start.X)

	// Releasing the stick does not stop on a dime.
	ctx.Run.Tracking.MoveIntent[p.ID] = world.Vec2{}
	before := p.Pos.X
	sys.Update(ctx, 1.0/30)
	assert.Greater(t, p.Pos.X, before)
}

func TestRoomTransitionSwapsModifierBuffs(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	east := ctx.Run.Dungeon.Room(1)
	east.Modifier = catalog.ModifierCursed
	baseArmor, baseResist := p.Stats.Armor, p.Stats.Resist

	sys := &MovementSystem{}
	p.Pos = east.Center()
	sys.Update(ctx, 1.0/30)

	assert.Equal(t, 1, ctx.Run.Dungeon.CurrentRoomID)
	require.NotNil(t, p.BuffByIcon("room_cursed"))
	assert.Equal(t, baseArmor-10, p.Stats.Armor)
	assert.Equal(t, baseResist-5, p.Stats.Resist)

	// Walking back out reverts the debuff.
	p.Pos = ctx.Run.Dungeon.Room(0).Center()
	sys.Update(ctx, 1.0/30)
	assert.Equal(t, 0, ctx.Run.Dungeon.CurrentRoomID)
	assert.Nil(t, p.BuffByIcon("room_cursed"))
	assert.Equal(t, baseArmor, p.Stats.Armor)
	assert.Equal(t, baseResist, p.Stats.Resist)
}

func TestRoomTransitionBlessedGrantsArmorAndCrit(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	east := ctx.Run.Dungeon.Room(1)
	east.Modifier = catalog.ModifierBlessed
	baseArmor := p.Stats.Armor

	sys := &MovementSystem{}
	p.Pos = east.Center()
	sys.Update(ctx, 1.0/30)

	require.NotNil(t, p.BuffByIcon("room_blessed"))
	assert.Equal(t, baseArmor+10, p.Stats.Armor)
	assert.Equal(t, 5, p.Stats.Crit)
}

func TestRoomTransitionNeedsCorridorOrClearedRoom(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	south := &world.Room{ID: 2, X: 0, Y: 700, W: 600, H: 600, Type: world.RoomNormal}
	ctx.Run.Dungeon.Rooms = append(ctx.Run.Dungeon.Rooms, south)

	// On the unconnected room's boundary: no corridor, start not cleared.
	p.Pos = world.Vec2{X: 300, Y: 700}
	sys := &MovementSystem{}
	sys.checkRoomTransition(ctx, p)
	assert.Equal(t, 0, ctx.Run.Dungeon.CurrentRoomID)

	// A cleared current room lifts the restriction.
	ctx.Run.Dungeon.Room(0).Cleared = true
	sys.checkRoomTransition(ctx, p)
	assert.Equal(t, 2, ctx.Run.Dungeon.CurrentRoomID)
}

func TestRoomTransitionResetsAggroAndSnapsStrays(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	east := ctx.Run.Dungeon.Room(1)
	stray := addEnemy(ctx, 1, 100)
	stray.Pos = world.Vec2{X: 50, Y: 50} // drifted into the start room
	ctx.Run.Tracking.AggroAt["enemy_x"] = 3.0

	sys := &MovementSystem{}
	p.Pos = east.Center()
	sys.checkRoomTransition(ctx, p)

	assert.Empty(t, ctx.Run.Tracking.AggroAt)
	assert.Equal(t, east.Center(), stray.Pos)
}

func TestStaggerBossCooldowns(t *testing.T) {
	ctx := testContext(t)
	boss := addEnemy(ctx, 1, 1000)
	boss.IsBoss = true
	boss.BossID = "bone_tyrant"
	ctx.Run.Clock = 5

	StaggerBossCooldowns(ctx, boss)

	tr := ctx.Run.Tracking
	assert.Equal(t, 5.0, tr.BossFightStart[boss.ID])

	// Floor 1 unlocks two abilities, staggered 4s then 7s.
	cds := tr.BossAbilityCDs[boss.ID]
	require.Len(t, cds, 2)
	assert.Equal(t, 4.0, cds["bone_spear"])
	assert.Equal(t, 7.0, cds["grave_call"])

	aoe := tr.BossAoECDs[boss.ID]
	assert.GreaterOrEqual(t, aoe, 6.0)
	assert.Less(t, aoe, 8.0)

	// Re-engaging mid-fight must not reset the schedule.
	cds["bone_spear"] = 1.23
	StaggerBossCooldowns(ctx, boss)
	assert.Equal(t, 1.23, tr.BossAbilityCDs[boss.ID]["bone_spear"])
}

func TestWalkOverPickup(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	prog := ctx.Catalog.Progression
	room := ctx.Run.Dungeon.Room(0)

	near := MintItem(ctx.Run, ctx.Catalog.Items.Get("rusted_sword"), "common", prog)
	far := MintItem(ctx.Run, ctx.Catalog.Items.Get("oak_shield"), "common", prog)
	room.GroundItems = []*world.GroundItem{
		{Item: near, Pos: p.Pos.Add(world.Vec2{X: 50})},
		{Item: far, Pos: p.Pos.Add(world.Vec2{X: 250})},
	}

	sys := &MovementSystem{}
	sys.Update(ctx, 1.0/30)

	require.Len(t, room.GroundItems, 1)
	assert.Equal(t, far, room.GroundItems[0].Item)
	assert.Equal(t, near, p.Equipment["weapon"])
}

func TestStunnedPlayerDoesNotMove(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	start := p.Pos
	p.Buffs = append(p.Buffs, &world.Buff{Icon: "stun", Duration: 2, IsDebuff: true, IsStun: true})
	ctx.Run.Tracking.MoveIntent[p.ID] = world.Vec2{X: 1}

	sys := &MovementSystem{}
	sys.Update(ctx, 0.1)
	assert.Equal(t, start, p.Pos)
}
