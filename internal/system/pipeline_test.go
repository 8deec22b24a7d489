package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

func TestTimerTicksCooldownsDown(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	p.Ability("warrior_strike").Cooldown = 3.0
	p.AutoAttackCooldown = 1.0

	sys := &TimerSystem{}
	sys.Update(ctx, 1.0)
	assert.InDelta(t, 2.0, p.Ability("warrior_strike").Cooldown, 1e-9)
	assert.InDelta(t, 0.0, p.AutoAttackCooldown, 1e-9)

	sys.Update(ctx, 5.0)
	assert.Zero(t, p.Ability("warrior_strike").Cooldown, "cooldowns never go negative")
}

func TestTimerManaRegenCarriesFractions(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior") // max mana 40, so 0.8 mana per second
	p.Stats.Mana = 0

	sys := &TimerSystem{}
	sys.Update(ctx, 1.0)
	assert.Equal(t, 0, p.Stats.Mana, "sub-point regen accumulates silently")
	sys.Update(ctx, 1.0)
	assert.Equal(t, 1, p.Stats.Mana)

	for i := 0; i < 8; i++ {
		sys.Update(ctx, 1.0)
	}
	assert.Equal(t, 8, p.Stats.Mana, "exactly 0.8 per second over 10s")
}

func TestTimerBuffExpiryRevertsStats(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	base := p.Stats.Armor
	p.ApplyBuff(&world.Buff{
		Icon: "test_ward", Duration: 0.5, MaxDuration: 0.5,
		StatMods: map[string]int{"armor": 20},
	})
	require.Equal(t, base+20, p.Stats.Armor)

	sys := &TimerSystem{}
	sys.Update(ctx, 1.0)
	assert.Nil(t, p.BuffByIcon("test_ward"))
	assert.Equal(t, base, p.Stats.Armor)
}

func TestTimerSweepsStaleGroundItems(t *testing.T) {
	ctx := testContext(t)
	addPlayer(ctx, "warrior")
	prog := ctx.Catalog.Progression
	room := ctx.Run.Dungeon.Room(1)
	stale := MintItem(ctx.Run, ctx.Catalog.Items.Get("rusted_sword"), "common", prog)
	fresh := MintItem(ctx.Run, ctx.Catalog.Items.Get("oak_shield"), "common", prog)
	room.GroundItems = []*world.GroundItem{
		{Item: stale, Pos: room.Center(), DroppedAt: 50},
		{Item: fresh, Pos: room.Center(), DroppedAt: 150},
	}
	ctx.Run.Clock = 200 // default TTL 120s

	sys := &TimerSystem{}
	sys.Update(ctx, 1.0/30)

	require.Len(t, room.GroundItems, 1)
	assert.Equal(t, fresh, room.GroundItems[0].Item)
}

func TestDotTickIsMitigatedByResist(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "mage")
	e := addEnemy(ctx, 0, 100)
	e.Stats.Resist = 100
	e.AddDebuff(&world.Buff{
		Icon: "burn", Duration: 5, IsDebuff: true,
		DamagePerTick: 20, TickInterval: 1.0, SourceID: p.ID,
	})

	sys := &DotSystem{}
	sys.Update(ctx, 1.0)

	assert.Equal(t, 90, e.Stats.Health, "20 per tick halved by resist 100")
	require.Len(t, e.Debuffs, 1)
	assert.InDelta(t, 4.0, e.Debuffs[0].Duration, 1e-9)
}

func TestDotTickFloorsAtOne(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "mage")
	e := addEnemy(ctx, 0, 100)
	e.Stats.Resist = 1000
	e.AddDebuff(&world.Buff{
		Icon: "burn", Duration: 5, IsDebuff: true,
		DamagePerTick: 1, TickInterval: 1.0, SourceID: p.ID,
	})

	(&DotSystem{}).Update(ctx, 1.0)
	assert.Equal(t, 99, e.Stats.Health)
}

func TestDotExpiresAfterFinalTick(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "mage")
	e := addEnemy(ctx, 0, 100)
	e.AddDebuff(&world.Buff{
		Icon: "burn", Duration: 0.5, IsDebuff: true,
		DamagePerTick: 10, TickInterval: 1.0, SourceID: p.ID,
	})

	(&DotSystem{}).Update(ctx, 1.0)
	assert.Equal(t, 90, e.Stats.Health)
	assert.Empty(t, e.Debuffs)
}

func TestDotKillCreditsTheSource(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "mage")
	e := addEnemy(ctx, 0, 5)
	e.AddDebuff(&world.Buff{
		Icon: "burn", Duration: 5, IsDebuff: true,
		DamagePerTick: 50, TickInterval: 1.0, SourceID: p.ID,
	})

	(&DotSystem{}).Update(ctx, 1.0)

	assert.False(t, e.IsAlive)
	assert.Equal(t, 50, p.XP)
	assert.Equal(t, 7, p.Gold)

	var dotKill bool
	for _, ev := range drainEvents(ctx) {
		if ce, ok := ev.Data.(proto.CombatEvent); ok && ce.IsDoT && ce.Killed {
			dotKill = true
		}
	}
	assert.True(t, dotKill)
}

func TestClearFlagsEmptiedRooms(t *testing.T) {
	ctx := testContext(t)
	e := addEnemy(ctx, 1, 100)

	sys := &ClearSystem{}
	sys.Update(ctx, 1.0/30)
	assert.False(t, ctx.Run.Dungeon.Room(1).Cleared)
	assert.False(t, ctx.Run.Dungeon.Room(0).Cleared, "a room that never had enemies stays unflagged")

	e.IsAlive = false
	sys.Update(ctx, 1.0/30)
	assert.True(t, ctx.Run.Dungeon.Room(1).Cleared)
}

func TestBossDefeatUnlocksFloorAndChests(t *testing.T) {
	ctx := testContext(t)
	room := ctx.Run.Dungeon.Room(1)
	room.Type = world.RoomBoss
	room.Chests = []*world.Chest{{ID: "chest_boss", Pos: room.Center(), LootTier: world.ChestEpic, IsLocked: true}}
	boss := addEnemy(ctx, 1, 1000)
	boss.IsBoss = true
	boss.BossID = "bone_tyrant"

	sys := &ClearSystem{}
	sys.Update(ctx, 1.0/30)
	require.False(t, ctx.Run.Dungeon.BossDefeated)

	boss.IsAlive = false
	sys.Update(ctx, 1.0/30)
	assert.True(t, ctx.Run.Dungeon.BossDefeated)
	assert.False(t, room.Chests[0].IsLocked)

	var defeated int
	for _, ev := range drainEvents(ctx) {
		if pc, ok := ev.Data.(proto.BossPhaseChange); ok && pc.Phase == "defeated" {
			defeated++
		}
	}
	assert.Equal(t, 1, defeated)

	// The phase event fires once; later ticks are quiet.
	sys.Update(ctx, 1.0/30)
	assert.Empty(t, drainEvents(ctx))
}

func TestRespawnWaitsOutTheDelay(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	east := ctx.Run.Dungeon.Room(1)
	p.Pos = east.Center()
	ctx.Run.Dungeon.CurrentRoomID = 1
	ctx.Run.Clock = 10
	HandlePlayerDeath(ctx, p)

	sys := &RespawnSystem{}
	ctx.Run.Clock = 11
	sys.Update(ctx, 1.0/30)
	require.False(t, p.IsAlive)

	ctx.Run.Clock = 13.5 // past the 3s delay
	sys.Update(ctx, 1.0/30)
	assert.True(t, p.IsAlive)
	assert.Equal(t, ctx.Run.Dungeon.Room(0).Center(), p.Pos)
	assert.Equal(t, 0, ctx.Run.Dungeon.CurrentRoomID)
	assert.Equal(t, p.Stats.MaxHealth, p.Stats.Health)
	assert.Equal(t, p.Stats.MaxMana/2, p.Stats.Mana)
	assert.NotContains(t, ctx.Run.Tracking.DeathTimes, p.ID)
}

func TestRespawnResetsTheField(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	baseArmor := p.Stats.Armor
	p.ApplyBuff(&world.Buff{Icon: "test_ward", Duration: 60, StatMods: map[string]int{"armor": 20}})

	e := addEnemy(ctx, 1, 100)
	e.Pos = e.SpawnPos.Add(world.Vec2{X: 200})
	e.Stats.Health = 40
	e.TargetID = p.ID

	ctx.Run.GroundEffects = []*world.GroundEffect{
		{ID: "ge_near", Pos: ctx.Run.Dungeon.Room(0).Center()},
		{ID: "ge_far", Pos: ctx.Run.Dungeon.Room(1).Center()},
	}

	ctx.Run.Clock = 10
	HandlePlayerDeath(ctx, p)
	ctx.Run.Clock = 20
	(&RespawnSystem{}).Update(ctx, 1.0/30)

	assert.Nil(t, p.BuffByIcon("test_ward"))
	assert.Equal(t, baseArmor, p.Stats.Armor)

	assert.Equal(t, e.SpawnPos, e.Pos, "displaced enemies go home")
	assert.Equal(t, 100, e.Stats.Health, "and heal to full")
	assert.Empty(t, e.TargetID)

	require.Len(t, ctx.Run.GroundEffects, 1)
	assert.Equal(t, "ge_far", ctx.Run.GroundEffects[0].ID)
}

func TestSoulstoneRevivesInPlace(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warlock")
	east := ctx.Run.Dungeon.Room(1)
	p.Pos = east.Center()
	p.Buffs = append(p.Buffs, &world.Buff{Icon: "warlock_soulstone", Duration: 60, Special: catalog.SpecialSoulstone})

	ctx.Run.Clock = 10
	HandlePlayerDeath(ctx, p)
	(&RespawnSystem{}).Update(ctx, 1.0/30) // no delay on the stone

	assert.True(t, p.IsAlive)
	assert.Equal(t, east.Center(), p.Pos, "stays where it fell")
	assert.Equal(t, p.Stats.MaxHealth, p.Stats.Health)
	assert.Equal(t, p.Stats.MaxMana/2, p.Stats.Mana)
	assert.Nil(t, p.BuffByIcon("warlock_soulstone"), "the stone is spent")
}

func TestNoRespawnWithoutLives(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	p.Lives = 1
	ctx.Run.Clock = 10
	HandlePlayerDeath(ctx, p) // last life spent

	ctx.Run.Clock = 100
	(&RespawnSystem{}).Update(ctx, 1.0/30)
	assert.False(t, p.IsAlive)
}
