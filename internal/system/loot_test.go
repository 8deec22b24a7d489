package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloomspire/server/internal/world"
)

func TestAutoEquipPrefersHigherPower(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	prog := ctx.Catalog.Progression

	rusted := MintItem(ctx.Run, ctx.Catalog.Items.Get("rusted_sword"), "common", prog)
	equipped, stored := AutoEquip(ctx, p, rusted)
	assert.True(t, equipped)
	assert.True(t, stored)
	assert.Equal(t, rusted, p.Equipment["weapon"])

	better := MintItem(ctx.Run, ctx.Catalog.Items.Get("knight_greatsword"), "common", prog)
	equipped, stored = AutoEquip(ctx, p, better)
	assert.True(t, equipped)
	assert.True(t, stored)
	assert.Equal(t, better, p.Equipment["weapon"])
	require.Len(t, p.Backpack, 1)
	assert.Equal(t, rusted, p.Backpack[0], "displaced piece lands in the backpack")

	worse := MintItem(ctx.Run, ctx.Catalog.Items.Get("rusted_sword"), "common", prog)
	equipped, stored = AutoEquip(ctx, p, worse)
	assert.False(t, equipped)
	assert.True(t, stored)
	assert.Len(t, p.Backpack, 2)
}

func TestAutoEquipFullBackpackRejects(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	prog := ctx.Catalog.Progression
	for i := 0; i < world.BackpackCap; i++ {
		p.Backpack = append(p.Backpack, MintItem(ctx.Run, ctx.Catalog.Items.Get("rusted_sword"), "common", prog))
	}

	potion := MintItem(ctx.Run, ctx.Catalog.Items.Get("health_potion"), "common", prog)
	_, stored := AutoEquip(ctx, p, potion)
	assert.False(t, stored)

	// Equipping into an empty slot needs no backpack space.
	sword := MintItem(ctx.Run, ctx.Catalog.Items.Get("rusted_sword"), "common", prog)
	equipped, stored := AutoEquip(ctx, p, sword)
	assert.True(t, equipped)
	assert.True(t, stored)
}

func TestMintItemScalesStatsByRarity(t *testing.T) {
	ctx := testContext(t)
	tmpl := ctx.Catalog.Items.Get("rusted_sword")

	common := MintItem(ctx.Run, tmpl, "common", ctx.Catalog.Progression)
	epic := MintItem(ctx.Run, tmpl, "epic", ctx.Catalog.Progression)

	assert.Equal(t, 3, common.Stats["attackPower"])
	assert.Equal(t, 6, epic.Stats["attackPower"]) // epic multiplier 2.0
	assert.Greater(t, epic.ItemPower, common.ItemPower)
}

func TestRollChestLootIsSeedDeterministic(t *testing.T) {
	roll := func() ([]string, int) {
		ctx := testContext(t)
		chest := &world.Chest{ID: "chest_7", LootTier: world.ChestEpic}
		items, gold := RollChestLoot(ctx, chest)
		var ids []string
		for _, it := range items {
			ids = append(ids, it.TemplateID+"/"+it.Rarity)
		}
		return ids, gold
	}
	a, goldA := roll()
	b, goldB := roll()
	assert.Equal(t, a, b)
	assert.Equal(t, goldA, goldB)
	assert.Len(t, a, 2, "epic chests hold two items")
}

func TestRollEnemyDropsScopedByEnemyID(t *testing.T) {
	ctx := testContext(t)
	e1 := addEnemy(ctx, 0, 10)
	e2 := addEnemy(ctx, 0, 10)

	first := RollEnemyDrops(ctx, e1)
	again := RollEnemyDrops(ctx, e1)
	require.Equal(t, len(first), len(again), "same enemy rerolls identically")
	for i := range first {
		assert.Equal(t, first[i].TemplateID, again[i].TemplateID)
	}

	// A different enemy draws from its own stream; killing order cannot
	// change what e1 would have dropped.
	_ = RollEnemyDrops(ctx, e2)
	after := RollEnemyDrops(ctx, e1)
	require.Equal(t, len(first), len(after))
	for i := range first {
		assert.Equal(t, first[i].TemplateID, after[i].TemplateID)
	}
}

func TestAwardXPLevelsUpAndRestoresVitals(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	p.Stats.Health = 10
	p.Stats.Mana = 0

	AwardXP(ctx, p, 100) // level 2 costs exactly 100

	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, p.Stats.MaxHealth, p.Stats.Health)
	assert.Equal(t, p.Stats.MaxMana, p.Stats.Mana)
	assert.Equal(t, 164, p.Stats.MaxHealth, "level gain applied")
}

func TestAwardXPCarriesRemainder(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")

	AwardXP(ctx, p, 130)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 30, p.XP)
}

func TestCanUpgradeAbilityRank(t *testing.T) {
	tests := []struct {
		rank, floor int
		want        bool
	}{
		{2, 2, false},
		{2, 3, true},
		{3, 3, false},
		{3, 4, true},
		{5, 6, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanUpgradeAbilityRank(tt.rank, tt.floor),
			"rank %d floor %d", tt.rank, tt.floor)
	}
}

func TestDropLootPlacesItemsAndEmits(t *testing.T) {
	ctx := testContext(t)
	e := addEnemy(ctx, 0, 10)
	prog := ctx.Catalog.Progression
	drops := []*world.Item{
		MintItem(ctx.Run, ctx.Catalog.Items.Get("rusted_sword"), "common", prog),
		MintItem(ctx.Run, ctx.Catalog.Items.Get("oak_shield"), "common", prog),
	}

	DropLoot(ctx, e, drops, 12, 50)

	room := ctx.Run.Dungeon.Room(0)
	require.Len(t, room.GroundItems, 2)
	assert.NotEqual(t, room.GroundItems[0].Pos, room.GroundItems[1].Pos, "drops fan out")
	assert.NotEmpty(t, drainEvents(ctx))
}
