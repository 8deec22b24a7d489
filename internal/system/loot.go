package system

import (
	"math"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/rng"
	"github.com/gloomspire/server/internal/world"
)

// AwardXP grants XP and processes any level-ups against the scripted
// curve. Leveling restores vitals to full.
func AwardXP(ctx *Context, p *world.Player, xp int) {
	if xp <= 0 {
		return
	}
	prog := ctx.Catalog.Progression
	p.XP += xp
	for p.Level < prog.MaxLevel {
		need := ctx.Scripts.XPForLevel(p.Level, prog.XPBase, prog.XPGrowth)
		if p.XP < need {
			break
		}
		p.XP -= need
		p.Level++
		p.RecomputeStats(ctx.Catalog)
		p.Stats.Health = p.Stats.MaxHealth
		p.Stats.Mana = p.Stats.MaxMana
	}
}

// CanUpgradeAbilityRank gates rank training: rank n requires floor >= n+1.
func CanUpgradeAbilityRank(rank, floor int) bool {
	return floor >= rank+1
}

// MintItem instantiates an item from a template at the given rarity,
// multiplying its stats up the rarity ladder.
func MintItem(run *world.Run, tmpl *catalog.ItemInfo, rarity string, prog *catalog.Progression) *world.Item {
	mult := prog.RarityMultiplier(rarity)
	stats := make(map[string]int, len(tmpl.Stats))
	for key, value := range tmpl.Stats {
		stats[key] = int(math.Round(float64(value) * mult))
	}
	return &world.Item{
		ID:         run.NextEntityID("item"),
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Slot:       tmpl.Slot,
		Rarity:     rarity,
		Stats:      stats,
		ItemPower:  world.ItemPowerOf(stats),
		SetID:      tmpl.SetID,
		Consumable: tmpl.Consumable(),
		HealAmount: tmpl.HealAmount,
		ManaAmount: tmpl.ManaAmount,
	}
}

// rollRarity walks the rarity ladder: start common, upgrade while the
// (bonus-multiplied) upgrade roll keeps succeeding.
func rollRarity(r *rng.Stream, prog *catalog.Progression, bonus float64) string {
	tier := 0
	chance := prog.RarityUpgradeChance * (1 + bonus)
	for tier < len(catalog.Rarities)-1 && r.Chance(chance) {
		tier++
		chance *= 0.6 // each further upgrade is rarer
	}
	return catalog.Rarities[tier]
}

// RollEnemyDrops rolls the drop table for a dead enemy. Loot streams are
// scoped to the enemy id so kill order cannot perturb other rolls.
func RollEnemyDrops(ctx *Context, dead *world.Enemy) []*world.Item {
	return rollDrops(ctx, dead, 0)
}

// RollBossDrops rolls boss loot with the kill-time bonus applied to both
// the drop chance and the rarity upgrade roll.
func RollBossDrops(ctx *Context, boss *world.Enemy, killTimeBonus float64) []*world.Item {
	return rollDrops(ctx, boss, killTimeBonus)
}

func rollDrops(ctx *Context, dead *world.Enemy, killTimeBonus float64) []*world.Item {
	prog := ctx.Catalog.Progression
	r := rng.ForLoot(ctx.Run.Seed, ctx.Run.Floor, dead.ID)

	chance := prog.DropChanceNormal
	rolls := 1
	switch {
	case dead.IsBoss:
		chance = prog.DropChanceBoss
		rolls = 2
	case dead.IsRare:
		chance = prog.DropChanceRare
	case dead.IsElite:
		chance = prog.DropChanceNormal * 2
	}
	chance *= 1 + killTimeBonus

	pool := ctx.Catalog.Items.EquippableForFloor(ctx.Run.Floor)
	if len(pool) == 0 {
		return nil
	}

	var drops []*world.Item
	for i := 0; i < rolls; i++ {
		if !r.Chance(chance) {
			continue
		}
		tmpl := rng.Pick(r, pool)
		drops = append(drops, MintItem(ctx.Run, tmpl, rollRarity(r, prog, killTimeBonus), prog))
	}

	// Independent set-piece roll, doubled for bosses and rares.
	setChance := prog.SetDropChance
	if dead.IsBoss || dead.IsRare {
		setChance *= 2
	}
	if r.Chance(setChance) {
		var setPool []*catalog.ItemInfo
		for _, tmpl := range pool {
			if tmpl.SetID != "" {
				setPool = append(setPool, tmpl)
			}
		}
		if len(setPool) > 0 {
			tmpl := rng.Pick(r, setPool)
			drops = append(drops, MintItem(ctx.Run, tmpl, rollRarity(r, prog, killTimeBonus), prog))
		}
	}
	return drops
}

// RollChestLoot rolls a chest's contents by tier.
func RollChestLoot(ctx *Context, chest *world.Chest) ([]*world.Item, int) {
	prog := ctx.Catalog.Progression
	r := rng.ForLoot(ctx.Run.Seed, ctx.Run.Floor, chest.ID)

	count, gold := 1, r.IntBetween(5, 20)
	bonus := 0.0
	switch chest.LootTier {
	case world.ChestRare:
		gold *= 2
		bonus = 0.3
	case world.ChestEpic:
		count = 2
		gold *= 4
		bonus = 0.6
	}

	pool := ctx.Catalog.Items.EquippableForFloor(ctx.Run.Floor)
	var items []*world.Item
	for i := 0; i < count && len(pool) > 0; i++ {
		tmpl := rng.Pick(r, pool)
		items = append(items, MintItem(ctx.Run, tmpl, rollRarity(r, prog, bonus), prog))
	}
	return items, gold
}

// DropLoot places rolled items on the ground at the dead entity's position
// and emits the loot event.
func DropLoot(ctx *Context, dead *world.Enemy, drops []*world.Item, gold, xp int) {
	room := ctx.Run.Dungeon.Room(dead.CurrentRoomID)
	ev := proto.LootDrop{SourceID: dead.ID, Gold: gold, XP: xp}
	if room != nil {
		for i, item := range drops {
			offset := float64(i) * 30
			room.GroundItems = append(room.GroundItems, &world.GroundItem{
				Item:      item,
				Pos:       world.Vec2{X: dead.Pos.X + offset, Y: dead.Pos.Y + 20},
				DroppedAt: ctx.Run.Clock,
			})
			ev.ItemIDs = append(ev.ItemIDs, item.ID)
		}
	}
	if len(ev.ItemIDs) > 0 || gold > 0 || xp > 0 {
		ctx.Run.Events.Emit(proto.SLootDrop, ev)
	}
}

// AutoEquip equips the item if it beats the current slot occupant on item
// power; the displaced piece goes to the backpack. It reports whether the
// item was equipped and whether it found a home at all (stored=false means
// the backpack was full and the item must stay where it was).
func AutoEquip(ctx *Context, p *world.Player, item *world.Item) (equipped, stored bool) {
	if item.Consumable {
		if len(p.Backpack) >= world.BackpackCap {
			return false, false
		}
		p.Backpack = append(p.Backpack, item)
		return false, true
	}
	current := p.Equipment[item.Slot]
	if current == nil || item.ItemPower > current.ItemPower {
		if current != nil {
			if len(p.Backpack) >= world.BackpackCap {
				return false, false
			}
			p.Backpack = append(p.Backpack, current)
		}
		if p.Equipment == nil {
			p.Equipment = make(map[string]*world.Item)
		}
		p.Equipment[item.Slot] = item
		p.RecomputeStats(ctx.Catalog)
		return true, true
	}
	if len(p.Backpack) >= world.BackpackCap {
		return false, false
	}
	p.Backpack = append(p.Backpack, item)
	return false, true
}
