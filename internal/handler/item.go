package handler

import (
	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/system"
	"github.com/gloomspire/server/internal/world"
)

// handleUseItem consumes a potion from the backpack.
func (d *Deps) handleUseItem(t *run.Task, env *proto.Envelope) {
	var in proto.UseItem
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	if p == nil || !p.IsAlive {
		return
	}
	idx, item := backpackItem(p, in.ItemID)
	if item == nil || !item.Consumable {
		return
	}

	heal := p.Stats.Heal(item.HealAmount)
	mana := p.Stats.RestoreMana(item.ManaAmount)
	p.Backpack = append(p.Backpack[:idx], p.Backpack[idx+1:]...)
	t.Run.Events.Emit(proto.SPotionUsed, proto.PotionUsed{
		PlayerID: p.ID,
		ItemID:   item.ID,
		Heal:     heal,
		Mana:     mana,
	})
}

// handleSwapEquipment equips a backpack item into its slot; the displaced
// piece takes the backpack spot.
func (d *Deps) handleSwapEquipment(t *run.Task, env *proto.Envelope) {
	var in proto.SwapEquipment
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	if p == nil {
		return
	}
	if in.BackpackIndex < 0 || in.BackpackIndex >= len(p.Backpack) {
		return
	}
	item := p.Backpack[in.BackpackIndex]
	if item.Consumable || item.Slot != in.Slot {
		return
	}

	displaced := p.Equipment[in.Slot]
	p.Equipment[in.Slot] = item
	if displaced != nil {
		p.Backpack[in.BackpackIndex] = displaced
	} else {
		p.Backpack = append(p.Backpack[:in.BackpackIndex], p.Backpack[in.BackpackIndex+1:]...)
	}
	p.RecomputeStats(d.Catalog)
}

// handleUnequipItem moves an equipped piece to the backpack.
func (d *Deps) handleUnequipItem(t *run.Task, env *proto.Envelope) {
	var in proto.UnequipItem
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	if p == nil {
		return
	}
	item := p.Equipment[in.Slot]
	if item == nil || len(p.Backpack) >= world.BackpackCap {
		return
	}
	delete(p.Equipment, in.Slot)
	p.Backpack = append(p.Backpack, item)
	p.RecomputeStats(d.Catalog)
}

// handlePickupGroundItem is the explicit pickup, with a longer reach than
// the walk-over sweep.
func (d *Deps) handlePickupGroundItem(t *run.Task, env *proto.Envelope) {
	var in proto.PickupGroundItem
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	room := t.Run.CurrentRoom()
	if p == nil || !p.IsAlive || room == nil {
		return
	}
	for i, gi := range room.GroundItems {
		if gi.Item.ID != in.ItemID {
			continue
		}
		if world.Dist(p.Pos, gi.Pos) > system.PickupIntentRange {
			return
		}
		if system.CollectItem(t.Ctx, p, gi.Item) {
			room.GroundItems = append(room.GroundItems[:i], room.GroundItems[i+1:]...)
		}
		return
	}
}

// backpackItem finds a backpack item by instance id.
func backpackItem(p *world.Player, id string) (int, *world.Item) {
	for i, it := range p.Backpack {
		if it.ID == id {
			return i, it
		}
	}
	return -1, nil
}

// rarityMult is a shorthand used by the sell pricing.
func rarityMult(prog *catalog.Progression, rarity string) float64 {
	return prog.RarityMultiplier(rarity)
}
