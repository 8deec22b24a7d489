package handler

import (
	"fmt"

	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/system"
	"github.com/gloomspire/server/internal/world"
)

// handleInteractVendor replies with the vendor's current offer sheet,
// priced against the player's gold and progression.
func (d *Deps) handleInteractVendor(t *run.Task, env *proto.Envelope) {
	var in proto.InteractVendor
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	v := vendorInReach(t.Run, p, in.VendorID)
	if v == nil {
		return
	}

	out := proto.VendorServices{VendorID: v.ID, VendorType: v.Type}
	switch v.Type {
	case world.VendorTrainer:
		out.Services = d.trainerServices(t.Run, p)
	case world.VendorShop:
		out.Services = d.shopServices(p)
	case world.VendorCrypto:
		// The crypto broker only mediates boss-chest claims; those flow
		// through OPEN_CHEST and CLAIM_ATTESTATION, not purchases.
	}
	t.Run.Events.Emit(proto.SVendorServices, out)
}

func (d *Deps) trainerServices(w *world.Run, p *world.Player) []proto.VendorService {
	prog := d.Catalog.Progression
	var out []proto.VendorService

	cost := d.Scripts.LevelUpCost(p.Level, prog.LevelUpBaseCost)
	out = append(out, proto.VendorService{
		ServiceType: proto.ServiceLevelUp,
		Label:       fmt.Sprintf("Level up to %d", p.Level+1),
		Cost:        cost,
		Available:   p.Level < prog.MaxLevel && p.Gold >= cost,
	})

	for _, pa := range p.Abilities {
		ab := d.Catalog.Abilities.Get(pa.ID)
		if ab == nil {
			continue
		}
		next := pa.Rank + 1
		cost := d.Scripts.TrainCost(next, w.Floor, prog.TrainBaseCost)
		out = append(out, proto.VendorService{
			ServiceType: proto.ServiceTrainAbility,
			Label:       fmt.Sprintf("%s rank %d", ab.Name, next),
			Cost:        cost,
			AbilityID:   pa.ID,
			Available: next <= ab.MaxRank &&
				system.CanUpgradeAbilityRank(next, w.Floor) &&
				p.Gold >= cost,
		})
	}
	return out
}

func (d *Deps) shopServices(p *world.Player) []proto.VendorService {
	prog := d.Catalog.Progression
	var out []proto.VendorService

	for _, tmpl := range d.Catalog.Items.Purchasable() {
		out = append(out, proto.VendorService{
			ServiceType: proto.ServiceBuyItem,
			Label:       tmpl.Name,
			Cost:        tmpl.Price,
			ItemID:      tmpl.ID,
			Available:   p.Gold >= tmpl.Price,
		})
	}

	total := 0
	for _, it := range p.Backpack {
		if it.Consumable {
			continue
		}
		value := d.Scripts.SellValue(it.ItemPower, rarityMult(prog, it.Rarity), prog.SellValueFactor)
		total += value
		out = append(out, proto.VendorService{
			ServiceType: proto.ServiceSellItem,
			Label:       fmt.Sprintf("Sell %s", it.Name),
			Cost:        -value,
			ItemID:      it.ID,
			Available:   true,
		})
	}
	if total > 0 {
		out = append(out, proto.VendorService{
			ServiceType: proto.ServiceSellAll,
			Label:       "Sell all gear",
			Cost:        -total,
			Available:   true,
		})
	}
	return out
}

// handlePurchaseService executes one vendor transaction and reports the
// resulting balance.
func (d *Deps) handlePurchaseService(t *run.Task, env *proto.Envelope) {
	var in proto.PurchaseService
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	v := vendorInReach(t.Run, p, in.VendorID)
	if v == nil {
		return
	}

	result := proto.PurchaseResult{VendorID: v.ID, ServiceType: in.ServiceType}
	switch in.ServiceType {
	case proto.ServiceLevelUp:
		result.OK, result.Message = d.buyLevel(p)
	case proto.ServiceTrainAbility:
		result.OK, result.Message = d.buyRank(t.Run, p, in.AbilityID)
	case proto.ServiceBuyItem:
		result.OK, result.Message = d.buyItem(t.Run, p, in.ItemID)
	case proto.ServiceSellItem:
		result.OK, result.Message = d.sellItem(p, in.ItemID)
	case proto.ServiceSellAll:
		result.OK, result.Message = d.sellAll(p)
	default:
		result.Message = "unknown service"
	}
	result.Gold = p.Gold
	t.Run.Events.Emit(proto.SPurchaseResult, result)
}

func (d *Deps) buyLevel(p *world.Player) (bool, string) {
	prog := d.Catalog.Progression
	if p.Level >= prog.MaxLevel {
		return false, "already at max level"
	}
	cost := d.Scripts.LevelUpCost(p.Level, prog.LevelUpBaseCost)
	if p.Gold < cost {
		return false, "not enough gold"
	}
	p.Gold -= cost
	p.Level++
	p.RecomputeStats(d.Catalog)
	p.Stats.Health = p.Stats.MaxHealth
	p.Stats.Mana = p.Stats.MaxMana
	return true, ""
}

func (d *Deps) buyRank(w *world.Run, p *world.Player, abilityID string) (bool, string) {
	pa := p.Ability(abilityID)
	ab := d.Catalog.Abilities.Get(abilityID)
	if pa == nil || ab == nil {
		return false, "unknown ability"
	}
	next := pa.Rank + 1
	if next > ab.MaxRank {
		return false, "already at max rank"
	}
	if !system.CanUpgradeAbilityRank(next, w.Floor) {
		return false, "descend further to train this rank"
	}
	cost := d.Scripts.TrainCost(next, w.Floor, d.Catalog.Progression.TrainBaseCost)
	if p.Gold < cost {
		return false, "not enough gold"
	}
	p.Gold -= cost
	pa.Rank = next
	return true, ""
}

func (d *Deps) buyItem(w *world.Run, p *world.Player, templateID string) (bool, string) {
	tmpl := d.Catalog.Items.Get(templateID)
	if tmpl == nil || tmpl.Price <= 0 {
		return false, "not for sale"
	}
	if p.Gold < tmpl.Price {
		return false, "not enough gold"
	}
	if len(p.Backpack) >= world.BackpackCap {
		return false, "backpack is full"
	}
	p.Gold -= tmpl.Price
	p.Backpack = append(p.Backpack, system.MintItem(w, tmpl, "common", d.Catalog.Progression))
	return true, ""
}

func (d *Deps) sellItem(p *world.Player, itemID string) (bool, string) {
	idx, it := backpackItem(p, itemID)
	if it == nil {
		return false, "item not in backpack"
	}
	if it.Consumable {
		return false, "the shop does not buy potions"
	}
	prog := d.Catalog.Progression
	p.Gold += d.Scripts.SellValue(it.ItemPower, rarityMult(prog, it.Rarity), prog.SellValueFactor)
	p.Backpack = append(p.Backpack[:idx], p.Backpack[idx+1:]...)
	return true, ""
}

func (d *Deps) sellAll(p *world.Player) (bool, string) {
	prog := d.Catalog.Progression
	kept := p.Backpack[:0]
	sold := 0
	for _, it := range p.Backpack {
		if it.Consumable {
			kept = append(kept, it)
			continue
		}
		p.Gold += d.Scripts.SellValue(it.ItemPower, rarityMult(prog, it.Rarity), prog.SellValueFactor)
		sold++
	}
	p.Backpack = kept
	if sold == 0 {
		return false, "nothing to sell"
	}
	return true, ""
}

// vendorInReach resolves a vendor id to a vendor the player can talk to.
func vendorInReach(w *world.Run, p *world.Player, vendorID string) *world.Vendor {
	if p == nil || !p.IsAlive || w.Dungeon == nil {
		return nil
	}
	for _, room := range w.Dungeon.Rooms {
		for _, v := range []*world.Vendor{room.Vendor, room.ShopVendor, room.CryptoVendor} {
			if v != nil && v.ID == vendorID {
				if world.Dist(p.Pos, v.Pos) > system.VendorInteractRange {
					return nil
				}
				return v
			}
		}
	}
	return nil
}
