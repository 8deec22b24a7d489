package world

import "github.com/gloomspire/server/internal/catalog"

// PlayerAbility is one known ability with its progression and cooldown.
type PlayerAbility struct {
	ID       string  `json:"id"`
	Rank     int     `json:"rank"`
	Cooldown float64 `json:"cooldown"` // seconds remaining
}

// Player is the authoritative state of one connected character. All fields
// are mutated by the owning run task only; no locks by design.
type Player struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	ClassID   string           `json:"classId"`
	Pos       Vec2             `json:"position"`
	Stats     Stats            `json:"stats"` // effective, buff deltas included
	Equipment map[string]*Item `json:"equipment"`
	Backpack  []*Item          `json:"backpack"`
	Abilities []*PlayerAbility `json:"abilities"`
	Gold      int              `json:"gold"`
	Level     int              `json:"level"`
	XP        int              `json:"xp"`
	Lives     int              `json:"lives"`
	Buffs     []*Buff          `json:"buffs"`
	TargetID  string           `json:"targetId,omitempty"`
	IsAlive   bool             `json:"isAlive"`

	// AutoAttackCooldown gates basic attacks between ability casts.
	AutoAttackCooldown float64 `json:"-"`
}

// BackpackCap is the hard limit on carried items.
const BackpackCap = 20

// Ability returns the player's instance of an ability, or nil if unknown.
func (p *Player) Ability(id string) *PlayerAbility {
	for _, pa := range p.Abilities {
		if pa.ID == id {
			return pa
		}
	}
	return nil
}

// BuffByIcon returns the first buff with the given icon, or nil.
func (p *Player) BuffByIcon(icon string) *Buff {
	for _, b := range p.Buffs {
		if b.Icon == icon {
			return b
		}
	}
	return nil
}

// BuffBySpecial returns the first buff carrying a behavior key, or nil.
func (p *Player) BuffBySpecial(special string) *Buff {
	for _, b := range p.Buffs {
		if b.Special == special {
			return b
		}
	}
	return nil
}

// Stealthed reports whether the player is hidden from enemies.
func (p *Player) Stealthed() bool {
	return p.BuffBySpecial(catalog.SpecialStealth) != nil ||
		p.BuffBySpecial(catalog.SpecialVanish) != nil
}

// Stunned reports whether any debuff currently stuns the player.
func (p *Player) Stunned() bool {
	for _, b := range p.Buffs {
		if b.Stunning() {
			return true
		}
	}
	return false
}

// ApplyBuff inserts a buff, refreshing by icon: an existing buff with the
// same icon is removed first (its deltas reverted) so stats never stack
// across refreshes. Returns the displaced buff, if any.
func (p *Player) ApplyBuff(b *Buff) *Buff {
	old := p.RemoveBuffByIcon(b.Icon)
	p.Stats.Apply(b.StatMods, +1)
	p.Buffs = append(p.Buffs, b)
	return old
}

// RemoveBuffByIcon removes the buff with the given icon, reverting its stat
// deltas. Returns the removed buff or nil.
func (p *Player) RemoveBuffByIcon(icon string) *Buff {
	for i, b := range p.Buffs {
		if b.Icon == icon {
			p.Buffs = append(p.Buffs[:i], p.Buffs[i+1:]...)
			p.Stats.Apply(b.StatMods, -1)
			return b
		}
	}
	return nil
}

// RemoveBuff removes a specific buff instance, reverting its deltas.
func (p *Player) RemoveBuff(b *Buff) {
	for i, cur := range p.Buffs {
		if cur == b {
			p.Buffs = append(p.Buffs[:i], p.Buffs[i+1:]...)
			p.Stats.Apply(b.StatMods, -1)
			return
		}
	}
}

// SetPieceCount returns how many equipped items belong to the given set.
func (p *Player) SetPieceCount(setID string) int {
	n := 0
	for _, it := range p.Equipment {
		if it != nil && it.SetID == setID {
			n++
		}
	}
	return n
}

// EquippedSetIDs returns the distinct set ids present on the player.
func (p *Player) EquippedSetIDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range p.Equipment {
		if it != nil && it.SetID != "" && !seen[it.SetID] {
			seen[it.SetID] = true
			out = append(out, it.SetID)
		}
	}
	return out
}

// RecomputeStats rebuilds effective stats from class base, level gains,
// equipment and set bonuses, then re-applies the deltas of every active
// buff. Health and mana are preserved (clamped to the new maxima).
func (p *Player) RecomputeStats(ct *catalog.Catalog) {
	health, mana := p.Stats.Health, p.Stats.Mana

	base := BaseStatsFor(ct, p.ClassID, p.Level)
	for _, it := range p.Equipment {
		if it != nil {
			base.Apply(it.Stats, +1)
		}
	}
	for _, setID := range p.EquippedSetIDs() {
		si := ct.Sets.Get(setID)
		if si == nil {
			continue
		}
		for _, bonus := range si.ActiveBonuses(p.SetPieceCount(setID)) {
			base.Apply(bonus.Stats, +1)
		}
	}
	for _, b := range p.Buffs {
		base.Apply(b.StatMods, +1)
	}

	base.Health = health
	base.Mana = mana
	base.Clamp()
	p.Stats = base
}

// BaseStatsFor derives the unbuffed, unequipped stat block for a class at a
// level. Vitals start full.
func BaseStatsFor(ct *catalog.Catalog, classID string, level int) Stats {
	ci := ct.Classes.Get(classID)
	if ci == nil {
		return Stats{MaxHealth: 1, Health: 1}
	}
	s := Stats{}
	s.Apply(ci.BaseStats, +1)
	if level > 1 {
		gains := make(map[string]int, len(ci.GainsPerLevel))
		for key, gain := range ci.GainsPerLevel {
			gains[key] = gain * (level - 1)
		}
		s.Apply(gains, +1)
	}
	s.Health = s.MaxHealth
	s.Mana = s.MaxMana
	return s
}

// ItemPowerInSlot returns the power of the equipped item, 0 for empty.
func (p *Player) ItemPowerInSlot(slot string) int {
	if it := p.Equipment[slot]; it != nil {
		return it.ItemPower
	}
	return 0
}

// AverageItemPower is the mean power across the eight equipment slots,
// used to scale enemy stats.
func (p *Player) AverageItemPower() int {
	total := 0
	for _, slot := range catalog.EquipmentSlots {
		total += p.ItemPowerInSlot(slot)
	}
	return total / len(catalog.EquipmentSlots)
}
