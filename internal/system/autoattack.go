package system

import (
	"math"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// AutoAttackSystem consumes staged ability casts, then runs basic attacks
// against each player's current target.
type AutoAttackSystem struct{}

func (s *AutoAttackSystem) Phase() Phase { return PhaseAuto }

func (s *AutoAttackSystem) Update(ctx *Context, dt float64) {
	// Staged casts resolve before autos so a cast this tick can set up
	// the auto (stealth openers, target switches).
	for id, req := range ctx.Run.Tracking.PendingCasts {
		if p := ctx.Run.PlayerByID(id); p != nil {
			CastAbility(ctx, p, req)
		}
		delete(ctx.Run.Tracking.PendingCasts, id)
	}

	for _, p := range ctx.Run.Players {
		if !p.IsAlive || p.Stunned() || p.AutoAttackCooldown > 0 {
			continue
		}
		target := ctx.Run.EnemyByID(p.TargetID)
		if target == nil || !target.IsAlive || target.IsHidden {
			continue
		}
		reach := autoRange(p)
		if world.Dist(p.Pos, target.Pos) > reach {
			continue
		}
		if reach > MeleeAutoRange && !ctx.Run.Dungeon.LineWalkable(p.Pos, target.Pos, LoSSampleStep) {
			continue
		}

		s.strike(ctx, p, target)

		// Blade Flurry cleaves nearby enemies for the same swing.
		flurry := p.BuffBySpecial(catalog.SpecialBladeFlurry) != nil
		if flurry {
			room := ctx.Run.CurrentRoom()
			if room != nil {
				for _, other := range room.Enemies {
					if other == target || !other.IsAlive || other.IsHidden {
						continue
					}
					if world.Dist(target.Pos, other.Pos) <= BladeFlurryCleaveRange {
						s.strike(ctx, p, other)
					}
				}
			}
		}

		p.AutoAttackCooldown = autoCooldown(ctx, p, flurry)
	}
}

// strike lands one basic attack: dominant power mitigated by the matching
// stat, then the crit roll and on-hit riders.
func (s *AutoAttackSystem) strike(ctx *Context, p *world.Player, target *world.Enemy) {
	raw := float64(p.Stats.AttackPower)
	mitigator := target.Stats.Armor
	if p.Stats.SpellPower > p.Stats.AttackPower {
		raw = float64(p.Stats.SpellPower)
		mitigator = target.Stats.Resist
	}
	damage := int(math.Round(raw * 100 / float64(100+mitigator)))
	crit := ctx.Combat.Next()*100 < float64(p.Stats.Crit)
	if crit {
		damage = int(math.Round(float64(damage) * ctx.Catalog.Progression.CritMultiplier))
	}
	ApplyDamageToEnemy(ctx, p, target, damage, proto.CombatEvent{
		SourceID: p.ID, TargetID: target.ID, Damage: damage, IsCrit: crit,
	})
	afterHit(ctx, p, target, damage)
}

// autoRange gives spell-power classes a ranged basic attack and everyone
// else a melee one.
func autoRange(p *world.Player) float64 {
	if p.Stats.SpellPower > p.Stats.AttackPower {
		return RangedAutoRange
	}
	return MeleeAutoRange
}

// autoCooldown derives the swing interval from haste, set attack-speed
// bonuses, and Blade Flurry's halving.
func autoCooldown(ctx *Context, p *world.Player, flurry bool) float64 {
	cd := AutoAttackCooldown * 100 / float64(100+p.Stats.Haste)
	for _, setID := range p.EquippedSetIDs() {
		si := ctx.Catalog.Sets.Get(setID)
		if si == nil {
			continue
		}
		for _, bonus := range si.ActiveBonuses(p.SetPieceCount(setID)) {
			if bonus.Effect == catalog.SetEffectAttackSpeed {
				cd *= 1 - bonus.Value
			}
		}
	}
	if flurry {
		cd /= 2
	}
	if cd < 0.2 {
		cd = 0.2
	}
	return cd
}
