package system

import "github.com/gloomspire/server/internal/world"

// TimerSystem advances player cooldowns, mana regen and buff durations,
// recomputes stats when a buff expires, and sweeps stale ground items.
type TimerSystem struct {
	manaCarry map[string]float64
}

func (s *TimerSystem) Phase() Phase { return PhaseTimers }

func (s *TimerSystem) Update(ctx *Context, dt float64) {
	if s.manaCarry == nil {
		s.manaCarry = make(map[string]float64)
	}
	for _, p := range ctx.Run.Players {
		for _, pa := range p.Abilities {
			if pa.Cooldown > 0 {
				pa.Cooldown -= dt
				if pa.Cooldown < 0 {
					pa.Cooldown = 0
				}
			}
		}
		if p.AutoAttackCooldown > 0 {
			p.AutoAttackCooldown -= dt
		}

		if p.IsAlive && p.Stats.Mana < p.Stats.MaxMana {
			// 2% of max mana per second, accumulated fractionally.
			s.manaCarry[p.ID] += float64(p.Stats.MaxMana) * 0.02 * dt
			if whole := int(s.manaCarry[p.ID]); whole > 0 {
				p.Stats.RestoreMana(whole)
				s.manaCarry[p.ID] -= float64(whole)
			}
		}

		expireBuffs(ctx, p, dt)
	}

	for _, pet := range ctx.Run.Pets {
		if pet.AttackCooldown > 0 {
			pet.AttackCooldown -= dt
		}
		if pet.TauntCooldown > 0 {
			pet.TauntCooldown -= dt
		}
	}

	for id, cd := range ctx.Run.Tracking.AttackCooldowns {
		if cd > 0 {
			ctx.Run.Tracking.AttackCooldowns[id] = cd - dt
		}
	}

	if ctx.GroundItemTTL > 0 {
		sweepGroundItems(ctx)
	}
}

// expireBuffs ages the player's buffs and removes the expired ones,
// reverting their stat deltas.
func expireBuffs(ctx *Context, p *world.Player, dt float64) {
	var expired []*world.Buff
	for _, b := range p.Buffs {
		b.Duration -= dt
		if b.Duration <= 0 {
			expired = append(expired, b)
		}
	}
	for _, b := range expired {
		p.RemoveBuff(b)
	}
}

// sweepGroundItems despawns uncollected drops after their TTL.
func sweepGroundItems(ctx *Context) {
	for _, room := range ctx.Run.Dungeon.Rooms {
		kept := room.GroundItems[:0]
		for _, gi := range room.GroundItems {
			if ctx.Run.Clock-gi.DroppedAt < ctx.GroundItemTTL {
				kept = append(kept, gi)
			}
		}
		room.GroundItems = kept
	}
}
