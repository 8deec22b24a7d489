package system

import (
	"math"

	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// DotSystem ages enemy debuffs and applies periodic damage, crediting the
// kill to the debuff's source.
type DotSystem struct{}

func (s *DotSystem) Phase() Phase { return PhaseDots }

func (s *DotSystem) Update(ctx *Context, dt float64) {
	for _, room := range ctx.Run.Dungeon.Rooms {
		for _, e := range room.Enemies {
			if len(e.Debuffs) == 0 {
				continue
			}
			s.tickEnemy(ctx, e, dt)
		}
	}
}

func (s *DotSystem) tickEnemy(ctx *Context, e *world.Enemy, dt float64) {
	kept := e.Debuffs[:0]
	for _, d := range e.Debuffs {
		d.Duration -= dt
		if d.DamagePerTick > 0 && e.IsAlive {
			d.SinceLastTick += dt
			interval := d.TickInterval
			if interval <= 0 {
				interval = 1.0
			}
			for d.SinceLastTick >= interval && e.IsAlive {
				d.SinceLastTick -= interval
				s.applyTick(ctx, e, d)
			}
		}
		if d.Duration > 0 && e.IsAlive {
			kept = append(kept, d)
		}
	}
	// Death handling already wiped the list on a lethal tick.
	if e.IsAlive {
		e.Debuffs = kept
	}
}

// applyTick lands one DoT tick, mitigated by resist.
func (s *DotSystem) applyTick(ctx *Context, e *world.Enemy, d *world.Buff) {
	damage := int(math.Round(float64(d.DamagePerTick) * 100 / float64(100+e.Stats.Resist)))
	if damage < 1 {
		damage = 1
	}
	source := ctx.Run.PlayerByID(d.SourceID)
	ApplyDamageToEnemy(ctx, source, e, damage, proto.CombatEvent{
		SourceID: d.SourceID, TargetID: e.ID, AbilityID: d.Icon,
		Damage: damage, IsDoT: true,
	})
}
