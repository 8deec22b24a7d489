package system

import (
	"math"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// flamethrowerCone is the half-angle of a flamethrower's damage cone.
const flamethrowerCone = 0.5

// HazardSystem cycles traps, rolls ambient theme hazards, ticks burning
// rooms and springs ambushes.
type HazardSystem struct{}

func (s *HazardSystem) Phase() Phase { return PhaseHazards }

func (s *HazardSystem) Update(ctx *Context, dt float64) {
	s.cycleTraps(ctx, dt)
	s.ambientHazards(ctx)
	s.burningRooms(ctx)
	s.springAmbushes(ctx)
}

// cycleTraps advances every trap's active/inactive state and damages
// players caught in an active trap, once per activation.
func (s *HazardSystem) cycleTraps(ctx *Context, dt float64) {
	for _, room := range ctx.Run.Dungeon.Rooms {
		for _, trap := range room.Traps {
			trap.StateTime += dt
			if trap.Active && trap.StateTime >= trap.ActiveDuration {
				trap.Active = false
				trap.StateTime = 0
			} else if !trap.Active && trap.StateTime >= trap.InactiveDuration {
				trap.Active = true
				trap.StateTime = 0
			}
			if !trap.Active {
				continue
			}
			activatedAt := ctx.Run.Clock - trap.StateTime
			for _, p := range ctx.Run.Players {
				if !p.IsAlive || !trapHits(trap, p.Pos) {
					continue
				}
				hits := ctx.Run.Tracking.TrapHits[trap.ID]
				if hits == nil {
					hits = make(map[string]float64)
					ctx.Run.Tracking.TrapHits[trap.ID] = hits
				}
				if hits[p.ID] >= activatedAt {
					continue // already hit this activation
				}
				hits[p.ID] = ctx.Run.Clock
				hazardDamage(ctx, p, trap.Damage, trap.ID)
			}
		}
	}
}

// trapHits tests a position against the trap's shape: a circle for spikes,
// an aimed cone for flamethrowers.
func trapHits(trap *world.Trap, pos world.Vec2) bool {
	d := world.Dist(trap.Pos, pos)
	if d > trap.Radius {
		return false
	}
	if trap.Type != world.TrapFlamethrower || d == 0 {
		return true
	}
	angle := math.Atan2(pos.Y-trap.Pos.Y, pos.X-trap.Pos.X)
	diff := math.Abs(math.Remainder(angle-trap.Direction, 2*math.Pi))
	return diff <= flamethrowerCone
}

// ambientHazards rolls the theme's environmental damage against each
// living player on a fixed cadence.
func (s *HazardSystem) ambientHazards(ctx *Context) {
	mods := ctx.Run.Dungeon.ThemeMods
	if mods.HazardChance <= 0 || mods.HazardDamage <= 0 {
		return
	}
	if ctx.Run.Clock < ctx.Run.Tracking.HazardCheckAt {
		return
	}
	ctx.Run.Tracking.HazardCheckAt = ctx.Run.Clock + HazardCheckInterval
	for _, p := range ctx.Run.Players {
		if p.IsAlive && ctx.Combat.Chance(mods.HazardChance) {
			hazardDamage(ctx, p, mods.HazardDamage, "hazard")
		}
	}
}

// burningRooms ticks periodic fire damage on players standing in a
// burning-modifier room.
func (s *HazardSystem) burningRooms(ctx *Context) {
	for _, p := range ctx.Run.Players {
		if !p.IsAlive {
			continue
		}
		room := ctx.Run.Dungeon.RoomAt(p.Pos)
		if room == nil || room.Modifier != catalog.ModifierBurning {
			continue
		}
		last, ok := ctx.Run.Tracking.ModifierTicks[p.ID]
		if ok && ctx.Run.Clock-last < BurningTickInterval {
			continue
		}
		ctx.Run.Tracking.ModifierTicks[p.ID] = ctx.Run.Clock
		damage := 3 + ctx.Run.Floor
		hazardDamage(ctx, p, damage, "burning_ground")
	}
}

// springAmbushes reveals an ambush room's hidden enemies the first time a
// player steps deep enough inside it. Revealed enemies skip the usual
// aggro delay.
func (s *HazardSystem) springAmbushes(ctx *Context) {
	for _, room := range ctx.Run.Dungeon.Rooms {
		if room.Variant != world.VariantAmbush || ctx.Run.Tracking.AmbushFired[room.ID] {
			continue
		}
		triggered := false
		for _, p := range ctx.Run.Players {
			if p.IsAlive && room.ContainsInset(p.Pos, RoomPadding) {
				triggered = true
				break
			}
		}
		if !triggered {
			continue
		}
		ctx.Run.Tracking.AmbushFired[room.ID] = true
		for _, e := range room.Enemies {
			if e.IsHidden && e.IsAlive {
				e.IsHidden = false
				ctx.Run.Tracking.AggroAt[e.ID] = ctx.Run.Clock - EnemyAggroDelay
			}
		}
	}
}

// hazardDamage applies unmitigated environmental damage. Ice Block is the
// only protection that applies; armor does not.
func hazardDamage(ctx *Context, p *world.Player, damage int, sourceID string) {
	if p.BuffBySpecial(catalog.SpecialIceBlock) != nil {
		return
	}
	p.Stats.Health -= damage
	killed := p.Stats.Health <= 0
	if killed {
		p.Stats.Health = 0
	}
	ctx.EmitCombat(proto.CombatEvent{
		SourceID: sourceID, TargetID: p.ID, Damage: damage, Killed: killed,
	})
	if killed {
		HandlePlayerDeath(ctx, p)
	}
}
