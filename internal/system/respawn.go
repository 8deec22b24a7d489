package system

import (
	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/world"
)

// RespawnSystem brings dead players back: immediately in place with a
// Soulstone, otherwise after the respawn delay at the floor entrance with
// the field reset that entails.
type RespawnSystem struct{}

func (s *RespawnSystem) Phase() Phase { return PhaseRespawn }

func (s *RespawnSystem) Update(ctx *Context, dt float64) {
	for _, p := range ctx.Run.Players {
		if p.IsAlive {
			continue
		}
		diedAt, ok := ctx.Run.Tracking.DeathTimes[p.ID]
		if !ok {
			continue
		}

		if stone := p.BuffBySpecial(catalog.SpecialSoulstone); stone != nil {
			p.RemoveBuff(stone)
			s.reviveInPlace(ctx, p)
			continue
		}

		if p.Lives <= 0 {
			continue // out of lives, the run task ends the run
		}
		if ctx.Run.Clock-diedAt < ctx.RespawnDelay {
			continue
		}
		s.reviveAtStart(ctx, p)
	}
}

// reviveInPlace is the Soulstone path: same spot, full health, half mana,
// no field reset.
func (s *RespawnSystem) reviveInPlace(ctx *Context, p *world.Player) {
	delete(ctx.Run.Tracking.DeathTimes, p.ID)
	p.IsAlive = true
	p.Stats.Health = p.Stats.MaxHealth
	p.Stats.Mana = p.Stats.MaxMana / 2
}

// reviveAtStart returns the player to the floor entrance and resets the
// field so the re-approach is fair: aggro dropped, displaced enemies sent
// home, engaged bosses rescheduled, and lingering effects near the
// entrance purged.
func (s *RespawnSystem) reviveAtStart(ctx *Context, p *world.Player) {
	delete(ctx.Run.Tracking.DeathTimes, p.ID)
	clearTransientBuffs(p)
	p.IsAlive = true
	p.Stats.Health = p.Stats.MaxHealth
	p.Stats.Mana = p.Stats.MaxMana / 2

	start := ctx.Run.Dungeon.StartRoom()
	if start == nil {
		return
	}
	p.Pos = start.Center()
	ctx.Run.Dungeon.CurrentRoomID = start.ID
	delete(ctx.Run.Tracking.Momentum, p.ID)
	ctx.Run.Tracking.ClearAggro()

	for _, room := range ctx.Run.Dungeon.Rooms {
		for _, e := range room.Enemies {
			if !e.IsAlive {
				continue
			}
			e.TargetID = ""
			if !e.IsPatrolling && e.Pos != e.SpawnPos {
				e.Pos = e.SpawnPos
				e.Stats.Health = e.Stats.MaxHealth
				e.CurrentRoomID = e.OriginalRoomID
			}
			if e.IsBoss {
				resetBossFight(ctx, e)
			}
		}
	}

	// Ground effects hugging the entrance would kill the fresh spawn.
	kept := ctx.Run.GroundEffects[:0]
	for _, ge := range ctx.Run.GroundEffects {
		if world.Dist(ge.Pos, p.Pos) <= RespawnGroundEffectPurge {
			delete(ctx.Run.Tracking.EffectTicks, ge.ID)
			continue
		}
		kept = append(kept, ge)
	}
	ctx.Run.GroundEffects = kept
}

// clearTransientBuffs strips every buff, reverting their deltas.
func clearTransientBuffs(p *world.Player) {
	for len(p.Buffs) > 0 {
		p.RemoveBuff(p.Buffs[0])
	}
}
