package system

import (
	"math"

	"github.com/gloomspire/server/internal/world"
)

// Ground effect tuning.
const (
	effectGrowTime     = 3.5  // seconds for expanding shapes to reach max
	beamRotationSpeed  = 1.5  // radians per second
	beamHalfAngle      = 0.35 // radians
	waveFrontThickness = 25.0 // expanding circle hits in this band
	gravityPullSpeed   = 80.0
	gravityCoreRadius  = 40.0
)

// SpawnGroundEffect creates the themed damaging volume for a boss's AoE
// track. The boss template's aoe_type picks the shape.
func SpawnGroundEffect(ctx *Context, boss *world.Enemy, bossID string, targetPos world.Vec2) {
	bi := ctx.Catalog.Bosses.Get(bossID)
	if bi == nil {
		return
	}
	damage := 8 + 3*ctx.Run.Floor
	ge := &world.GroundEffect{
		ID:           ctx.Run.NextEntityID("effect"),
		Type:         bi.AoEType,
		Damage:       damage,
		TickInterval: 1.0,
		SourceID:     boss.ID,
		RoomID:       boss.CurrentRoomID,
	}
	switch bi.AoEType {
	case world.EffectExpandingCircle:
		ge.Pos = boss.Pos
		ge.Radius = 30
		ge.MaxRadius = 250
		ge.Duration = effectGrowTime
		ge.TickInterval = 0.5
	case world.EffectMovingWave:
		ge.Pos = boss.Pos
		ge.Direction = targetPos.Sub(boss.Pos).Normalized()
		ge.Speed = 150
		ge.Radius = 60
		ge.Duration = 4
	case world.EffectVoidZone:
		ge.Pos = targetPos
		ge.Radius = 50
		ge.MaxRadius = 120
		ge.Duration = 6
	case world.EffectRotatingBeam:
		ge.Pos = boss.Pos
		ge.Radius = 400
		ge.Rotation = math.Atan2(targetPos.Y-boss.Pos.Y, targetPos.X-boss.Pos.X)
		ge.Duration = 8
		ge.TickInterval = 0.5
	case world.EffectFirePool:
		ge.Pos = targetPos
		ge.Radius = 80
		ge.Duration = 6
	case world.EffectGravityWell:
		ge.Pos = targetPos
		ge.Radius = 140
		ge.Duration = 5
	default:
		return
	}
	ctx.Run.GroundEffects = append(ctx.Run.GroundEffects, ge)
}

// EffectSystem advances every ground effect's shape, applies its damage on
// the effect's own cadence, and drops expired ones.
type EffectSystem struct{}

func (s *EffectSystem) Phase() Phase { return PhaseEffects }

func (s *EffectSystem) Update(ctx *Context, dt float64) {
	kept := ctx.Run.GroundEffects[:0]
	for _, ge := range ctx.Run.GroundEffects {
		ge.Duration -= dt
		if ge.Expired() {
			delete(ctx.Run.Tracking.EffectTicks, ge.ID)
			continue
		}
		s.advance(ge, dt)
		s.applyDamage(ctx, ge, dt)
		kept = append(kept, ge)
	}
	ctx.Run.GroundEffects = kept
}

// advance runs the per-type shape update.
func (s *EffectSystem) advance(ge *world.GroundEffect, dt float64) {
	switch ge.Type {
	case world.EffectExpandingCircle, world.EffectVoidZone:
		if ge.MaxRadius > ge.Radius {
			ge.Radius += ge.MaxRadius / effectGrowTime * dt
			if ge.Radius > ge.MaxRadius {
				ge.Radius = ge.MaxRadius
			}
		}
	case world.EffectMovingWave:
		ge.Pos = ge.Pos.Add(ge.Direction.Scale(ge.Speed * dt))
	case world.EffectRotatingBeam:
		ge.Rotation += beamRotationSpeed * dt
	}
}

// applyDamage hits each player inside the effect, honoring the per-player
// tick cadence. Gravity wells also drag players toward their center.
func (s *EffectSystem) applyDamage(ctx *Context, ge *world.GroundEffect, dt float64) {
	for _, p := range ctx.Run.Players {
		if !p.IsAlive {
			continue
		}
		if ge.Type == world.EffectGravityWell {
			s.pullToward(ctx, p, ge, dt)
		}
		if !s.hits(ge, p.Pos) {
			continue
		}
		ticks := ctx.Run.Tracking.EffectTicks[ge.ID]
		if ticks == nil {
			ticks = make(map[string]float64)
			ctx.Run.Tracking.EffectTicks[ge.ID] = ticks
		}
		last, seen := ticks[p.ID]
		if seen && ctx.Run.Clock-last < ge.TickInterval {
			continue
		}
		ticks[p.ID] = ctx.Run.Clock
		hazardDamage(ctx, p, ge.Damage, ge.SourceID)
	}
}

// pullToward drags a player inside the well toward its center. The drag
// never pulls through the center.
func (s *EffectSystem) pullToward(ctx *Context, p *world.Player, ge *world.GroundEffect, dt float64) {
	d := world.Dist(p.Pos, ge.Pos)
	if d > ge.Radius || d == 0 {
		return
	}
	step := gravityPullSpeed * dt
	if step > d {
		step = d
	}
	next := p.Pos.Add(ge.Pos.Sub(p.Pos).Normalized().Scale(step))
	if ctx.Run.Dungeon.Walkable(next) {
		p.Pos = next
	}
}

// hits runs the per-type hit test.
func (s *EffectSystem) hits(ge *world.GroundEffect, pos world.Vec2) bool {
	d := world.Dist(ge.Pos, pos)
	switch ge.Type {
	case world.EffectExpandingCircle:
		return math.Abs(d-ge.Radius) <= waveFrontThickness
	case world.EffectRotatingBeam:
		if d > ge.Radius || d == 0 {
			return false
		}
		angle := math.Atan2(pos.Y-ge.Pos.Y, pos.X-ge.Pos.X)
		return math.Abs(math.Remainder(angle-ge.Rotation, 2*math.Pi)) <= beamHalfAngle
	case world.EffectGravityWell:
		return d <= gravityCoreRadius
	default:
		return d <= ge.Radius
	}
}
