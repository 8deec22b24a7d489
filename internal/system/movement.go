package system

import (
	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// MovementSystem applies player movement intent with collision, handles
// room transitions, and picks up ground items the player walks over.
type MovementSystem struct{}

func (s *MovementSystem) Phase() Phase { return PhaseMovement }

func (s *MovementSystem) Update(ctx *Context, dt float64) {
	for _, p := range ctx.Run.Players {
		if !p.IsAlive || p.Stunned() {
			continue
		}
		intent := ctx.Run.Tracking.MoveIntent[p.ID]
		if ctx.Run.Dungeon.ThemeMods.Momentum {
			s.moveWithMomentum(ctx, p, intent, dt)
		} else {
			s.moveDirect(ctx, p, intent, dt)
		}
		s.checkRoomTransition(ctx, p)
		s.pickupNearby(ctx, p)
	}
}

func (s *MovementSystem) moveDirect(ctx *Context, p *world.Player, intent world.Vec2, dt float64) {
	if intent.X == 0 && intent.Y == 0 {
		return
	}
	speed := p.Stats.Speed * ctx.Run.Dungeon.ThemeMods.MovementModifier
	delta := intent.Normalized().Scale(speed * dt)
	s.slide(ctx, p, delta, nil)
}

// moveWithMomentum integrates the Frozen-theme slide physics: intent
// accelerates a velocity that decays by friction and bounces off walls.
func (s *MovementSystem) moveWithMomentum(ctx *Context, p *world.Player, intent world.Vec2, dt float64) {
	vel := ctx.Run.Tracking.Momentum[p.ID]
	speed := p.Stats.Speed * ctx.Run.Dungeon.ThemeMods.MovementModifier

	vel = vel.Add(intent.Normalized().Scale(speed * MomentumAccel))
	vel = vel.Scale(1 - MomentumFriction)
	if vel.Len() > speed {
		vel = vel.Normalized().Scale(speed)
	}

	delta := vel.Scale(dt)
	if delta.X != 0 || delta.Y != 0 {
		s.slide(ctx, p, delta, &vel)
	}
	ctx.Run.Tracking.Momentum[p.ID] = vel
}

// slide tries the combined move, then axis-only fallbacks. With momentum,
// a blocked axis bounces the velocity: -0.5 on a single wall, -0.3 when
// both axes are blocked (corner).
func (s *MovementSystem) slide(ctx *Context, p *world.Player, delta world.Vec2, vel *world.Vec2) {
	d := ctx.Run.Dungeon
	full := p.Pos.Add(delta)
	if d.Walkable(full) {
		p.Pos = full
		return
	}
	xOnly := p.Pos.Add(world.Vec2{X: delta.X})
	yOnly := p.Pos.Add(world.Vec2{Y: delta.Y})
	xOK, yOK := d.Walkable(xOnly), d.Walkable(yOnly)
	switch {
	case xOK:
		p.Pos = xOnly
		if vel != nil {
			vel.Y *= WallBounce
		}
	case yOK:
		p.Pos = yOnly
		if vel != nil {
			vel.X *= WallBounce
		}
	default:
		if vel != nil {
			vel.X *= CornerBounce
			vel.Y *= CornerBounce
		}
	}
}

// checkRoomTransition moves the party's current room pointer when the
// player crosses into another room, swapping room-modifier buffs and
// resetting aggro and boss schedules.
func (s *MovementSystem) checkRoomTransition(ctx *Context, p *world.Player) {
	d := ctx.Run.Dungeon
	cur := d.CurrentRoom()
	next := d.RoomAt(p.Pos)
	if next == nil || cur == nil || next.ID == cur.ID {
		return
	}
	// Transition requires a legal path: strictly inside the new room, a
	// corridor connection, or a cleared current room.
	if !next.ContainsInset(p.Pos, 1) && !cur.ConnectedWith(next.ID) && !cur.Cleared {
		return
	}

	removeRoomModifier(ctx, p)
	d.CurrentRoomID = next.ID
	ctx.Run.Tracking.ClearAggro()
	applyRoomModifier(ctx, p, next)

	// Enemies of the new room that drifted outside it snap back to the
	// center so the fight starts inside the walls.
	for _, e := range next.Enemies {
		if e.IsAlive && !next.Contains(e.Pos) && !e.IsPatrolling {
			e.Pos = next.Center()
		}
	}

	// Boss rooms start their staggered schedules on entry.
	for _, e := range next.Enemies {
		if e.IsBoss && e.IsAlive {
			StaggerBossCooldowns(ctx, e)
		}
	}
}

// StaggerBossCooldowns initializes a boss's two cooldown tracks: abilities
// ready at 4s, 7s, 10s, ... and the first AoE in 6-8s.
func StaggerBossCooldowns(ctx *Context, boss *world.Enemy) {
	tr := ctx.Run.Tracking
	if _, ok := tr.BossFightStart[boss.ID]; ok {
		return // already engaged this fight
	}
	tr.BossFightStart[boss.ID] = ctx.Run.Clock

	abilities := ctx.Catalog.Bosses.AbilitiesForFloor(boss.BossID, ctx.Run.Floor)
	cds := make(map[string]float64, len(abilities))
	for i, ab := range abilities {
		cds[ab.ID] = BossAbilityStaggerBase + BossAbilityStaggerStep*float64(i)
	}
	tr.BossAbilityCDs[boss.ID] = cds
	tr.BossAoECDs[boss.ID] = ctx.Combat.FloatBetween(BossAoEInitialMin, BossAoEInitialMax)

	ctx.Run.Events.Emit(proto.SBossPhaseChange, proto.BossPhaseChange{
		BossID: boss.BossID, Phase: "engaged", RoomID: boss.CurrentRoomID,
	})
}

// applyRoomModifier applies the cursed or blessed entry debuff/buff as a
// delta-tracked stat change. Burning and dark have no entry effect.
func applyRoomModifier(ctx *Context, p *world.Player, room *world.Room) {
	switch room.Modifier {
	case catalog.ModifierCursed:
		p.ApplyBuff(&world.Buff{
			ID:   ctx.Run.NextEntityID("buff"),
			Icon: cursedIcon, Name: "Cursed Ground",
			Duration: 1e9, MaxDuration: 1e9,
			IsDebuff: true,
			StatMods: cursedMods,
		})
	case catalog.ModifierBlessed:
		p.ApplyBuff(&world.Buff{
			ID:   ctx.Run.NextEntityID("buff"),
			Icon: blessedIcon, Name: "Blessed Ground",
			Duration: 1e9, MaxDuration: 1e9,
			StatMods: blessedMods,
		})
	}
}

// removeRoomModifier reverts any room-entry modifier buff on the player.
func removeRoomModifier(ctx *Context, p *world.Player) {
	p.RemoveBuffByIcon(cursedIcon)
	p.RemoveBuffByIcon(blessedIcon)
}

// pickupNearby auto-collects ground items within reach, in any room.
func (s *MovementSystem) pickupNearby(ctx *Context, p *world.Player) {
	for _, room := range ctx.Run.Dungeon.Rooms {
		kept := room.GroundItems[:0]
		for _, gi := range room.GroundItems {
			if world.Dist(p.Pos, gi.Pos) > LootPickupDistance {
				kept = append(kept, gi)
				continue
			}
			if !CollectItem(ctx, p, gi.Item) {
				kept = append(kept, gi) // backpack full, leave it
			}
		}
		room.GroundItems = kept
	}
}

// CollectItem runs the auto-equip pipeline for a picked-up item and emits
// the collection notice. Returns false when the backpack cannot take it.
func CollectItem(ctx *Context, p *world.Player, item *world.Item) bool {
	equipped, stored := AutoEquip(ctx, p, item)
	if !stored {
		return false
	}
	ctx.Run.Events.Emit(proto.SItemCollected, proto.ItemCollected{
		PlayerID: p.ID, ItemID: item.ID, ItemName: item.Name, Equipped: equipped,
	})
	return true
}
