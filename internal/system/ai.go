package system

import (
	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/world"
)

// EnemyAISystem drives every enemy in the occupied room plus any engaged
// patroller: target acquisition with a staggered aggro delay, approach and
// kiting, melee charges, leashing, attacks, and the boss/elite special
// tracks.
type EnemyAISystem struct{}

func (s *EnemyAISystem) Phase() Phase { return PhaseAI }

func (s *EnemyAISystem) Update(ctx *Context, dt float64) {
	cur := ctx.Run.Dungeon.CurrentRoom()
	if cur == nil {
		return
	}
	for _, e := range cur.Enemies {
		if !e.IsAlive || e.IsHidden {
			continue
		}
		if e.Stunned() {
			continue
		}
		if s.leashed(ctx, e, dt) {
			continue
		}
		if e.IsBoss {
			s.bossTracks(ctx, e, dt)
		}
		if e.IsElite {
			s.eliteTrack(ctx, e, dt)
		}
		s.act(ctx, e, dt)
	}
}

// leashed enforces the tether: an enemy dragged too far from its spawn for
// too long snaps home at full health and drops aggro.
func (s *EnemyAISystem) leashed(ctx *Context, e *world.Enemy, dt float64) bool {
	tr := ctx.Run.Tracking
	if world.Dist(e.Pos, e.SpawnPos) <= LeashDistance {
		delete(tr.LeashStart, e.ID)
		return false
	}
	start, ok := tr.LeashStart[e.ID]
	if !ok {
		tr.LeashStart[e.ID] = ctx.Run.Clock
		return false
	}
	if ctx.Run.Clock-start < LeashResetDelay {
		return false
	}
	e.Pos = e.SpawnPos
	e.Stats.Health = e.Stats.MaxHealth
	e.TargetID = ""
	e.CurrentRoomID = e.OriginalRoomID
	delete(tr.LeashStart, e.ID)
	delete(tr.AggroAt, e.ID)
	delete(tr.Charges, e.ID)
	return true
}

// act acquires a target and runs the approach/kite/attack cycle.
func (s *EnemyAISystem) act(ctx *Context, e *world.Enemy, dt float64) {
	tr := ctx.Run.Tracking

	// A taunting pet holds the enemy's attention while it lives.
	if pet := ctx.Run.PetByID(e.TargetID); pet != nil && pet.IsAlive {
		s.engagePet(ctx, e, pet, dt)
		return
	}

	target := s.nearestTarget(ctx, e)
	if target == nil {
		e.TargetID = ""
		delete(tr.AggroAt, e.ID)
		return
	}

	// Staggered aggro: the first sighting stamps a per-enemy offset, then
	// the delay runs before the enemy commits.
	at, ok := tr.AggroAt[e.ID]
	if !ok {
		tr.AggroAt[e.ID] = ctx.Run.Clock + ctx.Combat.FloatBetween(0, AggroStaggerMax)
		return
	}
	delay := EnemyAggroDelay
	if e.IsPatrolling || e.WasPatrolling || tr.WasPatroller[e.ID] {
		delay = PatrollerAggroDelay
	}
	if ctx.Run.Clock < at+delay {
		return
	}

	if e.IsPatrolling {
		e.ClearPatrol()
		tr.WasPatroller[e.ID] = true
	}
	e.TargetID = target.ID

	dist := world.Dist(e.Pos, target.Pos)

	// Mid-charge movement overrides everything else.
	if charge := tr.Charges[e.ID]; charge != nil {
		s.runCharge(ctx, e, target, charge, dt)
		return
	}

	// Ranged and casters keep their distance.
	if e.Type != catalog.EnemyMelee && dist < KiteDistance {
		away := e.Pos.Sub(target.Pos).Normalized().Scale(KiteSpeed * dt)
		next := e.Pos.Add(away)
		if ctx.Run.Dungeon.Walkable(next) {
			e.Pos = next
		}
		s.tryAttack(ctx, e, target, dist)
		return
	}

	if dist > e.AttackRange {
		// Melee in the charge window may open with a charge.
		if e.Type == catalog.EnemyMelee && dist >= ChargeMinDist && dist <= ChargeMaxDist &&
			ctx.Combat.Chance(ChargeChance) {
			tr.Charges[e.ID] = &world.ChargeState{TargetID: target.ID, StartedAt: ctx.Run.Clock}
			return
		}
		moveToward(e, target.Pos, e.Stats.Speed*dt)
		return
	}
	s.tryAttack(ctx, e, target, dist)
}

// runCharge moves the charging enemy at charge speed and resolves the
// boosted impact, or aborts a charge that ran too long.
func (s *EnemyAISystem) runCharge(ctx *Context, e *world.Enemy, target *world.Player, charge *world.ChargeState, dt float64) {
	tr := ctx.Run.Tracking
	if ctx.Run.Clock-charge.StartedAt > ChargeMaxTime || !target.IsAlive || target.ID != charge.TargetID {
		delete(tr.Charges, e.ID)
		return
	}
	moveToward(e, target.Pos, ChargeSpeed*dt)
	if world.Dist(e.Pos, target.Pos) <= e.AttackRange {
		delete(tr.Charges, e.ID)
		boosted := int(float64(e.Stats.AttackPower) * ChargeBonusMult)
		ProcessEnemyAttack(ctx, e, target, boosted)
		tr.AttackCooldowns[e.ID] = e.AttackSpeed
	}
}

// tryAttack lands a basic attack when in range, off cooldown and, for
// ranged and casters, with line of sight.
func (s *EnemyAISystem) tryAttack(ctx *Context, e *world.Enemy, target *world.Player, dist float64) {
	if dist > e.AttackRange || ctx.Run.Tracking.AttackCooldowns[e.ID] > 0 {
		return
	}
	if e.Type != catalog.EnemyMelee && !ctx.Run.Dungeon.LineWalkable(e.Pos, target.Pos, LoSSampleStep) {
		return
	}
	ProcessEnemyAttack(ctx, e, target, e.Stats.AttackPower)
	ctx.Run.Tracking.AttackCooldowns[e.ID] = e.AttackSpeed
}

// engagePet chases and attacks the taunting pet.
func (s *EnemyAISystem) engagePet(ctx *Context, e *world.Enemy, pet *world.Pet, dt float64) {
	dist := world.Dist(e.Pos, pet.Pos)
	if dist > e.AttackRange {
		moveToward(e, pet.Pos, e.Stats.Speed*dt)
		return
	}
	if ctx.Run.Tracking.AttackCooldowns[e.ID] > 0 {
		return
	}
	ProcessEnemyAttackOnPet(ctx, e, pet, e.Stats.AttackPower)
	ctx.Run.Tracking.AttackCooldowns[e.ID] = e.AttackSpeed
}

// nearestTarget picks the closest living, non-stealthed player within the
// room plus a small padding margin.
func (s *EnemyAISystem) nearestTarget(ctx *Context, e *world.Enemy) *world.Player {
	room := ctx.Run.Dungeon.Room(e.CurrentRoomID)
	var best *world.Player
	bestDist := 0.0
	for _, p := range ctx.Run.Players {
		if !p.IsAlive || p.Stealthed() {
			continue
		}
		if room != nil && !room.ContainsInset(p.Pos, -RoomPadding) {
			continue
		}
		d := world.Dist(e.Pos, p.Pos)
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// bossTracks runs the two boss schedules: the named ability track with
// staggered cooldowns, and the recurring telegraphed AoE.
func (s *EnemyAISystem) bossTracks(ctx *Context, boss *world.Enemy, dt float64) {
	tr := ctx.Run.Tracking
	if _, engaged := tr.BossFightStart[boss.ID]; !engaged {
		return
	}
	target := s.nearestTarget(ctx, boss)

	cds := tr.BossAbilityCDs[boss.ID]
	for id := range cds {
		cds[id] -= dt
	}
	if target != nil {
		for _, ab := range ctx.Catalog.Bosses.AbilitiesForFloor(boss.BossID, ctx.Run.Floor) {
			if cds[ab.ID] > 0 {
				continue
			}
			cds[ab.ID] = ab.Cooldown
			s.castBossAbility(ctx, boss, ab, target)
		}
	}

	tr.BossAoECDs[boss.ID] -= dt
	if tr.BossAoECDs[boss.ID] <= 0 && target != nil {
		s.spawnBossAoE(ctx, boss, target)
		recur := 10 - float64(ctx.Run.Floor)*0.5
		if recur < 4 {
			recur = 4
		}
		tr.BossAoECDs[boss.ID] = recur
	}
}

// castBossAbility resolves one boss ability: a burst against everyone in
// range when it carries a radius, otherwise a single-target hit.
func (s *EnemyAISystem) castBossAbility(ctx *Context, boss *world.Enemy, ab catalog.BossAbility, target *world.Player) {
	if ab.Radius > 0 {
		for _, p := range ctx.Run.Players {
			if p.IsAlive && world.Dist(boss.Pos, p.Pos) <= ab.Radius {
				ProcessEnemyAttack(ctx, boss, p, ab.Damage)
			}
		}
		return
	}
	ProcessEnemyAttack(ctx, boss, target, ab.Damage)
}

// spawnBossAoE drops the boss's themed ground effect at or toward the
// target.
func (s *EnemyAISystem) spawnBossAoE(ctx *Context, boss *world.Enemy, target *world.Player) {
	SpawnGroundEffect(ctx, boss, boss.BossID, target.Pos)
}

// eliteTrack spawns an elite's void zone under its target on a fixed
// cooldown while it has one.
func (s *EnemyAISystem) eliteTrack(ctx *Context, e *world.Enemy, dt float64) {
	tr := ctx.Run.Tracking
	if cd, ok := tr.EliteCDs[e.ID]; ok && cd > 0 {
		tr.EliteCDs[e.ID] = cd - dt
		return
	}
	target := ctx.Run.PlayerByID(e.TargetID)
	if target == nil || !target.IsAlive {
		return
	}
	ctx.Run.GroundEffects = append(ctx.Run.GroundEffects, &world.GroundEffect{
		ID:           ctx.Run.NextEntityID("effect"),
		Type:         world.EffectVoidZone,
		Pos:          target.Pos,
		Radius:       40,
		MaxRadius:    90,
		Damage:       6 + 2*ctx.Run.Floor,
		TickInterval: 1.0,
		Duration:     5.0,
		SourceID:     e.ID,
		RoomID:       e.CurrentRoomID,
	})
	tr.EliteCDs[e.ID] = EliteAoECooldown
}
