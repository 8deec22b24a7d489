package system

import "github.com/gloomspire/server/internal/world"

// PatrolSystem walks idle patrollers along their waypoint chains, moves
// patrollers that wander into the occupied room onto its roster, and
// returns disengaged enemies to their spawn points.
type PatrolSystem struct{}

func (s *PatrolSystem) Phase() Phase { return PhasePatrol }

func (s *PatrolSystem) Update(ctx *Context, dt float64) {
	for _, room := range ctx.Run.Dungeon.Rooms {
		for _, e := range room.Enemies {
			if !e.IsAlive || e.Stunned() {
				continue
			}
			switch {
			case e.IsPatrolling && e.TargetID == "":
				s.walkPatrol(ctx, e, dt)
			case e.TargetID == "" && room.ID != ctx.Run.Dungeon.CurrentRoomID:
				s.returnToSpawn(ctx, e, dt)
			}
		}
	}
	s.reassignPatrollers(ctx)
}

// walkPatrol advances one waypoint chain. Direction flips at either end,
// so routes are walked back and forth indefinitely.
func (s *PatrolSystem) walkPatrol(ctx *Context, e *world.Enemy, dt float64) {
	if len(e.PatrolWaypoints) < 2 {
		return
	}
	target := e.PatrolWaypoints[e.CurrentWaypoint]
	if world.Dist(e.Pos, target) <= WaypointArriveAt {
		next := e.CurrentWaypoint + e.PatrolDirection
		if next < 0 || next >= len(e.PatrolWaypoints) {
			e.PatrolDirection = -e.PatrolDirection
			next = e.CurrentWaypoint + e.PatrolDirection
		}
		e.CurrentWaypoint = next
		target = e.PatrolWaypoints[e.CurrentWaypoint]
	}
	moveToward(e, target, e.Stats.Speed*dt)
	if room := ctx.Run.Dungeon.RoomAt(e.Pos); room != nil {
		e.CurrentRoomID = room.ID
	}
}

// returnToSpawn walks a disengaged enemy home and heals it to full on
// arrival. Bosses also reset their fight schedule so re-entry re-staggers.
func (s *PatrolSystem) returnToSpawn(ctx *Context, e *world.Enemy, dt float64) {
	if e.Pos == e.SpawnPos {
		return
	}
	if world.Dist(e.Pos, e.SpawnPos) <= WaypointArriveAt {
		e.Pos = e.SpawnPos
		e.Stats.Health = e.Stats.MaxHealth
		e.CurrentRoomID = e.OriginalRoomID
		delete(ctx.Run.Tracking.LeashStart, e.ID)
		if e.IsBoss {
			resetBossFight(ctx, e)
		}
		return
	}
	moveToward(e, e.SpawnPos, IdleReturnSpeed*dt)
}

// resetBossFight clears a boss's engagement state so the next room entry
// starts a fresh staggered schedule.
func resetBossFight(ctx *Context, boss *world.Enemy) {
	tr := ctx.Run.Tracking
	delete(tr.BossFightStart, boss.ID)
	delete(tr.BossAbilityCDs, boss.ID)
	delete(tr.BossAoECDs, boss.ID)
}

// reassignPatrollers moves a patroller deep inside the occupied room onto
// that room's enemy roster, so room-clear counting and AI treat it as a
// resident.
func (s *PatrolSystem) reassignPatrollers(ctx *Context) {
	d := ctx.Run.Dungeon
	cur := d.CurrentRoom()
	if cur == nil {
		return
	}
	for _, room := range d.Rooms {
		if room.ID == cur.ID {
			continue
		}
		kept := room.Enemies[:0]
		for _, e := range room.Enemies {
			if e.IsAlive && e.IsPatrolling && cur.ContainsInset(e.Pos, PatrolRoomInset) {
				e.CurrentRoomID = cur.ID
				e.OriginalRoomID = cur.ID
				e.SpawnPos = e.Pos
				cur.Enemies = append(cur.Enemies, e)
				// A live intruder re-opens the fight.
				cur.Cleared = false
				continue
			}
			kept = append(kept, e)
		}
		room.Enemies = kept
	}
}

// moveToward steps an enemy at most maxStep toward target.
func moveToward(e *world.Enemy, target world.Vec2, maxStep float64) {
	delta := target.Sub(e.Pos)
	if delta.Len() <= maxStep {
		e.Pos = target
		return
	}
	e.Pos = e.Pos.Add(delta.Normalized().Scale(maxStep))
}
