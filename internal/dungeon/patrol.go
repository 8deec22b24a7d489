package dungeon

import (
	"github.com/gloomspire/server/internal/rng"
	"github.com/gloomspire/server/internal/world"
)

// assignPatrols turns 1-5 spawned enemies into patrollers on floors >= 2.
// Each route is a walk of 2-4 connected non-boss rooms; waypoints alternate
// room centers and corridor midpoints so patrollers never cut through
// walls.
func assignPatrols(d *world.Dungeon, r *rng.Stream, floor int) {
	if floor < 2 {
		return
	}

	var candidates []*world.Enemy
	for _, room := range d.Rooms {
		if room.Type == world.RoomBoss || room.Type == world.RoomStart {
			continue
		}
		for _, e := range room.Enemies {
			if !e.IsElite && !e.IsHidden {
				candidates = append(candidates, e)
			}
		}
	}
	if len(candidates) == 0 {
		return
	}

	count := r.IntBetween(1, 5)
	if count > len(candidates) {
		count = len(candidates)
	}
	rng.Shuffle(r, candidates)

	for _, e := range candidates[:count] {
		route := patrolRoute(d, r, e.CurrentRoomID)
		if len(route) < 2 {
			continue
		}
		e.IsPatrolling = true
		e.PatrolWaypoints = PatrolWaypoints(d, route)
		e.CurrentWaypoint = 0
		e.PatrolDirection = 1
	}
}

// patrolRoute walks 2-4 rooms starting at roomID, following corridor
// connections and avoiding the start and boss rooms and immediate
// backtracking.
func patrolRoute(d *world.Dungeon, r *rng.Stream, roomID int) []int {
	route := []int{roomID}
	length := r.IntBetween(2, 4)
	cur := roomID
	prev := -1
	for len(route) < length {
		room := d.Room(cur)
		if room == nil {
			break
		}
		var options []int
		for _, next := range room.ConnectedTo {
			nextRoom := d.Room(next)
			if nextRoom == nil || nextRoom.Type == world.RoomBoss || nextRoom.Type == world.RoomStart || next == prev {
				continue
			}
			options = append(options, next)
		}
		if len(options) == 0 {
			break
		}
		next := rng.Pick(r, options)
		route = append(route, next)
		prev, cur = cur, next
	}
	return route
}

// PatrolWaypoints expands a room route into the waypoint chain
// [center(A), mid(A,B), center(B), mid(B,C), center(C), ...]. The corridor
// midpoints keep the walk on walkable ground.
func PatrolWaypoints(d *world.Dungeon, route []int) []world.Vec2 {
	var out []world.Vec2
	for i, id := range route {
		room := d.Room(id)
		if room == nil {
			continue
		}
		if i > 0 {
			prev := d.Room(route[i-1])
			if prev != nil {
				out = append(out, world.Midpoint(prev.Center(), room.Center()))
			}
		}
		out = append(out, room.Center())
	}
	return out
}
