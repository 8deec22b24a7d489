// Package dungeon generates one floor of the dungeon: themed rooms on a
// jittered grid, corridor connectivity, enemy formations, patrol routes,
// traps and chests. Generation is deterministic for a (seed, floor) pair
// and total: every failure mode is corrected in place.
package dungeon

import (
	"math"

	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/rng"
	"github.com/gloomspire/server/internal/world"
)

// Layout tuning. Rooms are placed on a shuffled grid so they can never
// overlap before the boss room is doubled.
const (
	gridCols     = 4
	gridRows     = 3
	gridCell     = 600.0
	roomMinSize  = 360.0
	roomMaxSize  = 520.0
	startMinSize = 480.0 // fits the three vendors
	minRooms     = 5
	maxRooms     = 10
)

// Params are the inputs to one floor generation. The stat multipliers come
// from the scaling script (or its fallback) and fold floor, party size and
// item power into enemy stats.
type Params struct {
	Seed         string
	Floor        int
	PartySize    int
	AvgItemPower int
	HealthMult   float64
	DamageMult   float64
}

// Generate builds a complete dungeon floor.
func Generate(ct *catalog.Catalog, p Params, log *zap.Logger) *world.Dungeon {
	r := rng.ForFloor(p.Seed, p.Floor)
	theme := rng.Pick(r, ct.Themes.ForFloor(p.Floor))

	d := &world.Dungeon{
		Floor: p.Floor,
		Theme: theme.ID,
		ThemeMods: world.ThemeMods{
			MovementModifier: theme.MovementModifier,
			Momentum:         theme.Momentum,
			HazardDamage:     theme.HazardDamage,
			HazardChance:     theme.HazardChance,
			TrapMultiplier:   theme.TrapMultiplier,
		},
	}

	placeRooms(d, r)
	connectRooms(d, r)
	assignTypes(d, r, ct)
	assignVariants(d, r, theme, p.Floor)
	populateRooms(d, r, ct, theme, p)
	assignPatrols(d, r, p.Floor)
	placeTraps(d, r, theme, p)
	placeChests(d, r, theme, p)
	placeVendors(d)
	ensureBossReachable(d, log)

	d.CurrentRoomID = d.StartRoom().ID
	log.Debug("floor generated",
		zap.Int("floor", p.Floor),
		zap.String("theme", theme.ID),
		zap.Int("rooms", len(d.Rooms)))
	return d
}

// placeRooms drops 5-10 rectangles into distinct cells of a shuffled grid.
// Room 0 is the start room and is enlarged for the vendor row.
func placeRooms(d *world.Dungeon, r *rng.Stream) {
	type cell struct{ col, row int }
	cells := make([]cell, 0, gridCols*gridRows)
	for col := 0; col < gridCols; col++ {
		for row := 0; row < gridRows; row++ {
			cells = append(cells, cell{col, row})
		}
	}
	rng.Shuffle(r, cells)

	count := r.IntBetween(minRooms, maxRooms)
	for i := 0; i < count; i++ {
		c := cells[i]
		w := r.FloatBetween(roomMinSize, roomMaxSize)
		h := r.FloatBetween(roomMinSize, roomMaxSize)
		if i == 0 {
			if w < startMinSize {
				w = startMinSize
			}
			if h < startMinSize {
				h = startMinSize
			}
		}
		x := float64(c.col)*gridCell + r.FloatBetween(0, gridCell-w)
		y := float64(c.row)*gridCell + r.FloatBetween(0, gridCell-h)
		d.Rooms = append(d.Rooms, &world.Room{
			ID: i, X: x, Y: y, W: w, H: h,
			Type:    world.RoomNormal,
			Variant: world.VariantStandard,
		})
	}
}

// connectRooms builds a minimum spanning tree over room centers (Prim),
// then adds up to N/3 extra edges between near rooms for loops.
func connectRooms(d *world.Dungeon, r *rng.Stream) {
	n := len(d.Rooms)
	inTree := make([]bool, n)
	inTree[0] = true
	for edges := 0; edges < n-1; edges++ {
		bestFrom, bestTo := -1, -1
		bestDist := math.MaxFloat64
		for i := 0; i < n; i++ {
			if !inTree[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if inTree[j] {
					continue
				}
				dist := world.Dist(d.Rooms[i].Center(), d.Rooms[j].Center())
				if dist < bestDist {
					bestDist, bestFrom, bestTo = dist, i, j
				}
			}
		}
		connect(d.Rooms[bestFrom], d.Rooms[bestTo])
		inTree[bestTo] = true
	}

	want := n / 3
	added := 0
	for attempt := 0; attempt < want*4 && added < want; attempt++ {
		a := d.Rooms[r.IntBetween(0, n-1)]
		b := d.Rooms[r.IntBetween(0, n-1)]
		if a.ID == b.ID || a.ConnectedWith(b.ID) {
			continue
		}
		if world.Dist(a.Center(), b.Center()) > gridCell*1.6 {
			continue
		}
		connect(a, b)
		added++
	}
}

func connect(a, b *world.Room) {
	a.ConnectedTo = append(a.ConnectedTo, b.ID)
	b.ConnectedTo = append(b.ConnectedTo, a.ID)
}

func disconnect(d *world.Dungeon, id int) {
	for _, room := range d.Rooms {
		out := room.ConnectedTo[:0]
		for _, other := range room.ConnectedTo {
			if other != id {
				out = append(out, other)
			}
		}
		room.ConnectedTo = out
	}
}

// assignTypes marks the start room, promotes the furthest room to boss
// (doubled in size, removing any rooms the growth swallows), and rolls
// rare rooms.
func assignTypes(d *world.Dungeon, r *rng.Stream, ct *catalog.Catalog) {
	start := d.Rooms[0]
	start.Type = world.RoomStart

	var boss *world.Room
	bestDist := -1.0
	for _, room := range d.Rooms[1:] {
		dist := world.Dist(start.Center(), room.Center())
		if dist > bestDist {
			bestDist, boss = dist, room
		}
	}
	boss.Type = world.RoomBoss
	growBossRoom(d, boss)

	for _, room := range d.Rooms {
		if room.Type != world.RoomNormal {
			continue
		}
		if r.Chance(ct.Progression.RareSpawnChance) {
			room.Type = world.RoomRare
		}
	}
}

// growBossRoom doubles the boss room around its center. Rooms the doubled
// rectangle overlaps are removed outright with their connections; if that
// would disconnect the start room or delete it, the boss reverts to its
// original size.
func growBossRoom(d *world.Dungeon, boss *world.Room) {
	orig := *boss
	cx, cy := boss.X+boss.W/2, boss.Y+boss.H/2
	boss.W *= 2
	boss.H *= 2
	boss.X = cx - boss.W/2
	boss.Y = cy - boss.H/2

	var removed []int
	for _, room := range d.Rooms {
		if room.ID == boss.ID {
			continue
		}
		if overlaps(boss, room) {
			removed = append(removed, room.ID)
		}
	}
	for _, id := range removed {
		if id == 0 {
			// never delete the start room
			*boss = orig
			return
		}
	}

	if len(removed) > 0 {
		keep := d.Rooms[:0]
		for _, room := range d.Rooms {
			drop := false
			for _, id := range removed {
				if room.ID == id {
					drop = true
					break
				}
			}
			if !drop {
				keep = append(keep, room)
			}
		}
		d.Rooms = keep
		for _, id := range removed {
			disconnect(d, id)
		}
		if !reachable(d, 0, boss.ID) {
			restoreReachability(d, boss)
		}
		if !reachable(d, 0, boss.ID) {
			*boss = orig
		}
	}
}

func overlaps(a, b *world.Room) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// reachable runs BFS over room adjacency.
func reachable(d *world.Dungeon, from, to int) bool {
	seen := map[int]bool{from: true}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return true
		}
		room := d.Room(cur)
		if room == nil {
			continue
		}
		for _, next := range room.ConnectedTo {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// restoreReachability stitches disconnected components back together by
// repeatedly connecting the unreached room nearest to the reached set.
func restoreReachability(d *world.Dungeon, boss *world.Room) {
	for !reachable(d, 0, boss.ID) {
		seen := map[int]bool{0: true}
		queue := []int{0}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			room := d.Room(cur)
			if room == nil {
				continue
			}
			for _, next := range room.ConnectedTo {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}

		var bestA, bestB *world.Room
		bestDist := math.MaxFloat64
		for _, a := range d.Rooms {
			if !seen[a.ID] {
				continue
			}
			for _, b := range d.Rooms {
				if seen[b.ID] {
					continue
				}
				dist := world.Dist(a.Center(), b.Center())
				if dist < bestDist {
					bestDist, bestA, bestB = dist, a, b
				}
			}
		}
		if bestA == nil {
			return // nothing left to stitch
		}
		connect(bestA, bestB)
	}
}

// ensureBossReachable is the final safety net: if BFS start->boss fails,
// force-connect stepwise through the room nearest to the boss.
func ensureBossReachable(d *world.Dungeon, log *zap.Logger) {
	boss := d.BossRoom()
	if boss == nil || reachable(d, d.Rooms[0].ID, boss.ID) {
		return
	}
	log.Warn("boss unreachable after generation, force-connecting",
		zap.Int("floor", d.Floor))
	restoreReachability(d, boss)
}

// placeVendors spawns the trainer, shop and crypto vendors in a row across
// the start room.
func placeVendors(d *world.Dungeon) {
	start := d.StartRoom()
	c := start.Center()
	spacing := start.W / 4
	start.Vendor = &world.Vendor{
		ID: "vendor_trainer", Type: world.VendorTrainer, Name: "Maes the Drillmaster",
		Pos: world.Vec2{X: c.X - spacing, Y: start.Y + 80},
	}
	start.ShopVendor = &world.Vendor{
		ID: "vendor_shop", Type: world.VendorShop, Name: "Orla the Peddler",
		Pos: world.Vec2{X: c.X, Y: start.Y + 80},
	}
	start.CryptoVendor = &world.Vendor{
		ID: "vendor_crypto", Type: world.VendorCrypto, Name: "The Pale Broker",
		Pos: world.Vec2{X: c.X + spacing, Y: start.Y + 80},
	}
}
