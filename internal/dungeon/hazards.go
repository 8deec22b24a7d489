package dungeon

import (
	"fmt"
	"math"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/rng"
	"github.com/gloomspire/server/internal/world"
)

// Trap tuning at floor 1. Damage grows with the floor and the theme's trap
// multiplier.
const (
	spikeDamage        = 10
	flamethrowerDamage = 8
	spikeMinFloor      = 2
	flameMinFloor      = 4
	flameBossMinFloor  = 3
)

// placeTraps seeds spikes and flamethrowers into combat rooms.
func placeTraps(d *world.Dungeon, r *rng.Stream, theme *catalog.ThemeInfo, p Params) {
	if p.Floor < spikeMinFloor {
		return
	}
	mult := theme.TrapMultiplier
	if mult <= 0 {
		mult = 1
	}
	trapN := 0
	for _, room := range d.Rooms {
		if room.Type == world.RoomStart {
			continue
		}
		maxTraps := int(math.Round(float64(1+p.Floor/3) * mult))
		count := r.IntBetween(0, maxTraps)
		for i := 0; i < count; i++ {
			trapN++
			pos := world.Vec2{
				X: r.FloatBetween(room.X+90, room.X+room.W-90),
				Y: r.FloatBetween(room.Y+90, room.Y+room.H-90),
			}
			flamesAllowed := p.Floor >= flameMinFloor ||
				(room.Type == world.RoomBoss && p.Floor >= flameBossMinFloor)
			if flamesAllowed && r.Chance(0.4) {
				room.Traps = append(room.Traps, &world.Trap{
					ID:               fmt.Sprintf("trap_%d_%d", p.Floor, trapN),
					Type:             world.TrapFlamethrower,
					Pos:              pos,
					Damage:           int(math.Round(float64(flamethrowerDamage+2*p.Floor) * mult)),
					Radius:           110,
					Direction:        r.FloatBetween(0, 2*math.Pi),
					ActiveDuration:   2.0,
					InactiveDuration: 3.0,
				})
			} else {
				room.Traps = append(room.Traps, &world.Trap{
					ID:               fmt.Sprintf("trap_%d_%d", p.Floor, trapN),
					Type:             world.TrapSpikes,
					Pos:              pos,
					Damage:           int(math.Round(float64(spikeDamage+2*p.Floor) * mult)),
					Radius:           50,
					ActiveDuration:   1.5,
					InactiveDuration: 2.5,
				})
			}
		}
	}
}

// placeChests drops one chest per rare/boss room, rolls extra chests from
// the theme's chest density, and converts Treasure-theme chests to mimics.
func placeChests(d *world.Dungeon, r *rng.Stream, theme *catalog.ThemeInfo, p Params) {
	chestN := 0
	addChest := func(room *world.Room, tier string, extra bool) {
		chestN++
		chest := &world.Chest{
			ID:       fmt.Sprintf("chest_%d_%d", p.Floor, chestN),
			LootTier: tier,
			Pos: world.Vec2{
				X: r.FloatBetween(room.X+80, room.X+room.W-80),
				Y: r.FloatBetween(room.Y+80, room.Y+room.H-80),
			},
		}
		if theme.MimicChance > 0 && room.Type != world.RoomBoss {
			mimicChance := theme.MimicChance
			if extra {
				mimicChance += 0.1
			}
			chest.IsMimic = r.Chance(mimicChance)
		}
		room.Chests = append(room.Chests, chest)
	}

	for _, room := range d.Rooms {
		switch room.Type {
		case world.RoomBoss:
			addChest(room, world.ChestEpic, false)
			room.Chests[len(room.Chests)-1].IsLocked = true // unlocks on boss death
		case world.RoomRare:
			addChest(room, world.ChestRare, false)
		case world.RoomNormal:
			if r.Chance(theme.ChestDensity) {
				addChest(room, world.ChestCommon, true)
			}
		}
	}
}
