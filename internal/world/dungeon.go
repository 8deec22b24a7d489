package world

// Room types.
const (
	RoomStart  = "start"
	RoomNormal = "normal"
	RoomRare   = "rare"
	RoomBoss   = "boss"
)

// Room variants (enemy formation archetypes).
const (
	VariantStandard = "standard"
	VariantArena    = "arena"
	VariantGuardian = "guardian"
	VariantSwarm    = "swarm"
	VariantAmbush   = "ambush"
	VariantGauntlet = "gauntlet"
)

// Trap kinds.
const (
	TrapSpikes       = "spikes"
	TrapFlamethrower = "flamethrower"
)

// Chest loot tiers.
const (
	ChestCommon = "common"
	ChestRare   = "rare"
	ChestEpic   = "epic"
)

// Vendor kinds. All three spawn in the start room of every floor.
const (
	VendorTrainer = "trainer"
	VendorShop    = "shop"
	VendorCrypto  = "crypto"
)

// Trap alternates between an active (damaging) and inactive window.
type Trap struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Pos              Vec2    `json:"position"`
	Damage           int     `json:"damage"`
	Radius           float64 `json:"radius"`
	Direction        float64 `json:"direction,omitempty"` // flamethrower aim, radians
	ActiveDuration   float64 `json:"activeDuration"`
	InactiveDuration float64 `json:"inactiveDuration"`
	Active           bool    `json:"active"`
	StateTime        float64 `json:"-"` // seconds in the current state
}

// Chest holds rolled loot. Mimics are hidden from the client view until
// opened.
type Chest struct {
	ID       string `json:"id"`
	Pos      Vec2   `json:"position"`
	LootTier string `json:"lootTier"`
	IsOpen   bool   `json:"isOpen"`
	IsLocked bool   `json:"isLocked"`
	IsMimic  bool   `json:"-"`
}

// Vendor is a service NPC in the start room.
type Vendor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
	Pos  Vec2   `json:"position"`
}

// Room is one rectangle of a floor and owns everything inside it.
type Room struct {
	ID          int     `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	W           float64 `json:"w"`
	H           float64 `json:"h"`
	Type        string  `json:"type"`
	Variant     string  `json:"variant"`
	Modifier    string  `json:"modifier,omitempty"`
	ConnectedTo []int   `json:"connectedTo"`
	Cleared     bool    `json:"cleared"`

	Enemies      []*Enemy      `json:"enemies"`
	Traps        []*Trap       `json:"traps"`
	Chests       []*Chest      `json:"chests"`
	GroundItems  []*GroundItem `json:"groundItems"`
	Vendor       *Vendor       `json:"vendor,omitempty"`
	ShopVendor   *Vendor       `json:"shopVendor,omitempty"`
	CryptoVendor *Vendor       `json:"cryptoVendor,omitempty"`
}

// Center returns the room's midpoint.
func (r *Room) Center() Vec2 {
	return Vec2{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside the room rectangle.
func (r *Room) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// ContainsInset reports whether p lies at least inset units inside every
// wall. Used to exclude corridor openings.
func (r *Room) ContainsInset(p Vec2, inset float64) bool {
	return p.X >= r.X+inset && p.X <= r.X+r.W-inset &&
		p.Y >= r.Y+inset && p.Y <= r.Y+r.H-inset
}

// ConnectedWith reports whether other is adjacent via a corridor.
func (r *Room) ConnectedWith(other int) bool {
	for _, id := range r.ConnectedTo {
		if id == other {
			return true
		}
	}
	return false
}

// AliveEnemyCount returns the number of living enemies in the room.
func (r *Room) AliveEnemyCount() int {
	n := 0
	for _, e := range r.Enemies {
		if e.IsAlive {
			n++
		}
	}
	return n
}

// ThemeMods is the per-dungeon copy of the theme's environmental knobs.
type ThemeMods struct {
	MovementModifier float64 `json:"movementModifier"`
	Momentum         bool    `json:"momentum"`
	HazardDamage     int     `json:"hazardDamage"`
	HazardChance     float64 `json:"hazardChance"`
	TrapMultiplier   float64 `json:"trapMultiplier"`
}

// Dungeon is one floor. It is replaced wholesale on floor advance.
type Dungeon struct {
	Floor         int       `json:"floor"`
	Theme         string    `json:"theme"`
	ThemeMods     ThemeMods `json:"themeModifiers"`
	Rooms         []*Room   `json:"rooms"`
	CurrentRoomID int       `json:"currentRoomId"`
	BossDefeated  bool      `json:"bossDefeated"`
}

// Room returns a room by id, or nil.
func (d *Dungeon) Room(id int) *Room {
	for _, r := range d.Rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// CurrentRoom returns the room the party occupies. Never nil on a valid
// dungeon.
func (d *Dungeon) CurrentRoom() *Room {
	return d.Room(d.CurrentRoomID)
}

// StartRoom returns the entry room.
func (d *Dungeon) StartRoom() *Room {
	for _, r := range d.Rooms {
		if r.Type == RoomStart {
			return r
		}
	}
	return nil
}

// BossRoom returns the boss room.
func (d *Dungeon) BossRoom() *Room {
	for _, r := range d.Rooms {
		if r.Type == RoomBoss {
			return r
		}
	}
	return nil
}

// RoomAt returns the room containing p, or nil.
func (d *Dungeon) RoomAt(p Vec2) *Room {
	for _, r := range d.Rooms {
		if r.Contains(p) {
			return r
		}
	}
	return nil
}

// CorridorHalfWidth is the walkable half-width of the straight corridor
// between two connected room centers.
const CorridorHalfWidth = 40

// Walkable reports whether p lies inside a room or a corridor.
func (d *Dungeon) Walkable(p Vec2) bool {
	for _, r := range d.Rooms {
		if r.Contains(p) {
			return true
		}
	}
	for _, r := range d.Rooms {
		for _, otherID := range r.ConnectedTo {
			if otherID < r.ID {
				continue // each edge once
			}
			other := d.Room(otherID)
			if other == nil {
				continue
			}
			if DistToSegment(p, r.Center(), other.Center()) <= CorridorHalfWidth {
				return true
			}
		}
	}
	return false
}

// LineWalkable samples the segment from a to b at the given step and
// reports whether every sample is walkable. Used as the line-of-sight test.
func (d *Dungeon) LineWalkable(a, b Vec2, step float64) bool {
	total := Dist(a, b)
	if total <= step {
		return true
	}
	dir := b.Sub(a).Normalized()
	for travelled := step; travelled < total; travelled += step {
		if !d.Walkable(a.Add(dir.Scale(travelled))) {
			return false
		}
	}
	return true
}
