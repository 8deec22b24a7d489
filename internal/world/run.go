package world

import "fmt"

// Run is the unit of simulation: one party, one dungeon, one clock. All
// fields are owned by the run's task goroutine; nothing here is shared.
type Run struct {
	ID    string  `json:"id"`
	Seed  string  `json:"seed"`
	Floor int     `json:"floor"`
	Clock float64 `json:"-"` // seconds since run start, advanced by dt

	Players       []*Player       `json:"players"`
	Pets          []*Pet          `json:"pets"`
	Dungeon       *Dungeon        `json:"dungeon"`
	GroundEffects []*GroundEffect `json:"groundEffects"`
	PartySize     int             `json:"partySize"`
	PendingLoot   []*Item         `json:"pendingLoot,omitempty"`

	Tracking *Tracking    `json:"-"`
	Events   *EventBuffer `json:"-"`

	nextEntity int
}

// NewRun creates an empty run shell. The caller attaches players and the
// first dungeon.
func NewRun(id, seed string) *Run {
	return &Run{
		ID:        id,
		Seed:      seed,
		Floor:     1,
		PartySize: 1,
		Tracking:  NewTracking(),
		Events:    &EventBuffer{},
	}
}

// NextEntityID mints a run-unique id with the given prefix.
func (r *Run) NextEntityID(prefix string) string {
	r.nextEntity++
	return fmt.Sprintf("%s_%d", prefix, r.nextEntity)
}

// Player returns the run's owning player. Single-player runs only.
func (r *Run) Player() *Player {
	if len(r.Players) == 0 {
		return nil
	}
	return r.Players[0]
}

// PlayerByID returns a player by id, or nil.
func (r *Run) PlayerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PetByID returns a pet by id, or nil.
func (r *Run) PetByID(id string) *Pet {
	for _, p := range r.Pets {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PetOf returns the owner's living pet, or nil.
func (r *Run) PetOf(ownerID string) *Pet {
	for _, p := range r.Pets {
		if p.OwnerID == ownerID && p.IsAlive {
			return p
		}
	}
	return nil
}

// EnemyByID scans every room for an enemy by id, or nil.
func (r *Run) EnemyByID(id string) *Enemy {
	if r.Dungeon == nil {
		return nil
	}
	for _, room := range r.Dungeon.Rooms {
		for _, e := range room.Enemies {
			if e.ID == id {
				return e
			}
		}
	}
	return nil
}

// CurrentRoom returns the room the party occupies.
func (r *Run) CurrentRoom() *Room {
	if r.Dungeon == nil {
		return nil
	}
	return r.Dungeon.CurrentRoom()
}

// ClearEnemyTargetsOn drops every enemy target pointing at the entity.
// Keeps the dead-player invariant: no enemy targets a corpse.
func (r *Run) ClearEnemyTargetsOn(id string) {
	if r.Dungeon == nil {
		return
	}
	for _, room := range r.Dungeon.Rooms {
		for _, e := range room.Enemies {
			if e.TargetID == id {
				e.TargetID = ""
			}
		}
	}
}

// ReplaceDungeon swaps in a new floor atomically and drops the per-enemy
// scratch of the outgoing one.
func (r *Run) ReplaceDungeon(d *Dungeon) {
	if r.Dungeon != nil {
		for _, room := range r.Dungeon.Rooms {
			for _, e := range room.Enemies {
				r.Tracking.ForgetEnemy(e.ID)
			}
		}
	}
	r.Dungeon = d
	r.Floor = d.Floor
	r.GroundEffects = nil
	r.Tracking.EffectTicks = make(map[string]map[string]float64)
	r.Tracking.TrapHits = make(map[string]map[string]float64)
	r.Tracking.AmbushFired = make(map[int]bool)
	r.Tracking.ClearAggro()
}

// AverageItemPower is the party mean, used to scale the next floor.
func (r *Run) AverageItemPower() int {
	if len(r.Players) == 0 {
		return 0
	}
	total := 0
	for _, p := range r.Players {
		total += p.AverageItemPower()
	}
	return total / len(r.Players)
}
