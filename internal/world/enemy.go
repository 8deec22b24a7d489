package world

// Enemy is one hostile entity. Room membership is owned by Room.Enemies;
// CurrentRoomID mirrors it for cross-room logic (patrols, leashing).
type Enemy struct {
	ID         string  `json:"id"`
	TemplateID string  `json:"templateId"`
	Name       string  `json:"name"`
	Type       string  `json:"type"` // melee|ranged|caster
	Pos        Vec2    `json:"position"`
	Stats      Stats   `json:"stats"`
	Debuffs    []*Buff `json:"debuffs"`
	TargetID   string  `json:"targetId,omitempty"`
	IsAlive    bool    `json:"isAlive"`

	IsBoss   bool   `json:"isBoss,omitempty"`
	BossID   string `json:"bossId,omitempty"`
	IsRare   bool   `json:"isRare,omitempty"`
	IsElite  bool   `json:"isElite,omitempty"`
	IsHidden bool   `json:"isHidden,omitempty"` // ambush rooms, revealed on trigger

	SpawnPos       Vec2 `json:"spawnPosition"`
	OriginalRoomID int  `json:"originalRoomId"`
	CurrentRoomID  int  `json:"currentRoomId"`

	// Patrol state. Waypoints alternate room centers and corridor
	// midpoints; direction flips at the endpoints.
	IsPatrolling    bool   `json:"isPatrolling,omitempty"`
	PatrolWaypoints []Vec2 `json:"-"`
	CurrentWaypoint int    `json:"-"`
	PatrolDirection int    `json:"-"`
	WasPatrolling   bool   `json:"-"` // shortens the aggro delay after engagement

	// Combat tuning copied from the template at spawn.
	AttackRange float64 `json:"-"`
	AttackSpeed float64 `json:"-"` // seconds between attacks
	XP          int     `json:"-"`
	GoldMin     int     `json:"-"`
	GoldMax     int     `json:"-"`
}

// Stunned reports whether any debuff currently stuns the enemy.
func (e *Enemy) Stunned() bool {
	for _, d := range e.Debuffs {
		if d.Stunning() {
			return true
		}
	}
	return false
}

// DebuffByIcon returns the unexpired debuff with the given icon, or nil.
func (e *Enemy) DebuffByIcon(icon string) *Buff {
	for _, d := range e.Debuffs {
		if d.Icon == icon && d.Duration > 0 {
			return d
		}
	}
	return nil
}

// AddDebuff inserts a debuff, refreshing by icon.
func (e *Enemy) AddDebuff(b *Buff) {
	for i, d := range e.Debuffs {
		if d.Icon == b.Icon {
			e.Debuffs[i] = b
			return
		}
	}
	e.Debuffs = append(e.Debuffs, b)
}

// ClearPatrol drops patrol state when the enemy enters combat.
func (e *Enemy) ClearPatrol() {
	if !e.IsPatrolling {
		return
	}
	e.IsPatrolling = false
	e.PatrolWaypoints = nil
	e.CurrentWaypoint = 0
	e.PatrolDirection = 0
	e.WasPatrolling = true
}
