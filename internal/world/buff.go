package world

// Buff is a timed effect on a player or enemy. StatMods holds the exact
// deltas applied to the owner's stats; removal subtracts the same deltas.
// Damaging debuffs carry DamagePerTick > 0, control debuffs carry IsStun.
type Buff struct {
	ID          string         `json:"id"`
	Icon        string         `json:"icon"` // stable logical key, e.g. "warrior_bloodlust"
	Name        string         `json:"name"`
	Duration    float64        `json:"duration"` // seconds remaining
	MaxDuration float64        `json:"maxDuration"`
	IsDebuff    bool           `json:"isDebuff"`
	Stacks      int            `json:"stacks,omitempty"`
	Rank        int            `json:"rank,omitempty"`
	StatMods    map[string]int `json:"statModifiers,omitempty"`

	// DoT fields.
	DamagePerTick int     `json:"damagePerTick,omitempty"`
	TickInterval  float64 `json:"tickInterval,omitempty"`
	SinceLastTick float64 `json:"-"`

	IsStun   bool   `json:"isStun,omitempty"`
	SourceID string `json:"sourceId,omitempty"`

	// Behavior key copied from the ability definition; drives the combat
	// pipelines. Not part of the client view.
	Special string `json:"-"`

	// Bloodlust heal percent and retribution reflect amount, rank-scaled
	// at application time.
	HealPercent int `json:"-"`
	ReflectFlat int `json:"-"`
}

// Stunning reports whether this buff prevents its owner from acting.
func (b *Buff) Stunning() bool {
	return b.IsStun && b.Duration > 0
}
