package world

// Ground effect kinds. Each has a type-specific advance rule in the tick
// scheduler and a type-specific hit test.
const (
	EffectExpandingCircle = "expanding_circle"
	EffectMovingWave      = "moving_wave"
	EffectVoidZone        = "void_zone"
	EffectRotatingBeam    = "rotating_beam"
	EffectFirePool        = "fire_pool"
	EffectGravityWell     = "gravity_well"
)

// GroundEffect is a transient damaging volume spawned by a boss or elite.
type GroundEffect struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Pos          Vec2    `json:"position"`
	Direction    Vec2    `json:"direction"` // moving waves
	Speed        float64 `json:"speed,omitempty"`
	Radius       float64 `json:"radius"`
	MaxRadius    float64 `json:"maxRadius,omitempty"`
	Damage       int     `json:"damage"`
	TickInterval float64 `json:"tickInterval"`
	Duration     float64 `json:"duration"` // seconds remaining
	Rotation     float64 `json:"rotation,omitempty"` // rotating beams, radians
	SourceID     string  `json:"sourceId"`
	RoomID       int     `json:"roomId"`
}

// Expired reports whether the effect should be removed this tick.
func (g *GroundEffect) Expired() bool {
	return g.Duration <= 0
}
