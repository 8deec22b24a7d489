package world

// ChargeState tracks one melee enemy mid-charge.
type ChargeState struct {
	TargetID  string
	StartedAt float64 // run clock
}

// CastRequest is a one-shot ability cast staged by the input handler and
// consumed by the tick scheduler.
type CastRequest struct {
	AbilityID string
	TargetID  string
	TargetPos *Vec2
}

// Tracking is per-run scratch state: values that must die with the run and
// never leak into another. All keys are entity ids unless noted. Excluded
// from every client view.
type Tracking struct {
	// Combat timing, seconds remaining or run-clock stamps.
	AttackCooldowns map[string]float64 // entity id -> seconds until next attack
	AggroAt         map[string]float64 // enemy id -> run clock of staggered aggro start
	WasPatroller    map[string]bool    // enemy id -> shortened aggro delay applies

	// Boss and elite scheduling.
	BossAbilityCDs map[string]map[string]float64 // enemy id -> ability id -> seconds
	BossAoECDs     map[string]float64            // enemy id -> seconds
	EliteCDs       map[string]float64            // enemy id -> seconds
	BossFightStart map[string]float64            // boss enemy id -> run clock of engagement

	// Enemy movement state.
	Charges     map[string]*ChargeState // enemy id -> active charge
	LeashStart  map[string]float64      // enemy id -> run clock leash timer began

	// Player input and movement.
	MoveIntent   map[string]Vec2         // player id -> unit movement vector
	Momentum     map[string]Vec2         // player id -> frozen-theme velocity
	PendingCasts map[string]*CastRequest // player id -> staged one-shot cast

	// Damage cadence.
	EffectTicks   map[string]map[string]float64 // effect id -> entity id -> run clock of last tick
	TrapHits      map[string]map[string]float64 // trap id -> player id -> run clock of last hit
	ModifierTicks map[string]float64            // player id -> run clock of last burning tick
	HazardCheckAt float64                       // run clock of next ambient theme-hazard roll

	// One-shot room triggers and death bookkeeping.
	AmbushFired map[int]bool       // room id -> hidden enemies revealed
	DeathTimes  map[string]float64 // player id -> run clock of death
}

// NewTracking returns an empty scratch structure.
func NewTracking() *Tracking {
	return &Tracking{
		AttackCooldowns: make(map[string]float64),
		AggroAt:         make(map[string]float64),
		WasPatroller:    make(map[string]bool),
		BossAbilityCDs:  make(map[string]map[string]float64),
		BossAoECDs:      make(map[string]float64),
		EliteCDs:        make(map[string]float64),
		BossFightStart:  make(map[string]float64),
		Charges:         make(map[string]*ChargeState),
		LeashStart:      make(map[string]float64),
		MoveIntent:      make(map[string]Vec2),
		Momentum:        make(map[string]Vec2),
		PendingCasts:    make(map[string]*CastRequest),
		EffectTicks:     make(map[string]map[string]float64),
		TrapHits:        make(map[string]map[string]float64),
		ModifierTicks:   make(map[string]float64),
		AmbushFired:     make(map[int]bool),
		DeathTimes:      make(map[string]float64),
	}
}

// ClearAggro drops all enemy aggro and charge state. Used on room
// transitions and player respawn.
func (t *Tracking) ClearAggro() {
	t.AggroAt = make(map[string]float64)
	t.Charges = make(map[string]*ChargeState)
}

// ForgetEnemy drops every per-enemy entry. Called on floor advance for the
// outgoing dungeon's enemies.
func (t *Tracking) ForgetEnemy(id string) {
	delete(t.AttackCooldowns, id)
	delete(t.AggroAt, id)
	delete(t.WasPatroller, id)
	delete(t.BossAbilityCDs, id)
	delete(t.BossAoECDs, id)
	delete(t.EliteCDs, id)
	delete(t.BossFightStart, id)
	delete(t.Charges, id)
	delete(t.LeashStart, id)
}
