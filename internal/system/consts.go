package system

// Combat and movement tuning. Unit-less distances are dungeon units.
const (
	// Player auto-attacks.
	MeleeAutoRange     = 60.0
	RangedAutoRange    = 300.0
	AutoAttackCooldown = 1.5

	// Enemy aggro.
	EnemyAggroDelay     = 1.0 // seconds after staggered aggro start
	PatrollerAggroDelay = 0.3 // ex-patrollers engage faster
	AggroStaggerMax     = 0.5 // uniform [0, 500ms) offset per enemy

	// Enemy behavior.
	KiteDistance     = 120.0 // ranged/caster back off inside this
	KiteSpeed        = 180.0
	RoomPadding      = 30.0 // target counts as in-room within this margin
	LoSSampleStep    = 20.0
	ChargeMinDist    = 200.0
	ChargeMaxDist    = 400.0
	ChargeChance     = 0.02 // per tick while out of range
	ChargeSpeed      = 520.0
	ChargeBonusMult  = 1.5 // charge impact damage multiplier
	ChargeMaxTime    = 3.0
	LeashDistance    = 600.0
	LeashResetDelay  = 5.0
	IdleReturnSpeed  = 200.0
	WaypointArriveAt = 20.0

	// Patrol reassignment: how far inside the current room a patroller
	// must be before it is moved into the room's enemy list.
	PatrolRoomInset = 60.0

	// Boss scheduling.
	BossAbilityStaggerBase = 4.0 // first ability ready at 4s
	BossAbilityStaggerStep = 3.0 // then 7s, 10s, ...
	BossAoEInitialMin      = 6.0
	BossAoEInitialMax      = 8.0
	EliteAoECooldown       = 6.0

	// Pets.
	PetTauntInterval  = 5.0
	PetAttackCooldown = 1.5
	PetTauntRange     = 350.0
	PetFollowDistance = 90.0

	// Items and interactions.
	LootPickupDistance  = 100.0 // walk-over pickup
	PickupIntentRange   = 200.0 // explicit PICKUP_GROUND_ITEM
	ChestOpenRange      = 80.0
	VendorInteractRange = 150.0

	// Movement physics (Frozen theme momentum).
	MomentumAccel    = 0.15
	MomentumFriction = 0.02
	WallBounce       = -0.5
	CornerBounce     = -0.3

	// Room modifier cadence.
	BurningTickInterval = 2.0
	HazardCheckInterval = 5.0

	// Respawn.
	RespawnGroundEffectPurge = 150.0

	// Blade Flurry cleave reach, room-wide on purpose.
	BladeFlurryCleaveRange = 300.0
)

// Cursed and blessed room deltas, applied on entry and reverted on exit.
var (
	cursedMods  = map[string]int{"armor": -10, "resist": -5}
	blessedMods = map[string]int{"armor": 10, "crit": 5}
)

// Buff icons for the room modifier debuffs.
const (
	cursedIcon  = "room_cursed"
	blessedIcon = "room_blessed"
)
