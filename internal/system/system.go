// Package system is the simulation engine: the per-run tick pipeline, the
// combat resolver, enemy and pet AI, ground effects, loot and respawn. One
// Context per run; every function here runs on that run's task goroutine.
package system

import (
	"sort"

	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/rng"
	"github.com/gloomspire/server/internal/scripting"
	"github.com/gloomspire/server/internal/world"
)

// Phase fixes the execution order of systems inside one tick.
type Phase int

const (
	PhaseTimers   Phase = iota // cooldowns, regen, buff durations, sweeps
	PhaseMovement              // player intent, collision, room transition, pickup
	PhaseHazards               // traps, theme hazards, room modifiers, ambush
	PhasePatrol                // idle-room patrols + reassignment into current room
	PhaseAI                    // enemy AI, boss tracks, elite telegraphs
	PhaseAuto                  // player auto-attacks
	PhaseDots                  // DoT ticking on enemies
	PhasePets                  // pet taunt + attack
	PhaseClear                 // room clear, boss defeat, loot grants
	PhaseEffects               // ground effect advance + damage
	PhaseFollow                // pet follow movement
	PhaseRespawn               // dead player respawn
)

// System is one stage of the tick pipeline.
type System interface {
	Phase() Phase
	Update(ctx *Context, dt float64)
}

// Context bundles a run with the shared read-only services the systems
// need. Owned by the run task; never shared across runs.
type Context struct {
	Run     *world.Run
	Catalog *catalog.Catalog
	Scripts *scripting.Engine
	Log     *zap.Logger

	// Combat is the non-reproducible stream for crit rolls, aggro
	// staggers and other per-tick chances. Loot rolls use rng.ForLoot
	// streams instead so they stay reproducible.
	Combat *rng.Stream

	RespawnDelay  float64 // seconds
	GroundItemTTL float64 // seconds, 0 disables the sweep
	StartingLives int
}

// NewContext builds the per-run context.
func NewContext(run *world.Run, ct *catalog.Catalog, scripts *scripting.Engine, log *zap.Logger) *Context {
	return &Context{
		Run:           run,
		Catalog:       ct,
		Scripts:       scripts,
		Log:           log,
		Combat:        rng.New(run.Seed + "_combat_" + run.ID),
		RespawnDelay:  3.0,
		GroundItemTTL: 120.0,
		StartingLives: 3,
	}
}

// EmitCombat queues a combat event for broadcast.
func (ctx *Context) EmitCombat(ev proto.CombatEvent) {
	ctx.Run.Events.Emit(proto.SCombatEvent, ev)
}

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	sorted  bool
}

// NewRunner returns a runner loaded with the full simulation pipeline.
func NewRunner() *Runner {
	r := &Runner{}
	r.Register(&TimerSystem{})
	r.Register(&MovementSystem{})
	r.Register(&HazardSystem{})
	r.Register(&PatrolSystem{})
	r.Register(&EnemyAISystem{})
	r.Register(&AutoAttackSystem{})
	r.Register(&DotSystem{})
	r.Register(&PetSystem{})
	r.Register(&ClearSystem{})
	r.Register(&EffectSystem{})
	r.Register(&FollowSystem{})
	r.Register(&RespawnSystem{})
	return r
}

// Register adds a system; ordering is re-derived on the next tick.
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick advances one run by dt seconds.
func (r *Runner) Tick(ctx *Context, dt float64) {
	r.ensureSorted()
	ctx.Run.Clock += dt
	for _, s := range r.systems {
		s.Update(ctx, dt)
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
