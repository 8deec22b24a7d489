package run

import (
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/system"
	"github.com/gloomspire/server/internal/world"
)

// intentQueueSize bounds the per-run inbox. A full queue drops intents
// rather than stalling the tick.
const intentQueueSize = 256

// Task is the owning goroutine of one run. All world mutation happens
// here; the registry and transport only pass messages in.
type Task struct {
	Run *world.Run
	Ctx *system.Context

	registry    *Registry
	runner      *system.Runner
	broadcaster *Broadcaster
	client      Client
	intents     chan Intent
	stop        chan struct{}
	log         *zap.Logger
}

func newTask(w *world.Run, r *Registry, c Client, log *zap.Logger) *Task {
	ctx := system.NewContext(w, r.catalog, r.scripts, log)
	if t := r.tuning; t != nil {
		ctx.RespawnDelay = t.RespawnDelay.Seconds()
		ctx.GroundItemTTL = t.GroundItemTTL.Seconds()
		ctx.StartingLives = t.StartingLives
	}
	return &Task{
		Run:         w,
		Ctx:         ctx,
		registry:    r,
		runner:      system.NewRunner(),
		broadcaster: NewBroadcaster(),
		client:      c,
		intents:     make(chan Intent, intentQueueSize),
		stop:        make(chan struct{}),
		log:         log,
	}
}

// Submit queues an intent for the next tick. Non-blocking.
func (t *Task) Submit(in Intent) bool {
	select {
	case t.intents <- in:
		return true
	default:
		return false
	}
}

// Stop asks the loop to exit. Safe to call more than once.
func (t *Task) Stop() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}

// Client returns the run's owning connection.
func (t *Task) Client() Client { return t.client }

// loop is the fixed-rate simulation driver: drain intents, tick the
// systems, broadcast. A panic tears down this run only.
func (t *Task) loop() {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("run task panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
		t.registry.Destroy(t.Run.ID)
	}()

	ticker := time.NewTicker(t.registry.tickRate)
	defer ticker.Stop()

	dt := t.registry.tickRate.Seconds()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.drainIntents()
			t.runner.Tick(t.Ctx, dt)
			t.broadcaster.Flush(t)
		}
	}
}

// drainIntents processes everything queued before this tick started.
// Intents arriving mid-drain wait for the next tick.
func (t *Task) drainIntents() {
	for n := len(t.intents); n > 0; n-- {
		in := <-t.intents
		t.registry.dispatcher.Dispatch(t, in.Client, in.Env)
	}
}
