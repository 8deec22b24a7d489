// Package run owns run lifecycle: the registry of live runs, the per-run
// task goroutine that ticks the simulation, and the state broadcaster.
package run

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/scripting"
	"github.com/gloomspire/server/internal/world"
)

// Client is one connected player as seen by the run layer. Enqueue must
// not block; it reports false when the client cannot keep up.
type Client interface {
	ClientID() string
	Enqueue(msg []byte) bool
	Kick()
}

// Intent is one decoded client message bound for a run task.
type Intent struct {
	Client Client
	Env    *proto.Envelope
}

// Dispatcher resolves in-run intents. Implemented by the handler package
// and injected at boot.
type Dispatcher interface {
	Dispatch(t *Task, c Client, env *proto.Envelope)
}

// Builder creates the initial world state for a new run. Implemented by
// the handler package and injected at boot.
type Builder interface {
	BuildRun(env *proto.Envelope, clientID string) (*world.Run, error)
}

// Registry tracks live runs and routes client messages to their tasks.
type Registry struct {
	mu       sync.Mutex
	tasks    map[string]*Task  // run id -> task
	byClient map[string]string // client id -> run id

	catalog    *catalog.Catalog
	scripts    *scripting.Engine
	dispatcher Dispatcher
	builder    Builder
	tickRate   time.Duration
	tuning     *Tuning
	log        *zap.Logger
}

// Tuning carries the configurable simulation knobs into each new run.
type Tuning struct {
	RespawnDelay  time.Duration
	GroundItemTTL time.Duration
	StartingLives int
}

// NewRegistry builds an empty registry.
func NewRegistry(ct *catalog.Catalog, scripts *scripting.Engine, d Dispatcher, b Builder, tickRate time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		tasks:      make(map[string]*Task),
		byClient:   make(map[string]string),
		catalog:    ct,
		scripts:    scripts,
		dispatcher: d,
		builder:    b,
		tickRate:   tickRate,
		log:        log,
	}
}

// SetTuning overrides the default simulation knobs for runs created from
// now on. Call once at boot, before any client connects.
func (r *Registry) SetTuning(t Tuning) {
	r.tuning = &t
}

var errNoRun = errors.New("no active run for client")

// HandleMessage is the single entry point from the transport. Run
// creation is resolved here; everything else is queued onto the bound
// run's task.
func (r *Registry) HandleMessage(c Client, raw []byte) {
	env, err := proto.Decode(raw)
	if err != nil {
		r.sendError(c, "malformed message")
		return
	}

	switch env.Type {
	case proto.CCreateRun, proto.CCreateRunFromSave:
		r.createRun(c, env)
		return
	}

	r.mu.Lock()
	runID, ok := r.byClient[c.ClientID()]
	var t *Task
	if ok {
		t = r.tasks[runID]
	}
	r.mu.Unlock()

	if t == nil {
		r.sendError(c, errNoRun.Error())
		return
	}
	if !t.Submit(Intent{Client: c, Env: env}) {
		r.log.Warn("intent queue full, dropping message",
			zap.String("run", runID), zap.String("type", env.Type))
	}
}

// createRun builds a fresh run, binds the client and starts the task.
// A client with an existing run has it torn down first.
func (r *Registry) createRun(c Client, env *proto.Envelope) {
	r.DetachClient(c)

	w, err := r.builder.BuildRun(env, c.ClientID())
	if err != nil {
		r.sendError(c, err.Error())
		return
	}

	t := newTask(w, r, c, r.log.With(zap.String("run", w.ID)))

	r.mu.Lock()
	r.tasks[w.ID] = t
	r.byClient[c.ClientID()] = w.ID
	r.mu.Unlock()

	r.log.Info("run created",
		zap.String("run", w.ID),
		zap.String("seed", w.Seed),
		zap.String("client", c.ClientID()))
	go t.loop()
}

// DetachClient unbinds a client and destroys its run. Single-player runs
// do not outlive their owner.
func (r *Registry) DetachClient(c Client) {
	r.mu.Lock()
	runID, ok := r.byClient[c.ClientID()]
	if ok {
		delete(r.byClient, c.ClientID())
	}
	t := r.tasks[runID]
	r.mu.Unlock()

	if ok && t != nil {
		t.Stop()
	}
}

// Destroy removes a run from the registry. Called by the task itself on
// shutdown or panic.
func (r *Registry) Destroy(runID string) {
	r.mu.Lock()
	delete(r.tasks, runID)
	for clientID, id := range r.byClient {
		if id == runID {
			delete(r.byClient, clientID)
		}
	}
	r.mu.Unlock()
}

// Task returns the live task for a run id, or nil.
func (r *Registry) Task(runID string) *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[runID]
}

// Count returns the number of live runs.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func (r *Registry) sendError(c Client, msg string) {
	if out, err := proto.Encode(proto.SError, proto.Error{Message: msg}); err == nil {
		c.Enqueue(out)
	}
}
