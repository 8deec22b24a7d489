package handler

import (
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/save"
)

// handleAdvanceFloor descends to the next floor once the current boss is
// down. The outgoing dungeon is discarded wholesale.
func (d *Deps) handleAdvanceFloor(t *run.Task) {
	w := t.Run
	if w.Dungeon == nil || !w.Dungeon.BossDefeated {
		w.Events.Emit(proto.SError, proto.Error{Message: "the boss still stands"})
		return
	}
	if w.Floor >= save.MaxFloor {
		w.Events.Emit(proto.SError, proto.Error{Message: "already on the final floor"})
		return
	}

	prev := w.Floor
	d.startFloor(w, prev+1)

	// Stale input from the old floor must not carry into the new one.
	for id := range w.Tracking.MoveIntent {
		delete(w.Tracking.MoveIntent, id)
	}
	for id := range w.Tracking.PendingCasts {
		delete(w.Tracking.PendingCasts, id)
	}
	for id := range w.Tracking.Momentum {
		delete(w.Tracking.Momentum, id)
	}
	for _, p := range w.Players {
		p.TargetID = ""
	}

	w.Events.Emit(proto.SFloorComplete, proto.FloorComplete{
		Floor:     prev,
		NextFloor: w.Floor,
		Theme:     w.Dungeon.Theme,
	})
	d.Log.Info("floor advanced",
		zap.String("run", w.ID), zap.Int("floor", w.Floor))
}
