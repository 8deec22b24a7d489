package handler

import (
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/world"
)

// handleInput stages the per-tick movement vector and, when present, a
// one-shot ability cast. Dead and stunned players are resolved by the
// simulation, not here; only obviously invalid input is dropped.
func (d *Deps) handleInput(t *run.Task, env *proto.Envelope) {
	var in proto.PlayerInput
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	if p == nil || !p.IsAlive {
		return
	}

	move := world.Vec2{X: in.MoveX, Y: in.MoveY}
	if move.Len() > 1 {
		move = move.Normalized()
	}
	t.Run.Tracking.MoveIntent[p.ID] = move

	if in.CastAbility != "" && p.Ability(in.CastAbility) != nil {
		req := &world.CastRequest{AbilityID: in.CastAbility, TargetID: in.TargetID}
		if in.TargetPos != nil {
			req.TargetPos = &world.Vec2{X: in.TargetPos.X, Y: in.TargetPos.Y}
		}
		t.Run.Tracking.PendingCasts[p.ID] = req
	}
}

// handleSetTarget pins the player's target. An empty or unknown id
// clears it.
func (d *Deps) handleSetTarget(t *run.Task, env *proto.Envelope) {
	var in proto.SetTarget
	if err := env.Bind(&in); err != nil {
		return
	}
	p := t.Run.Player()
	if p == nil {
		return
	}
	if in.TargetID != "" {
		if e := t.Run.EnemyByID(in.TargetID); e == nil || !e.IsAlive {
			p.TargetID = ""
			return
		}
	}
	p.TargetID = in.TargetID
}
