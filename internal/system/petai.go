package system

import (
	"math"

	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// PetSystem runs pet combat: the periodic taunt that redirects nearby
// enemies onto the pet, and the pet's own attacks.
type PetSystem struct{}

func (s *PetSystem) Phase() Phase { return PhasePets }

func (s *PetSystem) Update(ctx *Context, dt float64) {
	kept := ctx.Run.Pets[:0]
	for _, pet := range ctx.Run.Pets {
		if !pet.IsAlive {
			continue // corpse is dropped, owner may resummon
		}
		kept = append(kept, pet)
		s.taunt(ctx, pet)
		s.attack(ctx, pet)
	}
	ctx.Run.Pets = kept
}

// taunt pulls every enemy within taunt range onto the pet.
func (s *PetSystem) taunt(ctx *Context, pet *world.Pet) {
	if !pet.CanTaunt() || pet.TauntCooldown > 0 {
		return
	}
	room := ctx.Run.CurrentRoom()
	if room == nil {
		return
	}
	var taunted []string
	for _, e := range room.Enemies {
		if !e.IsAlive || e.IsHidden || e.IsBoss {
			continue
		}
		if world.Dist(pet.Pos, e.Pos) <= PetTauntRange {
			e.TargetID = pet.ID
			taunted = append(taunted, e.ID)
		}
	}
	if len(taunted) == 0 {
		return
	}
	pet.TauntCooldown = PetTauntInterval
	ctx.Run.Events.Emit(proto.STauntEvent, proto.TauntEvent{PetID: pet.ID, EnemyIDs: taunted})
}

// attack hits the nearest living enemy inside the pet's range.
func (s *PetSystem) attack(ctx *Context, pet *world.Pet) {
	if pet.AttackCooldown > 0 {
		return
	}
	room := ctx.Run.CurrentRoom()
	if room == nil {
		return
	}
	var target *world.Enemy
	best := pet.Range()
	for _, e := range room.Enemies {
		if !e.IsAlive || e.IsHidden {
			continue
		}
		if d := world.Dist(pet.Pos, e.Pos); d <= best {
			best, target = d, e
		}
	}
	if target == nil {
		return
	}
	damage := int(math.Round(float64(pet.Stats.AttackPower) * 100 / float64(100+target.Stats.Armor)))
	owner := ctx.Run.PlayerByID(pet.OwnerID)
	ApplyDamageToEnemy(ctx, owner, target, damage, proto.CombatEvent{
		SourceID: pet.ID, TargetID: target.ID, Damage: damage,
	})
	pet.AttackCooldown = PetAttackCooldown
}

// FollowSystem moves mobile pets after their owners once they fall behind.
// Runs late in the tick so pets trail the owner's final position.
type FollowSystem struct{}

func (s *FollowSystem) Phase() Phase { return PhaseFollow }

// petFollowSpeed is the catch-up speed of a trailing pet.
const petFollowSpeed = 220.0

func (s *FollowSystem) Update(ctx *Context, dt float64) {
	for _, pet := range ctx.Run.Pets {
		if !pet.IsAlive || pet.Stationary() {
			continue
		}
		owner := ctx.Run.PlayerByID(pet.OwnerID)
		if owner == nil || !owner.IsAlive {
			continue
		}
		if world.Dist(pet.Pos, owner.Pos) <= PetFollowDistance {
			continue
		}
		step := petFollowSpeed * dt
		next := pet.Pos.Add(owner.Pos.Sub(pet.Pos).Normalized().Scale(step))
		if ctx.Run.Dungeon.Walkable(next) {
			pet.Pos = next
		}
	}
}
