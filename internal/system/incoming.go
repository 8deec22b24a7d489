package system

import (
	"math"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// ProcessEnemyAttack runs the incoming damage pipeline for one enemy hit
// on a player. Order matters: full-reject buffs first, then mitigation,
// then Shield Wall's halving, then the reflect and reactive riders.
func ProcessEnemyAttack(ctx *Context, attacker *world.Enemy, target *world.Player, base int) {
	if !target.IsAlive {
		return
	}

	// Full rejects: stealth, Ice Block, and Blessing of Protection
	// against physical (melee/ranged) attackers.
	if target.Stealthed() {
		return
	}
	if target.BuffBySpecial(catalog.SpecialIceBlock) != nil {
		return
	}
	physical := attacker.Type != catalog.EnemyCaster
	if physical && target.BuffBySpecial(catalog.SpecialProtection) != nil {
		return
	}

	// Mitigation: armor against physical, resist against casters.
	mitigator := target.Stats.Armor
	if !physical {
		mitigator = target.Stats.Resist
	}
	damage := int(math.Round(float64(base) * 100 / float64(100+mitigator)))

	// Shield Wall halves whatever got through and reports the blocked
	// delta on the event.
	blocked := 0
	if target.BuffBySpecial(catalog.SpecialShieldWall) != nil {
		halved := damage / 2
		blocked = damage - halved
		damage = halved
	}

	target.Stats.Health -= damage
	killed := target.Stats.Health <= 0
	if killed {
		target.Stats.Health = 0
	}
	ctx.EmitCombat(proto.CombatEvent{
		SourceID: attacker.ID, TargetID: target.ID,
		Damage: damage, Blocked: blocked, Killed: killed,
	})

	if killed {
		HandlePlayerDeath(ctx, target)
		return
	}

	// Retaliation reflects the post-mitigation damage.
	if target.BuffBySpecial(catalog.SpecialRetaliation) != nil && attacker.IsAlive {
		ApplyDamageToEnemy(ctx, target, attacker, damage, proto.CombatEvent{
			SourceID: target.ID, TargetID: attacker.ID, Damage: damage,
		})
	}

	// Retribution Aura reflects a rank-scaled flat amount.
	if aura := target.BuffBySpecial(catalog.SpecialRetribution); aura != nil && aura.ReflectFlat > 0 && attacker.IsAlive {
		ApplyDamageToEnemy(ctx, target, attacker, aura.ReflectFlat, proto.CombatEvent{
			SourceID: target.ID, TargetID: attacker.ID, Damage: aura.ReflectFlat,
		})
	}

	// Ancestral Spirit: heal 30 and consume one stack.
	if anc := target.BuffBySpecial(catalog.SpecialAncestral); anc != nil && anc.Stacks > 0 {
		healed := target.Stats.Heal(30)
		anc.Stacks--
		if anc.Stacks == 0 {
			target.RemoveBuff(anc)
		}
		if healed > 0 {
			ctx.EmitCombat(proto.CombatEvent{SourceID: target.ID, TargetID: target.ID, Heal: healed})
		}
	}
}

// ProcessEnemyAttackOnPet resolves an enemy hit on a taunting pet.
func ProcessEnemyAttackOnPet(ctx *Context, attacker *world.Enemy, pet *world.Pet, base int) {
	if !pet.IsAlive {
		return
	}
	damage := int(math.Round(float64(base) * 100 / float64(100+pet.Stats.Armor)))
	pet.Stats.Health -= damage
	killed := pet.Stats.Health <= 0
	if killed {
		pet.Stats.Health = 0
		pet.IsAlive = false
		ctx.Run.ClearEnemyTargetsOn(pet.ID)
	}
	ctx.EmitCombat(proto.CombatEvent{
		SourceID: attacker.ID, TargetID: pet.ID, Damage: damage, Killed: killed,
	})
}

// HandlePlayerDeath marks the player dead, clears targeting both ways and
// stamps the death time for the respawn system. A Soulstone buff is left
// in place; the respawn system consumes it.
func HandlePlayerDeath(ctx *Context, p *world.Player) {
	p.IsAlive = false
	p.TargetID = ""
	ctx.Run.ClearEnemyTargetsOn(p.ID)
	ctx.Run.Tracking.DeathTimes[p.ID] = ctx.Run.Clock
	delete(ctx.Run.Tracking.MoveIntent, p.ID)
	delete(ctx.Run.Tracking.PendingCasts, p.ID)
	if p.Lives > 0 {
		p.Lives--
	}
}

// SummonPet replaces the player's pet with a fresh one of the ability's
// summon type. Totems hold position at the summon spot.
func SummonPet(ctx *Context, owner *world.Player, ability *catalog.AbilityInfo) {
	// Dismiss the previous pet, if any.
	kept := ctx.Run.Pets[:0]
	for _, pet := range ctx.Run.Pets {
		if pet.OwnerID == owner.ID {
			ctx.Run.ClearEnemyTargetsOn(pet.ID)
			continue
		}
		kept = append(kept, pet)
	}
	ctx.Run.Pets = kept

	health := 40 + 10*owner.Level
	attack := 5 + owner.Level
	pet := &world.Pet{
		ID:      ctx.Run.NextEntityID("pet"),
		OwnerID: owner.ID,
		Type:    ability.SummonType,
		Pos:     world.Vec2{X: owner.Pos.X + 40, Y: owner.Pos.Y},
		Stats: world.Stats{
			Health: health, MaxHealth: health,
			AttackPower: attack,
			Armor:       10,
		},
		IsAlive: true,
	}
	if pet.Type == world.PetVoidwalker {
		pet.Stats.MaxHealth *= 2
		pet.Stats.Health = pet.Stats.MaxHealth
	}
	ctx.Run.Pets = append(ctx.Run.Pets, pet)
}
