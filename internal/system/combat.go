package system

import (
	"math"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// CastAbility resolves one player ability cast. Precondition failures are
// silent no-ops per the input policy: zero cost, zero events.
func CastAbility(ctx *Context, caster *world.Player, req *world.CastRequest) {
	if !caster.IsAlive || caster.Stunned() {
		return
	}
	known := caster.Ability(req.AbilityID)
	if known == nil || known.Cooldown > 0 {
		return
	}
	ability := ctx.Catalog.Abilities.Get(req.AbilityID)
	if ability == nil || caster.Stats.Mana < ability.ManaCost {
		return
	}

	switch ability.Type {
	case catalog.AbilityDamage, catalog.AbilityDebuff:
		target := resolveEnemyTarget(ctx, caster, req, ability.Range)
		if target == nil {
			return
		}
		payCost(ctx, caster, known, ability)
		if ability.Type == catalog.AbilityDamage {
			castDamage(ctx, caster, target, ability, known.Rank)
		} else {
			castDebuff(ctx, caster, target, ability, known.Rank)
		}

	case catalog.AbilityAoE:
		center := resolveAoECenter(ctx, caster, req)
		if center == nil {
			return
		}
		// Cost and cooldown are deducted once before iterating targets.
		payCost(ctx, caster, known, ability)
		castAoE(ctx, caster, *center, ability, known.Rank)

	case catalog.AbilityHeal:
		payCost(ctx, caster, known, ability)
		castHeal(ctx, caster, req, ability, known.Rank)

	case catalog.AbilityBuff:
		payCost(ctx, caster, known, ability)
		castBuff(ctx, caster, ability, known.Rank)

	case catalog.AbilitySummon:
		payCost(ctx, caster, known, ability)
		SummonPet(ctx, caster, ability)

	case catalog.AbilityUtility:
		payCost(ctx, caster, known, ability)
	}
}

func payCost(ctx *Context, caster *world.Player, known *world.PlayerAbility, ability *catalog.AbilityInfo) {
	caster.Stats.Mana -= ability.ManaCost
	known.Cooldown = ability.Cooldown
}

// resolveEnemyTarget picks the cast target: the explicit one if given,
// otherwise the player's current target. Dead or out-of-range targets
// cancel the cast.
func resolveEnemyTarget(ctx *Context, caster *world.Player, req *world.CastRequest, castRange float64) *world.Enemy {
	id := req.TargetID
	if id == "" {
		id = caster.TargetID
	}
	target := ctx.Run.EnemyByID(id)
	if target == nil || !target.IsAlive {
		return nil
	}
	if castRange > 0 && world.Dist(caster.Pos, target.Pos) > castRange+RoomPadding {
		return nil
	}
	return target
}

func resolveAoECenter(ctx *Context, caster *world.Player, req *world.CastRequest) *world.Vec2 {
	if req.TargetPos != nil {
		return req.TargetPos
	}
	if target := ctx.Run.EnemyByID(caster.TargetID); target != nil && target.IsAlive {
		pos := target.Pos
		return &pos
	}
	return nil
}

// attackDamage runs the outgoing damage pipeline: rank-scaled base plus
// half the caster's dominant power, mitigated by armor or resist depending
// on which power dominates, then the crit roll.
func attackDamage(ctx *Context, caster *world.Player, target *world.Enemy, base, rank int) (int, bool) {
	prog := ctx.Catalog.Progression
	raw := float64(prog.ScaledDamage(base, rank)) +
		0.5*math.Max(float64(caster.Stats.SpellPower), float64(caster.Stats.AttackPower))

	mitigator := target.Stats.Armor
	if caster.Stats.SpellPower > caster.Stats.AttackPower {
		mitigator = target.Stats.Resist
	}
	final := int(math.Round(raw * 100 / float64(100+mitigator)))

	crit := ctx.Combat.Next()*100 < float64(caster.Stats.Crit)
	if crit {
		final = int(math.Round(float64(final) * prog.CritMultiplier))
	}
	return final, crit
}

// afterHit applies the on-hit riders: lifesteal, bloodlust healing, and
// set-bonus flat damage. Returns extra flat damage dealt by set effects.
func afterHit(ctx *Context, caster *world.Player, target *world.Enemy, damage int) {
	if caster.Stats.Lifesteal > 0 {
		healed := caster.Stats.Heal(damage * caster.Stats.Lifesteal / 100)
		if healed > 0 {
			ctx.EmitCombat(proto.CombatEvent{SourceID: caster.ID, TargetID: caster.ID, Heal: healed})
		}
	}
	if bl := caster.BuffBySpecial(catalog.SpecialBloodlust); bl != nil && bl.HealPercent > 0 {
		healed := caster.Stats.Heal(damage * bl.HealPercent / 100)
		if healed > 0 {
			ctx.EmitCombat(proto.CombatEvent{SourceID: caster.ID, TargetID: caster.ID, Heal: healed})
		}
	}
	for _, setID := range caster.EquippedSetIDs() {
		si := ctx.Catalog.Sets.Get(setID)
		if si == nil {
			continue
		}
		for _, bonus := range si.ActiveBonuses(caster.SetPieceCount(setID)) {
			if bonus.Effect == catalog.SetEffectOnHitFire && target.IsAlive {
				extra := int(bonus.Value)
				ApplyDamageToEnemy(ctx, caster, target, extra, proto.CombatEvent{
					SourceID: caster.ID, TargetID: target.ID, Damage: extra,
				})
			}
		}
	}
}

// castDamage resolves a single-target damage ability, including its combo
// behaviors and attached stun/burn riders.
func castDamage(ctx *Context, caster *world.Player, target *world.Enemy, ability *catalog.AbilityInfo, rank int) {
	prog := ctx.Catalog.Progression
	damage, crit := attackDamage(ctx, caster, target, ability.BaseDamage, rank)

	stealthAttack := false
	selfHealPercent := 0

	switch ability.Special {
	case catalog.SpecialFireball:
		// +50% on a pyroblast-stunned target.
		if stun := target.DebuffByIcon("mage_pyroblast"); stun != nil && stun.IsStun {
			damage = damage * 3 / 2
		}
	case catalog.SpecialCrusader:
		// +50% and 30% self-heal on a judgment-stunned target.
		if stun := target.DebuffByIcon("paladin_judgment"); stun != nil && stun.IsStun {
			damage = damage * 3 / 2
			selfHealPercent = 30
		}
	case catalog.SpecialSinister:
		// x2 from stealth; the opener consumes the stealth buff.
		if sb := caster.BuffBySpecial(catalog.SpecialStealth); sb != nil {
			damage *= 2
			stealthAttack = true
			caster.RemoveBuff(sb)
		}
	}

	ev := proto.CombatEvent{
		SourceID: caster.ID, TargetID: target.ID, AbilityID: ability.ID,
		Damage: damage, IsCrit: crit, IsStealthAttack: stealthAttack,
	}
	ApplyDamageToEnemy(ctx, caster, target, damage, ev)
	afterHit(ctx, caster, target, damage)

	if selfHealPercent > 0 {
		healed := caster.Stats.Heal(damage * selfHealPercent / 100)
		if healed > 0 {
			ctx.EmitCombat(proto.CombatEvent{SourceID: caster.ID, TargetID: caster.ID, Heal: healed})
		}
	}

	// Attached stun (pyroblast, judgment).
	if ability.StunDuration > 0 && target.IsAlive {
		dur := prog.ScaledDuration(ability.StunDuration, rank)
		target.AddDebuff(&world.Buff{
			ID:   ctx.Run.NextEntityID("debuff"),
			Icon: ability.ID, Name: ability.Name,
			Duration: dur, MaxDuration: dur,
			IsDebuff: true, IsStun: true, Rank: rank, SourceID: caster.ID,
		})
	}

	if ability.Special == catalog.SpecialDrain {
		drainLife(ctx, caster, target, damage)
	}
}

// drainLife heals the caster for the primary damage; with a Hellfire burn
// on the primary target, every other burning enemy in the room is drained
// at half strength with one aggregated heal event.
func drainLife(ctx *Context, caster *world.Player, primary *world.Enemy, damage int) {
	healed := caster.Stats.Heal(damage)
	if healed > 0 {
		ctx.EmitCombat(proto.CombatEvent{SourceID: caster.ID, TargetID: caster.ID, Heal: healed})
	}

	if primary.DebuffByIcon("warlock_hellfire") == nil {
		return
	}
	room := ctx.Run.CurrentRoom()
	if room == nil {
		return
	}
	totalHeal := 0
	for _, other := range room.Enemies {
		if other == primary || !other.IsAlive {
			continue
		}
		if other.DebuffByIcon("warlock_hellfire") == nil {
			continue
		}
		secondary := damage / 2
		ApplyDamageToEnemy(ctx, caster, other, secondary, proto.CombatEvent{
			SourceID: caster.ID, TargetID: other.ID, AbilityID: "warlock_drain", Damage: secondary,
		})
		totalHeal += caster.Stats.Heal(secondary)
	}
	if totalHeal > 0 {
		ctx.EmitCombat(proto.CombatEvent{SourceID: caster.ID, TargetID: caster.ID, Heal: totalHeal})
	}
}

// castDebuff applies a DoT to the target.
func castDebuff(ctx *Context, caster *world.Player, target *world.Enemy, ability *catalog.AbilityInfo, rank int) {
	prog := ctx.Catalog.Progression
	dur := prog.ScaledDuration(ability.Duration, rank)
	target.AddDebuff(&world.Buff{
		ID:   ctx.Run.NextEntityID("debuff"),
		Icon: ability.ID, Name: ability.Name,
		Duration: dur, MaxDuration: dur,
		IsDebuff:      true,
		Rank:          rank,
		DamagePerTick: prog.ScaledDamage(ability.DamagePerTick, rank),
		TickInterval:  ability.TickInterval,
		SourceID:      caster.ID,
	})
}

// castAoE resolves an area ability around center.
func castAoE(ctx *Context, caster *world.Player, center world.Vec2, ability *catalog.AbilityInfo, rank int) {
	room := ctx.Run.CurrentRoom()
	if room == nil {
		return
	}

	var hit []*world.Enemy
	for _, e := range room.Enemies {
		if e.IsAlive && world.Dist(center, e.Pos) <= ability.Radius {
			hit = append(hit, e)
		}
	}

	var blazeStunAll bool
	for i, target := range hit {
		damage, crit := attackDamage(ctx, caster, target, ability.BaseDamage, rank)
		if ability.Special == catalog.SpecialBlaze && i == 0 {
			if stun := target.DebuffByIcon("mage_pyroblast"); stun != nil && stun.IsStun {
				blazeStunAll = true
			}
		}
		ApplyDamageToEnemy(ctx, caster, target, damage, proto.CombatEvent{
			SourceID: caster.ID, TargetID: target.ID, AbilityID: ability.ID,
			Damage: damage, IsCrit: crit,
		})
		afterHit(ctx, caster, target, damage)

		// Hellfire attaches a 4-tick burn worth half the dealt damage.
		if ability.Special == catalog.SpecialHellfire && target.IsAlive {
			perTick := damage / 2 / 4
			if perTick < 1 {
				perTick = 1
			}
			target.AddDebuff(&world.Buff{
				ID:   ctx.Run.NextEntityID("debuff"),
				Icon: ability.ID, Name: ability.Name,
				Duration: 4 * ability.TickIntervalOrDefault(), MaxDuration: 4 * ability.TickIntervalOrDefault(),
				IsDebuff:      true,
				Rank:          rank,
				DamagePerTick: perTick,
				TickInterval:  ability.TickIntervalOrDefault(),
				SourceID:      caster.ID,
			})
		}
	}

	// Blaze on a pyroblast-stunned primary stuns the rest of the room.
	if blazeStunAll {
		for _, e := range room.Enemies {
			if !e.IsAlive || (len(hit) > 0 && e == hit[0]) {
				continue
			}
			e.AddDebuff(&world.Buff{
				ID:   ctx.Run.NextEntityID("debuff"),
				Icon: "mage_blaze_stun", Name: "Blazing Daze",
				Duration: 2, MaxDuration: 2,
				IsDebuff: true, IsStun: true, SourceID: caster.ID,
			})
		}
	}
}

// castHeal heals the explicit ally target or the caster.
func castHeal(ctx *Context, caster *world.Player, req *world.CastRequest, ability *catalog.AbilityInfo, rank int) {
	target := caster
	if req.TargetID != "" {
		if ally := ctx.Run.PlayerByID(req.TargetID); ally != nil && ally.IsAlive {
			target = ally
		}
	}
	amount := ctx.Catalog.Progression.ScaledHeal(ability.BaseHeal, rank)
	healed := target.Stats.Heal(amount)
	if healed > 0 {
		ctx.EmitCombat(proto.CombatEvent{
			SourceID: caster.ID, TargetID: target.ID, AbilityID: ability.ID, Heal: healed,
		})
	}
}

// castBuff inserts or refreshes a self-buff by icon. Meditation is an
// instant mana restore with no buff record.
func castBuff(ctx *Context, caster *world.Player, ability *catalog.AbilityInfo, rank int) {
	prog := ctx.Catalog.Progression

	if ability.Special == catalog.SpecialMeditation {
		restored := caster.Stats.RestoreMana(prog.ScaledHeal(ability.ManaRestore, rank))
		if restored > 0 {
			ctx.EmitCombat(proto.CombatEvent{
				SourceID: caster.ID, TargetID: caster.ID, AbilityID: ability.ID, ManaRestore: restored,
			})
		}
		return
	}

	mods := make(map[string]int, len(ability.StatMods))
	for key, mod := range ability.StatMods {
		mods[key] = prog.ScaledStatMod(mod, rank)
	}
	dur := prog.ScaledDuration(ability.Duration, rank)
	buff := &world.Buff{
		ID:   ctx.Run.NextEntityID("buff"),
		Icon: ability.ID, Name: ability.Name,
		Duration: dur, MaxDuration: dur,
		Rank:     rank,
		StatMods: mods,
		Special:  ability.Special,
		Stacks:   ability.Stacks,
	}
	switch ability.Special {
	case catalog.SpecialBloodlust:
		buff.HealPercent = prog.ScaledHeal(ability.BaseHeal, rank)
	case catalog.SpecialRetribution:
		buff.ReflectFlat = prog.ScaledDamage(ability.BaseDamage, rank)
	}
	caster.ApplyBuff(buff)
}

// ApplyDamageToEnemy subtracts damage, emits the event (with Killed set on
// a lethal hit) and runs death handling.
func ApplyDamageToEnemy(ctx *Context, caster *world.Player, target *world.Enemy, damage int, ev proto.CombatEvent) {
	if !target.IsAlive || damage <= 0 {
		if ev.Damage > 0 || ev.Heal > 0 {
			ctx.EmitCombat(ev)
		}
		return
	}
	target.Stats.Health -= damage
	if target.Stats.Health <= 0 {
		target.Stats.Health = 0
		ev.Killed = true
	}
	ctx.EmitCombat(ev)
	if target.Stats.Health == 0 {
		HandleEnemyDeath(ctx, caster, target)
	}
}

// HandleEnemyDeath flips the enemy dead, awards XP, gold and loot to the
// killer, and retargets the killer to the next closest living enemy.
func HandleEnemyDeath(ctx *Context, killer *world.Player, dead *world.Enemy) {
	fightStart, engaged := ctx.Run.Tracking.BossFightStart[dead.ID]

	dead.IsAlive = false
	dead.TargetID = ""
	dead.Debuffs = nil
	ctx.Run.Tracking.ForgetEnemy(dead.ID)

	if killer != nil {
		AwardXP(ctx, killer, dead.XP)
		gold := dead.GoldMin
		if dead.GoldMax > dead.GoldMin {
			gold = ctx.Combat.IntBetween(dead.GoldMin, dead.GoldMax)
		}
		killer.Gold += gold

		var drops []*world.Item
		if dead.IsBoss {
			bonus := 0.0
			if engaged {
				bonus = ctx.Catalog.Progression.KillTimeMultiplier(ctx.Run.Clock - fightStart)
			}
			drops = RollBossDrops(ctx, dead, bonus)
		} else {
			drops = RollEnemyDrops(ctx, dead)
		}
		DropLoot(ctx, dead, drops, gold, dead.XP)

		if killer.TargetID == dead.ID {
			killer.TargetID = ""
			if next := ClosestLivingEnemy(ctx, killer.Pos); next != nil {
				killer.TargetID = next.ID
			}
		}
	}
}

// ClosestLivingEnemy returns the nearest living enemy in the current room.
func ClosestLivingEnemy(ctx *Context, from world.Vec2) *world.Enemy {
	room := ctx.Run.CurrentRoom()
	if room == nil {
		return nil
	}
	var best *world.Enemy
	bestDist := math.MaxFloat64
	for _, e := range room.Enemies {
		if !e.IsAlive || e.IsHidden {
			continue
		}
		if d := world.Dist(from, e.Pos); d < bestDist {
			bestDist, best = d, e
		}
	}
	return best
}
