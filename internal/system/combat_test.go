package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

func TestEnemyAttackMitigation(t *testing.T) {
	tests := []struct {
		name       string
		attacker   string
		armor      int
		resist     int
		base       int
		wantDamage int
	}{
		{"armor halves physical", catalog.EnemyMelee, 100, 0, 50, 25},
		{"resist ignored for physical", catalog.EnemyRanged, 0, 100, 50, 50},
		{"resist halves caster", catalog.EnemyCaster, 100, 100, 50, 25},
		{"no mitigation", catalog.EnemyMelee, 0, 0, 30, 30},
		{"rounding", catalog.EnemyMelee, 50, 0, 10, 7}, // 10*100/150 = 6.67
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			p := addPlayer(ctx, "warrior")
			p.Stats.Health, p.Stats.MaxHealth = 500, 500
			p.Stats.Armor, p.Stats.Resist = tt.armor, tt.resist

			e := addEnemy(ctx, 0, 100)
			e.Type = tt.attacker

			ProcessEnemyAttack(ctx, e, p, tt.base)
			assert.Equal(t, 500-tt.wantDamage, p.Stats.Health)
		})
	}
}

func TestEnemyAttackFullRejects(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "rogue")
	p.Stats.Health, p.Stats.MaxHealth = 300, 300
	e := addEnemy(ctx, 0, 100)

	p.Buffs = append(p.Buffs, &world.Buff{Icon: "rogue_stealth", Duration: 10, Special: catalog.SpecialStealth})
	ProcessEnemyAttack(ctx, e, p, 40)
	assert.Equal(t, 300, p.Stats.Health, "stealth rejects the hit")
	p.Buffs = nil

	p.Buffs = append(p.Buffs, &world.Buff{Icon: "mage_iceblock", Duration: 5, Special: catalog.SpecialIceBlock})
	ProcessEnemyAttack(ctx, e, p, 40)
	assert.Equal(t, 300, p.Stats.Health, "ice block rejects the hit")
	p.Buffs = nil
}

func TestProtectionRejectsPhysicalOnly(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "paladin")
	p.Stats.Health, p.Stats.MaxHealth = 300, 300
	p.Stats.Armor, p.Stats.Resist = 0, 0
	p.Buffs = append(p.Buffs, &world.Buff{Icon: "paladin_protection", Duration: 8, Special: catalog.SpecialProtection})

	melee := addEnemy(ctx, 0, 100)
	ProcessEnemyAttack(ctx, melee, p, 40)
	assert.Equal(t, 300, p.Stats.Health, "physical hit rejected")

	caster := addEnemy(ctx, 0, 100)
	caster.Type = catalog.EnemyCaster
	ProcessEnemyAttack(ctx, caster, p, 40)
	assert.Equal(t, 260, p.Stats.Health, "spell hit lands")
}

func TestShieldWallHalvesAndReportsBlocked(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	p.Stats.Health, p.Stats.MaxHealth = 300, 300
	p.Stats.Armor = 0
	p.Buffs = append(p.Buffs, &world.Buff{Icon: "warrior_shield", Duration: 8, Special: catalog.SpecialShieldWall})
	e := addEnemy(ctx, 0, 100)

	ProcessEnemyAttack(ctx, e, p, 30)
	assert.Equal(t, 285, p.Stats.Health)

	var hit *proto.CombatEvent
	for _, ev := range drainEvents(ctx) {
		if ce, ok := ev.Data.(proto.CombatEvent); ok && ce.TargetID == p.ID {
			hit = &ce
			break
		}
	}
	require.NotNil(t, hit)
	assert.Equal(t, 15, hit.Damage)
	assert.Equal(t, 15, hit.Blocked)
}

func TestRetaliationReflectsPostMitigationDamage(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	p.Stats.Health, p.Stats.MaxHealth = 300, 300
	p.Stats.Armor = 100
	p.Buffs = append(p.Buffs, &world.Buff{Icon: "warrior_retaliation", Duration: 10, Special: catalog.SpecialRetaliation})
	e := addEnemy(ctx, 0, 100)

	ProcessEnemyAttack(ctx, e, p, 50)
	assert.Equal(t, 275, p.Stats.Health)
	assert.Equal(t, 75, e.Stats.Health, "attacker eats the mitigated 25 back")
}

func TestRetributionAuraReflectsFlat(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "paladin")
	p.Stats.Health, p.Stats.MaxHealth = 300, 300
	p.Stats.Armor = 0
	p.Buffs = append(p.Buffs, &world.Buff{
		Icon: "paladin_retribution", Duration: 15,
		Special: catalog.SpecialRetribution, ReflectFlat: 8,
	})
	e := addEnemy(ctx, 0, 100)

	ProcessEnemyAttack(ctx, e, p, 20)
	assert.Equal(t, 92, e.Stats.Health)
}

func TestAncestralSpiritConsumesStacks(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "shaman")
	p.Stats.Health, p.Stats.MaxHealth = 100, 300
	p.Stats.Armor = 0
	anc := &world.Buff{Icon: "shaman_ancestral", Duration: 20, Special: catalog.SpecialAncestral, Stacks: 2}
	p.Buffs = append(p.Buffs, anc)
	e := addEnemy(ctx, 0, 100)

	ProcessEnemyAttack(ctx, e, p, 10)
	assert.Equal(t, 100-10+30, p.Stats.Health)
	assert.Equal(t, 1, anc.Stacks)

	ProcessEnemyAttack(ctx, e, p, 10)
	assert.Nil(t, p.BuffBySpecial(catalog.SpecialAncestral), "last stack removes the buff")
}

func TestCastAbilityPaysCostAndStartsCooldown(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	e := addEnemy(ctx, 0, 200)
	e.Pos = p.Pos.Add(world.Vec2{X: 40})

	CastAbility(ctx, p, &world.CastRequest{AbilityID: "warrior_strike", TargetID: e.ID})

	// base 25 + half of attack power 10, no armor.
	assert.Equal(t, 170, e.Stats.Health)
	assert.Equal(t, 30, p.Stats.Mana)
	assert.InDelta(t, 3.0, p.Ability("warrior_strike").Cooldown, 1e-9)
}

func TestCastAbilityPreconditionsAreSilent(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	e := addEnemy(ctx, 0, 200)
	e.Pos = p.Pos.Add(world.Vec2{X: 40})

	p.Stats.Mana = 5
	CastAbility(ctx, p, &world.CastRequest{AbilityID: "warrior_strike", TargetID: e.ID})
	assert.Equal(t, 200, e.Stats.Health, "insufficient mana is a no-op")
	assert.Equal(t, 5, p.Stats.Mana)
	assert.Zero(t, p.Ability("warrior_strike").Cooldown)

	p.Stats.Mana = 40
	p.Ability("warrior_strike").Cooldown = 1.0
	CastAbility(ctx, p, &world.CastRequest{AbilityID: "warrior_strike", TargetID: e.ID})
	assert.Equal(t, 200, e.Stats.Health, "cooldown gate holds")

	assert.Empty(t, drainEvents(ctx))
}

func TestSinisterStrikeConsumesStealth(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "rogue")
	e := addEnemy(ctx, 0, 500)
	e.Pos = p.Pos.Add(world.Vec2{X: 40})
	p.Buffs = append(p.Buffs, &world.Buff{Icon: "rogue_stealth", Duration: 10, Special: catalog.SpecialStealth})

	CastAbility(ctx, p, &world.CastRequest{AbilityID: "rogue_stab", TargetID: e.ID})

	// (base 28 + half of attack power 12) doubled from stealth.
	assert.Equal(t, 500-68, e.Stats.Health)
	assert.Nil(t, p.BuffBySpecial(catalog.SpecialStealth))

	var stealthHit bool
	for _, ev := range drainEvents(ctx) {
		if ce, ok := ev.Data.(proto.CombatEvent); ok && ce.IsStealthAttack {
			stealthHit = true
		}
	}
	assert.True(t, stealthHit)
}

func TestFireballCombosWithPyroblastStun(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "mage")
	e := addEnemy(ctx, 0, 500)
	e.Pos = p.Pos.Add(world.Vec2{X: 200})

	CastAbility(ctx, p, &world.CastRequest{AbilityID: "mage_pyroblast", TargetID: e.ID})
	// base 55 + half of spell power 12.
	require.Equal(t, 500-61, e.Stats.Health)
	require.NotNil(t, e.DebuffByIcon("mage_pyroblast"))
	require.True(t, e.Stunned())

	CastAbility(ctx, p, &world.CastRequest{AbilityID: "mage_fireball", TargetID: e.ID})
	// (base 30 + 6) * 3/2 against the stunned target.
	assert.Equal(t, 500-61-54, e.Stats.Health)
}

func TestCritUsesConfiguredMultiplier(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	p.Stats.Crit = 100
	e := addEnemy(ctx, 0, 500)

	damage, crit := attackDamage(ctx, p, e, 25, 1)
	assert.True(t, crit)
	assert.Equal(t, 45, damage) // round(30 * 1.5)
}

func TestHandleEnemyDeathAwardsAndRetargets(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	victim := addEnemy(ctx, 0, 10)
	other := addEnemy(ctx, 0, 100)
	p.TargetID = victim.ID

	ApplyDamageToEnemy(ctx, p, victim, 10, proto.CombatEvent{
		SourceID: p.ID, TargetID: victim.ID, Damage: 10,
	})

	assert.False(t, victim.IsAlive)
	assert.Equal(t, 50, p.XP)
	assert.Equal(t, 7, p.Gold)
	assert.Equal(t, other.ID, p.TargetID, "retargets the next living enemy")

	var killed bool
	for _, ev := range drainEvents(ctx) {
		if ce, ok := ev.Data.(proto.CombatEvent); ok && ce.Killed {
			killed = true
		}
	}
	assert.True(t, killed)
}

func TestPlayerDeathBookkeeping(t *testing.T) {
	ctx := testContext(t)
	p := addPlayer(ctx, "warrior")
	e := addEnemy(ctx, 0, 100)
	e.TargetID = p.ID
	ctx.Run.Clock = 12

	HandlePlayerDeath(ctx, p)

	assert.False(t, p.IsAlive)
	assert.Equal(t, 2, p.Lives)
	assert.Empty(t, e.TargetID, "no enemy targets a corpse")
	assert.Equal(t, 12.0, ctx.Run.Tracking.DeathTimes[p.ID])
}
