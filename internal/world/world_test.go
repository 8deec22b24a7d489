package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsApplyIsReversible(t *testing.T) {
	s := Stats{Health: 100, MaxHealth: 100, Armor: 20, Crit: 5, Speed: 240}
	mods := map[string]int{"armor": 15, "crit": 3, "speed": -40}

	s.Apply(mods, +1)
	assert.Equal(t, 35, s.Armor)
	assert.Equal(t, 8, s.Crit)
	assert.Equal(t, 200.0, s.Speed)

	s.Apply(mods, -1)
	assert.Equal(t, 20, s.Armor)
	assert.Equal(t, 5, s.Crit)
	assert.Equal(t, 240.0, s.Speed)
}

func TestStatsClampInvariants(t *testing.T) {
	s := Stats{Health: 100, MaxHealth: 100, Mana: 50, MaxMana: 50}
	s.Apply(map[string]int{"maxHealth": -200, "maxMana": -100, "armor": -10}, +1)

	assert.Equal(t, 1, s.MaxHealth)
	assert.Equal(t, 1, s.Health, "vitals follow a shrinking max")
	assert.Equal(t, 0, s.MaxMana)
	assert.Equal(t, 0, s.Mana)
	assert.Equal(t, 0, s.Armor)
}

func TestHealAndRestoreManaReportActuals(t *testing.T) {
	s := Stats{Health: 90, MaxHealth: 100, Mana: 45, MaxMana: 50}

	assert.Equal(t, 10, s.Heal(25), "overheal is discarded")
	assert.Equal(t, 100, s.Health)
	assert.Equal(t, 0, s.Heal(10))

	assert.Equal(t, 5, s.RestoreMana(20))
	assert.Equal(t, 50, s.Mana)

	dead := Stats{Health: 0, MaxHealth: 100}
	assert.Equal(t, 0, dead.Heal(50), "the dead do not heal")
}

func TestApplyBuffRefreshesByIcon(t *testing.T) {
	p := &Player{Stats: Stats{Health: 100, MaxHealth: 100, Armor: 10}}

	p.ApplyBuff(&Buff{Icon: "ward", Duration: 5, StatMods: map[string]int{"armor": 20}})
	require.Equal(t, 30, p.Stats.Armor)

	// Re-applying the same icon replaces, never stacks.
	p.ApplyBuff(&Buff{Icon: "ward", Duration: 8, StatMods: map[string]int{"armor": 20}})
	assert.Equal(t, 30, p.Stats.Armor)
	require.Len(t, p.Buffs, 1)
	assert.Equal(t, 8.0, p.Buffs[0].Duration)

	p.RemoveBuffByIcon("ward")
	assert.Equal(t, 10, p.Stats.Armor)
	assert.Empty(t, p.Buffs)
}

func TestItemPowerWeighsOffensiveStats(t *testing.T) {
	assert.Equal(t, 10, ItemPowerOf(map[string]int{"armor": 10}))
	assert.Equal(t, 20, ItemPowerOf(map[string]int{"attackPower": 10}))
	assert.Equal(t, 30, ItemPowerOf(map[string]int{"crit": 10}))
	assert.Equal(t, 40, ItemPowerOf(map[string]int{"lifesteal": 10}))
	assert.Equal(t, 26, ItemPowerOf(map[string]int{"attackPower": 10, "armor": 6}))
	assert.Zero(t, ItemPowerOf(nil))
}

func TestEventBufferDoubleBuffers(t *testing.T) {
	b := &EventBuffer{}
	b.Emit("A", 1)
	b.Emit("B", 2)
	assert.Equal(t, 2, b.Len())

	first := b.Drain()
	require.Len(t, first, 2)
	assert.Equal(t, "A", first[0].Type)
	assert.Zero(t, b.Len())

	// Emitting after a drain must not clobber the drained slice.
	b.Emit("C", 3)
	assert.Equal(t, "A", first[0].Type)

	second := b.Drain()
	require.Len(t, second, 1)
	assert.Equal(t, "C", second[0].Type)
}

func TestRunEntityIDsAreUnique(t *testing.T) {
	r := NewRun("run_1", "seed")
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := r.NextEntityID("enemy")
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestClearEnemyTargetsOn(t *testing.T) {
	r := NewRun("run_1", "seed")
	e1 := &Enemy{ID: "e1", TargetID: "p1", IsAlive: true}
	e2 := &Enemy{ID: "e2", TargetID: "p2", IsAlive: true}
	r.Dungeon = &Dungeon{Rooms: []*Room{{ID: 0, Enemies: []*Enemy{e1, e2}}}}

	r.ClearEnemyTargetsOn("p1")
	assert.Empty(t, e1.TargetID)
	assert.Equal(t, "p2", e2.TargetID)
}
