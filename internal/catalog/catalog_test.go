package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadAll("../../data", zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestLoadAllShippedTables(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, 7, c.Classes.Count())
	assert.Equal(t, 6, c.Themes.Count())
	assert.Equal(t, 6, c.Bosses.Count())
	assert.GreaterOrEqual(t, c.Abilities.Count(), 30)
	assert.GreaterOrEqual(t, c.Enemies.Count(), 18)
	assert.GreaterOrEqual(t, c.Items.Count(), 25)
	assert.Equal(t, 2, c.Sets.Count())
}

func TestClassStartingAbilitiesExist(t *testing.T) {
	c := loadTestCatalog(t)
	for _, cl := range c.Classes.All() {
		require.NotEmpty(t, cl.StartingAbilities, "class %s", cl.ID)
		for _, id := range cl.StartingAbilities {
			ab := c.Abilities.Get(id)
			require.NotNil(t, ab, "class %s ability %s", cl.ID, id)
			assert.Equal(t, cl.ID, ab.Class)
		}
	}
}

func TestEnemyTemplateValues(t *testing.T) {
	c := loadTestCatalog(t)

	sk := c.Enemies.Get("skeleton_warrior")
	require.NotNil(t, sk)
	assert.Equal(t, EnemyMelee, sk.Type)
	assert.Equal(t, 60, sk.Health)
	assert.Equal(t, 8, sk.Damage)

	assert.Nil(t, c.Enemies.Get("no_such_enemy"))
}

func TestBossAbilitiesForFloorFiltersByMinFloor(t *testing.T) {
	c := loadTestCatalog(t)

	low := c.Bosses.AbilitiesForFloor("bone_tyrant", 1)
	require.Len(t, low, 2)

	mid := c.Bosses.AbilitiesForFloor("bone_tyrant", 5)
	require.Len(t, mid, 3)

	high := c.Bosses.AbilitiesForFloor("bone_tyrant", 10)
	require.Len(t, high, 4)

	assert.Nil(t, c.Bosses.AbilitiesForFloor("no_such_boss", 1))
}

func TestEveryBossAoETypeIsKnown(t *testing.T) {
	c := loadTestCatalog(t)
	known := map[string]bool{
		"expanding_circle": true, "moving_wave": true, "void_zone": true,
		"rotating_beam": true, "fire_pool": true, "gravity_well": true,
	}
	seen := map[string]bool{}
	for _, id := range []string{"bone_tyrant", "cinder_king", "frost_monarch", "rot_sovereign", "umbral_shade", "avarice_incarnate"} {
		bi := c.Bosses.Get(id)
		require.NotNil(t, bi)
		require.True(t, known[bi.AoEType], "boss %s aoe %q", id, bi.AoEType)
		seen[bi.AoEType] = true
	}
	// the six bosses exercise all six ground effect kinds
	assert.Len(t, seen, 6)
}

func TestThemesForFloor(t *testing.T) {
	c := loadTestCatalog(t)

	names := func(ts []*ThemeInfo) []string {
		var out []string
		for _, ti := range ts {
			out = append(out, ti.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"crypt", "swamp"}, names(c.Themes.ForFloor(1)))
	assert.Contains(t, names(c.Themes.ForFloor(2)), "frozen")
	assert.Len(t, c.Themes.ForFloor(3), 6)
}

func TestProgressionRankScaling(t *testing.T) {
	c := loadTestCatalog(t)
	p := c.Progression

	// rank 1 is always the base value
	assert.Equal(t, 25, p.ScaledDamage(25, 1))
	assert.Equal(t, 40, p.ScaledHeal(40, 1))

	assert.Equal(t, 31, p.ScaledDamage(25, 2)) // 25 * 1.25
	assert.Equal(t, 50, p.ScaledDamage(25, 5)) // 25 * 2.0
	assert.InDelta(t, 2.3, p.ScaledDuration(2.0, 2), 1e-9)
}

func TestKillTimeMultiplierLadder(t *testing.T) {
	c := loadTestCatalog(t)
	p := c.Progression

	cases := []struct {
		elapsed float64
		want    float64
	}{
		{10, 0.5},
		{29.9, 0.5},
		{45, 0.25},
		{75, 0.1},
		{120, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.KillTimeMultiplier(tc.elapsed), "elapsed %.1f", tc.elapsed)
	}
}

func TestParseRejectsBadContent(t *testing.T) {
	_, err := parseEnemies([]byte("enemies:\n  - {id: x, type: flying}\n"))
	assert.Error(t, err)

	_, err = parseAbilities([]byte("abilities:\n  - {id: x, type: nonsense}\n"))
	assert.Error(t, err)

	_, err = parseClasses([]byte("classes:\n  - {name: NoID}\n"))
	assert.Error(t, err)

	_, err = parseProgression([]byte("max_level: 0\n"))
	assert.Error(t, err)
}
