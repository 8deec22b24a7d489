package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFallbackEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(filepath.Join(t.TempDir(), "missing"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func newShippedEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("../../scripts", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestFallbackFormulas(t *testing.T) {
	e := newFallbackEngine(t)

	assert.Equal(t, 100, e.XPForLevel(1, 100, 1.5))
	assert.Equal(t, 150, e.XPForLevel(2, 100, 1.5))
	assert.Equal(t, 225, e.XPForLevel(3, 100, 1.5))

	assert.Equal(t, 50, e.LevelUpCost(1, 50))
	assert.Equal(t, 250, e.LevelUpCost(5, 50))

	assert.Equal(t, 75, e.TrainCost(1, 2, 75))
	assert.Equal(t, 675, e.TrainCost(3, 4, 75))

	assert.Equal(t, 16, e.SellValue(20, 1.0, 0.8))
	assert.Equal(t, 32, e.SellValue(20, 2.0, 0.8))
	assert.Equal(t, 1, e.SellValue(0, 1.0, 0.8), "offers never drop below one gold")
}

func TestFallbackEnemyScale(t *testing.T) {
	e := newFallbackEngine(t)
	cfg := ScaleConfig{
		HealthPerFloor:        0.2,
		DamagePerFloor:        0.1,
		PartyHealthBonus:      0.3,
		PartyDamageBonus:      0.2,
		ItemPowerHealthFactor: 0.01,
		ItemPowerDamageFactor: 0.005,
	}

	h, d := e.EnemyScale(1, 1, 0, cfg)
	assert.InDelta(t, 1.0, h, 1e-9)
	assert.InDelta(t, 1.0, d, 1e-9)

	h, d = e.EnemyScale(5, 2, 10, cfg)
	assert.InDelta(t, 1+0.2*4+0.3+0.01*10, h, 1e-9)
	assert.InDelta(t, 1+0.1*4+0.2+0.005*10, d, 1e-9)

	// The multipliers never dip below 1.
	h, d = e.EnemyScale(1, 1, 0, ScaleConfig{HealthPerFloor: -5, DamagePerFloor: -5})
	assert.Equal(t, 1.0, h)
	assert.Equal(t, 1.0, d)
}

func TestShippedScriptsOverrideFallbacks(t *testing.T) {
	e := newShippedEngine(t)

	// progression.lua: floor(100 * 1.25^(level-1)), not the fallback curve.
	assert.Equal(t, 100, e.XPForLevel(1, 100, 1.5))
	assert.Equal(t, 125, e.XPForLevel(2, 100, 1.5))
	assert.Equal(t, 156, e.XPForLevel(3, 100, 1.5))

	// economy.lua: 100 * level regardless of the configured base.
	assert.Equal(t, 100, e.LevelUpCost(1, 50))
	assert.Equal(t, 700, e.LevelUpCost(7, 50))

	// economy.lua: 75 * rank^2 with the deep-floor discount.
	assert.Equal(t, 300, e.TrainCost(2, 5, 75))
	assert.Equal(t, 270, e.TrainCost(2, 11, 75))

	// economy.lua: floor(power * 1.5 * rarity_mult).
	assert.Equal(t, 30, e.SellValue(20, 1.0, 0.8))

	// scaling.lua.
	h, d := e.EnemyScale(3, 1, 0, ScaleConfig{})
	assert.InDelta(t, 1.44, h, 1e-9)
	assert.InDelta(t, 1.30, d, 1e-9)
}

func TestBrokenScriptFailsBoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}

func TestScriptErrorFallsBackToGo(t *testing.T) {
	dir := t.TempDir()
	script := "function level_up_cost(level)\n    error('boom')\nend\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "econ.lua"), []byte(script), 0o644))

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)

	assert.Equal(t, 150, e.LevelUpCost(3, 50), "a throwing script yields to the fallback")
}

func TestNonLuaFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not lua"), 0o644))

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	e.Close()
}
