// Package scripting wraps a gopher-lua VM holding the tunable game
// formulas: economy (vendor pricing, sell values), progression (XP curve)
// and scaling (enemy stat multipliers). Every formula has a built-in Go
// fallback so the server runs without a scripts directory.
package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single Lua VM. Scripts are loaded once at boot; after that
// the VM only evaluates pure functions. One engine is shared by every run
// task, so calls serialize on an internal mutex.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates the engine and loads all .lua files from scriptsDir.
// A missing directory is fine; the fallbacks carry the full formula set.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Info("scripts directory missing, using built-in formulas", zap.String("dir", dir))
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// callNumber invokes a global Lua function expected to return one number.
// Returns (0, false) when the function is absent or errors, which sends the
// caller to its Go fallback.
func (e *Engine) callNumber(name string, args ...lua.LValue) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		e.log.Error("lua call failed", zap.String("fn", name), zap.Error(err))
		return 0, false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("fn", name))
		return 0, false
	}
	return float64(n), true
}

// XPForLevel returns the total XP needed to advance from level to level+1.
// Lua: xp_for_level(level). Fallback: base * growth^(level-1).
func (e *Engine) XPForLevel(level, base int, growth float64) int {
	if n, ok := e.callNumber("xp_for_level", lua.LNumber(level)); ok {
		return int(n)
	}
	return int(math.Round(float64(base) * math.Pow(growth, float64(level-1))))
}

// LevelUpCost returns the trainer's gold price for the next level.
// Lua: level_up_cost(level). Fallback: base * level.
func (e *Engine) LevelUpCost(level, base int) int {
	if n, ok := e.callNumber("level_up_cost", lua.LNumber(level)); ok {
		return int(n)
	}
	return base * level
}

// TrainCost returns the trainer's gold price to raise an ability to rank.
// Lua: train_cost(rank, floor). Fallback: base * rank * rank.
func (e *Engine) TrainCost(rank, floor, base int) int {
	if n, ok := e.callNumber("train_cost", lua.LNumber(rank), lua.LNumber(floor)); ok {
		return int(n)
	}
	return base * rank * rank
}

// SellValue returns the shop's gold offer for an item.
// Lua: sell_value(item_power, rarity_mult). Fallback: power * factor * mult.
func (e *Engine) SellValue(itemPower int, rarityMult, factor float64) int {
	if n, ok := e.callNumber("sell_value", lua.LNumber(itemPower), lua.LNumber(rarityMult)); ok {
		return int(n)
	}
	v := int(math.Round(float64(itemPower) * factor * rarityMult))
	if v < 1 {
		v = 1
	}
	return v
}

// ScaleConfig carries the fallback multiplier knobs from the progression
// table into EnemyScale.
type ScaleConfig struct {
	HealthPerFloor        float64
	DamagePerFloor        float64
	PartyHealthBonus      float64
	PartyDamageBonus      float64
	ItemPowerHealthFactor float64
	ItemPowerDamageFactor float64
}

// EnemyScale returns (healthMult, damageMult) for enemies generated on a
// floor, monotonic non-decreasing in floor, party size and item power.
// Lua: enemy_health_scale / enemy_damage_scale (floor, party, item_power).
func (e *Engine) EnemyScale(floor, partySize, avgItemPower int, cfg ScaleConfig) (float64, float64) {
	args := []lua.LValue{lua.LNumber(floor), lua.LNumber(partySize), lua.LNumber(avgItemPower)}
	health, okH := e.callNumber("enemy_health_scale", args...)
	damage, okD := e.callNumber("enemy_damage_scale", args...)
	if !okH {
		health = 1 + cfg.HealthPerFloor*float64(floor-1) +
			cfg.PartyHealthBonus*float64(partySize-1) +
			cfg.ItemPowerHealthFactor*float64(avgItemPower)
	}
	if !okD {
		damage = 1 + cfg.DamagePerFloor*float64(floor-1) +
			cfg.PartyDamageBonus*float64(partySize-1) +
			cfg.ItemPowerDamageFactor*float64(avgItemPower)
	}
	if health < 1 {
		health = 1
	}
	if damage < 1 {
		damage = 1
	}
	return health, damage
}
