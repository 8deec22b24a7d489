package catalog

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// KillTimeBonus grants a loot multiplier for killing a boss within a window.
type KillTimeBonus struct {
	Within float64 `yaml:"within"` // seconds since fight start
	Bonus  float64 `yaml:"bonus"`  // additive multiplier, 0.5 = +50%
}

// Progression holds the numeric tuning for leveling, ranks, scaling, drops
// and the vendor economy fallbacks. One instance, shared read-only.
type Progression struct {
	MaxLevel       int     `yaml:"max_level"`
	MaxAbilityRank int     `yaml:"max_ability_rank"`
	XPBase         int     `yaml:"xp_base"`
	XPGrowth       float64 `yaml:"xp_growth"`

	RankDamageBonus   float64 `yaml:"rank_damage_bonus"`
	RankHealBonus     float64 `yaml:"rank_heal_bonus"`
	RankDurationBonus float64 `yaml:"rank_duration_bonus"`
	RankStatBonus     float64 `yaml:"rank_stat_bonus"`

	CritMultiplier float64 `yaml:"crit_multiplier"`

	HealthPerFloor        float64 `yaml:"health_per_floor"`
	DamagePerFloor        float64 `yaml:"damage_per_floor"`
	PartyHealthBonus      float64 `yaml:"party_health_bonus"`
	PartyDamageBonus      float64 `yaml:"party_damage_bonus"`
	ItemPowerHealthFactor float64 `yaml:"item_power_health_factor"`
	ItemPowerDamageFactor float64 `yaml:"item_power_damage_factor"`

	EliteChance     float64 `yaml:"elite_chance"`
	EliteHealthMult float64 `yaml:"elite_health_mult"`
	EliteDamageMult float64 `yaml:"elite_damage_mult"`
	RareHealthMult  float64 `yaml:"rare_health_mult"`
	RareDamageMult  float64 `yaml:"rare_damage_mult"`
	RareSpawnChance float64 `yaml:"rare_spawn_chance"`

	DropChanceBoss      float64            `yaml:"drop_chance_boss"`
	DropChanceRare      float64            `yaml:"drop_chance_rare"`
	DropChanceNormal    float64            `yaml:"drop_chance_normal"`
	SetDropChance       float64            `yaml:"set_drop_chance"`
	RarityUpgradeChance float64            `yaml:"rarity_upgrade_chance"`
	RarityMultipliers   map[string]float64 `yaml:"rarity_multipliers"`
	KillTimeBonuses     []KillTimeBonus    `yaml:"kill_time_bonuses"`

	LevelUpBaseCost int     `yaml:"level_up_base_cost"`
	TrainBaseCost   int     `yaml:"train_base_cost"`
	SellValueFactor float64 `yaml:"sell_value_factor"`
}

// LoadProgression loads progression tuning from a YAML file.
func LoadProgression(path string) (*Progression, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read progression: %w", err)
	}
	return parseProgression(raw)
}

func parseProgression(raw []byte) (*Progression, error) {
	var p Progression
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse progression: %w", err)
	}
	if p.MaxLevel <= 0 || p.MaxAbilityRank <= 0 {
		return nil, fmt.Errorf("parse progression: max_level and max_ability_rank must be positive")
	}
	if p.CritMultiplier <= 1 {
		return nil, fmt.Errorf("parse progression: crit_multiplier must exceed 1")
	}
	return &p, nil
}

// ScaledDamage applies the rank bonus to a base amount. Rank 1 is the base.
func (p *Progression) ScaledDamage(base, rank int) int {
	if rank < 1 {
		rank = 1
	}
	return int(math.Round(float64(base) * (1 + p.RankDamageBonus*float64(rank-1))))
}

// ScaledHeal applies the rank bonus to a base heal.
func (p *Progression) ScaledHeal(base, rank int) int {
	if rank < 1 {
		rank = 1
	}
	return int(math.Round(float64(base) * (1 + p.RankHealBonus*float64(rank-1))))
}

// ScaledDuration applies the rank bonus to a base duration in seconds.
func (p *Progression) ScaledDuration(base float64, rank int) float64 {
	if rank < 1 {
		rank = 1
	}
	return base * (1 + p.RankDurationBonus*float64(rank-1))
}

// ScaledStatMod applies the rank bonus to one buff stat delta.
func (p *Progression) ScaledStatMod(mod, rank int) int {
	if rank < 1 {
		rank = 1
	}
	return mod + int(math.Round(float64(mod)*p.RankStatBonus*float64(rank-1)))
}

// KillTimeMultiplier returns the additive loot bonus earned by a boss kill
// after elapsed seconds of fighting.
func (p *Progression) KillTimeMultiplier(elapsed float64) float64 {
	for _, kb := range p.KillTimeBonuses {
		if elapsed < kb.Within {
			return kb.Bonus
		}
	}
	return 0
}

// RarityMultiplier returns the stat multiplier for a rarity tier.
func (p *Progression) RarityMultiplier(rarity string) float64 {
	if m, ok := p.RarityMultipliers[rarity]; ok {
		return m
	}
	return 1.0
}
