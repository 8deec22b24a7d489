package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ability type tags. The combat resolver dispatches on these.
const (
	AbilityDamage  = "damage"
	AbilityAoE     = "aoe"
	AbilityHeal    = "heal"
	AbilityBuff    = "buff"
	AbilityDebuff  = "debuff"
	AbilitySummon  = "summon"
	AbilityUtility = "utility"
)

// Special behavior keys. An ability carries at most one; the resolver and
// the incoming-damage pipeline branch on them.
const (
	SpecialStealth      = "stealth"
	SpecialVanish       = "vanish"
	SpecialIceBlock     = "ice_block"
	SpecialProtection   = "blessing_protection" // rejects physical hits
	SpecialShieldWall   = "shield_wall"         // halves incoming damage
	SpecialRetaliation  = "retaliation"         // reflects post-mitigation damage
	SpecialRetribution  = "retribution_aura"    // flat reflect on being hit
	SpecialAncestral    = "ancestral"           // stacking heal-on-hit charges
	SpecialBloodlust    = "bloodlust"           // heal percent of damage dealt
	SpecialBladeFlurry  = "blade_flurry"        // auto-attack cleave + haste
	SpecialMeditation   = "meditation"          // instant mana restore, no buff
	SpecialSoulstone    = "soulstone"           // respawn in place on death
	SpecialSinister     = "sinister"            // x2 from stealth, consumes it
	SpecialCrusader     = "crusader"            // combos with judgment stun
	SpecialFireball     = "fireball"            // combos with pyroblast stun
	SpecialBlaze        = "blaze"               // room stun off pyroblast target
	SpecialDrain        = "drain"               // damage + self heal, hellfire combo
	SpecialHellfire     = "hellfire"            // aoe that attaches a burn
)

// AbilityInfo holds one ability template. ID doubles as the stable buff
// icon key (for example "warrior_bloodlust").
type AbilityInfo struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Class         string         `yaml:"class"`
	Type          string         `yaml:"type"`
	ManaCost      int            `yaml:"mana_cost"`
	Cooldown      float64        `yaml:"cooldown"` // seconds
	BaseDamage    int            `yaml:"base_damage"`
	BaseHeal      int            `yaml:"base_heal"`
	ManaRestore   int            `yaml:"mana_restore"`
	Range         float64        `yaml:"range"`
	Radius        float64        `yaml:"radius"`         // aoe only
	Duration      float64        `yaml:"duration"`       // buff/debuff seconds at rank 1
	StunDuration  float64        `yaml:"stun_duration"`  // attached stun, 0 = none
	DamagePerTick int            `yaml:"damage_per_tick"`
	TickInterval  float64        `yaml:"tick_interval"`
	StatMods      map[string]int `yaml:"stat_mods"` // buff deltas at rank 1
	Stacks        int            `yaml:"stacks"`    // initial charge count, 0 = not stacking
	SummonType    string         `yaml:"summon_type"`
	Special       string         `yaml:"special"`
	MaxRank       int            `yaml:"max_rank"`
}

// TickIntervalOrDefault returns the DoT cadence, defaulting to one second.
func (ai *AbilityInfo) TickIntervalOrDefault() float64 {
	if ai.TickInterval > 0 {
		return ai.TickInterval
	}
	return 1.0
}

// AbilityTable holds all abilities indexed by ID.
type AbilityTable struct {
	abilities map[string]*AbilityInfo
}

// NewAbilityTable builds a table from templates.
func NewAbilityTable(infos []*AbilityInfo) *AbilityTable {
	t := &AbilityTable{abilities: make(map[string]*AbilityInfo, len(infos))}
	for _, ai := range infos {
		t.abilities[ai.ID] = ai
	}
	return t
}

// Get returns an ability by ID, or nil if not found.
func (t *AbilityTable) Get(id string) *AbilityInfo {
	return t.abilities[id]
}

// Count returns total loaded abilities.
func (t *AbilityTable) Count() int {
	return len(t.abilities)
}

// All returns every ability in no particular order.
func (t *AbilityTable) All() []*AbilityInfo {
	result := make([]*AbilityInfo, 0, len(t.abilities))
	for _, ai := range t.abilities {
		result = append(result, ai)
	}
	return result
}

type abilityFile struct {
	Abilities []*AbilityInfo `yaml:"abilities"`
}

// LoadAbilityTable loads ability templates from a YAML file.
func LoadAbilityTable(path string) (*AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	return parseAbilities(raw)
}

func parseAbilities(raw []byte) (*AbilityTable, error) {
	var f abilityFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}
	for _, ai := range f.Abilities {
		if ai.ID == "" {
			return nil, fmt.Errorf("parse abilities: entry with empty id")
		}
		switch ai.Type {
		case AbilityDamage, AbilityAoE, AbilityHeal, AbilityBuff, AbilityDebuff, AbilitySummon, AbilityUtility:
		default:
			return nil, fmt.Errorf("parse abilities: %s has unknown type %q", ai.ID, ai.Type)
		}
		if ai.MaxRank <= 0 {
			ai.MaxRank = 5
		}
	}
	return NewAbilityTable(f.Abilities), nil
}
