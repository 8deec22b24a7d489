package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Enemy archetypes.
const (
	EnemyMelee  = "melee"
	EnemyRanged = "ranged"
	EnemyCaster = "caster"
)

// EnemyInfo holds one enemy template at floor-1 scaling.
type EnemyInfo struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	Health      int     `yaml:"health"`
	Damage      int     `yaml:"damage"`
	Armor       int     `yaml:"armor"`
	Resist      int     `yaml:"resist"`
	AttackRange float64 `yaml:"attack_range"`
	AttackSpeed float64 `yaml:"attack_speed"` // seconds between attacks
	Speed       float64 `yaml:"speed"`        // units per second
	XP          int     `yaml:"xp"`
	GoldMin     int     `yaml:"gold_min"`
	GoldMax     int     `yaml:"gold_max"`
}

// EnemyTable holds all enemy templates indexed by ID.
type EnemyTable struct {
	enemies map[string]*EnemyInfo
}

// NewEnemyTable builds a table from templates.
func NewEnemyTable(infos []*EnemyInfo) *EnemyTable {
	t := &EnemyTable{enemies: make(map[string]*EnemyInfo, len(infos))}
	for _, ei := range infos {
		t.enemies[ei.ID] = ei
	}
	return t
}

// Get returns an enemy template by ID, or nil if not found.
func (t *EnemyTable) Get(id string) *EnemyInfo {
	return t.enemies[id]
}

// Count returns total loaded enemy templates.
func (t *EnemyTable) Count() int {
	return len(t.enemies)
}

type enemyFile struct {
	Enemies []*EnemyInfo `yaml:"enemies"`
}

// LoadEnemyTable loads enemy templates from a YAML file.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemies: %w", err)
	}
	return parseEnemies(raw)
}

func parseEnemies(raw []byte) (*EnemyTable, error) {
	var f enemyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemies: %w", err)
	}
	for _, ei := range f.Enemies {
		if ei.ID == "" {
			return nil, fmt.Errorf("parse enemies: entry with empty id")
		}
		switch ei.Type {
		case EnemyMelee, EnemyRanged, EnemyCaster:
		default:
			return nil, fmt.Errorf("parse enemies: %s has unknown type %q", ei.ID, ei.Type)
		}
	}
	return NewEnemyTable(f.Enemies), nil
}
