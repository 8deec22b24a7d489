package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BossAbility is one entry on a boss's ability track.
type BossAbility struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Damage   int     `yaml:"damage"`
	Cooldown float64 `yaml:"cooldown"` // seconds between uses
	MinFloor int     `yaml:"min_floor"`
	Radius   float64 `yaml:"radius"` // >0 = hits everyone in range
}

// BossInfo holds one boss template at floor-1 scaling.
type BossInfo struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Theme       string        `yaml:"theme"`
	Health      int           `yaml:"health"`
	Damage      int           `yaml:"damage"`
	Armor       int           `yaml:"armor"`
	Resist      int           `yaml:"resist"`
	AttackRange float64       `yaml:"attack_range"`
	AttackSpeed float64       `yaml:"attack_speed"`
	Speed       float64       `yaml:"speed"`
	AoEType     string        `yaml:"aoe_type"` // ground effect kind this boss spawns
	Abilities   []BossAbility `yaml:"abilities"`
	XP          int           `yaml:"xp"`
	GoldMin     int           `yaml:"gold_min"`
	GoldMax     int           `yaml:"gold_max"`
}

// BossTable holds all boss templates indexed by ID.
type BossTable struct {
	bosses map[string]*BossInfo
}

// NewBossTable builds a table from templates.
func NewBossTable(infos []*BossInfo) *BossTable {
	t := &BossTable{bosses: make(map[string]*BossInfo, len(infos))}
	for _, bi := range infos {
		t.bosses[bi.ID] = bi
	}
	return t
}

// Get returns a boss template by ID, or nil if not found.
func (t *BossTable) Get(id string) *BossInfo {
	return t.bosses[id]
}

// Count returns total loaded boss templates.
func (t *BossTable) Count() int {
	return len(t.bosses)
}

// AbilitiesForFloor returns the subset of a boss's abilities unlocked at or
// below floor, in file order. Unknown boss returns nil.
func (t *BossTable) AbilitiesForFloor(bossID string, floor int) []BossAbility {
	bi := t.bosses[bossID]
	if bi == nil {
		return nil
	}
	var out []BossAbility
	for _, ab := range bi.Abilities {
		if ab.MinFloor <= floor {
			out = append(out, ab)
		}
	}
	return out
}

type bossFile struct {
	Bosses []*BossInfo `yaml:"bosses"`
}

// LoadBossTable loads boss templates from a YAML file.
func LoadBossTable(path string) (*BossTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bosses: %w", err)
	}
	return parseBosses(raw)
}

func parseBosses(raw []byte) (*BossTable, error) {
	var f bossFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse bosses: %w", err)
	}
	for _, bi := range f.Bosses {
		if bi.ID == "" {
			return nil, fmt.Errorf("parse bosses: entry with empty id")
		}
		if len(bi.Abilities) == 0 {
			return nil, fmt.Errorf("parse bosses: %s has no abilities", bi.ID)
		}
	}
	return NewBossTable(f.Bosses), nil
}
