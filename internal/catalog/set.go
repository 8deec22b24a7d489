package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Set effect keys applied when a piece threshold is met.
const (
	SetEffectOnHitFire   = "onhit_fire"   // flat bonus damage on every hit
	SetEffectAttackSpeed = "attack_speed" // auto-attack cooldown scaled by 1-value
	SetEffectLifesteal   = "lifesteal"    // additive lifesteal percent
)

// SetBonus is one threshold tier of a set.
type SetBonus struct {
	Pieces int            `yaml:"pieces"`
	Stats  map[string]int `yaml:"stats"`
	Effect string         `yaml:"effect"`
	Value  float64        `yaml:"value"`
}

// SetInfo holds one equipment set.
type SetInfo struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Pieces  []string   `yaml:"pieces"`
	Bonuses []SetBonus `yaml:"bonuses"`
}

// SetTable holds all sets indexed by ID.
type SetTable struct {
	sets map[string]*SetInfo
}

// NewSetTable builds a table from templates.
func NewSetTable(infos []*SetInfo) *SetTable {
	t := &SetTable{sets: make(map[string]*SetInfo, len(infos))}
	for _, si := range infos {
		t.sets[si.ID] = si
	}
	return t
}

// Get returns a set by ID, or nil if not found.
func (t *SetTable) Get(id string) *SetInfo {
	return t.sets[id]
}

// Count returns total loaded sets.
func (t *SetTable) Count() int {
	return len(t.sets)
}

// All returns every set in no particular order.
func (t *SetTable) All() []*SetInfo {
	result := make([]*SetInfo, 0, len(t.sets))
	for _, si := range t.sets {
		result = append(result, si)
	}
	return result
}

// ActiveBonuses returns the bonus tiers unlocked by wearing n pieces.
func (si *SetInfo) ActiveBonuses(n int) []SetBonus {
	var out []SetBonus
	for _, b := range si.Bonuses {
		if n >= b.Pieces {
			out = append(out, b)
		}
	}
	return out
}

type setFile struct {
	Sets []*SetInfo `yaml:"sets"`
}

// LoadSetTable loads equipment sets from a YAML file.
func LoadSetTable(path string) (*SetTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sets: %w", err)
	}
	return parseSets(raw)
}

func parseSets(raw []byte) (*SetTable, error) {
	var f setFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sets: %w", err)
	}
	for _, si := range f.Sets {
		if si.ID == "" {
			return nil, fmt.Errorf("parse sets: entry with empty id")
		}
	}
	return NewSetTable(f.Sets), nil
}
