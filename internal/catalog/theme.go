package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Room modifiers a theme can roll. "none" leaves the room unmodified.
const (
	ModifierBurning = "burning"
	ModifierCursed  = "cursed"
	ModifierBlessed = "blessed"
	ModifierDark    = "dark"
)

// ThemeInfo holds one dungeon theme and its environmental modifiers.
type ThemeInfo struct {
	ID               string             `yaml:"id"`
	Name             string             `yaml:"name"`
	MinFloor         int                `yaml:"min_floor"`
	MovementModifier float64            `yaml:"movement_modifier"` // multiplies player speed
	Momentum         bool               `yaml:"momentum"`          // slide physics instead of direct moves
	HazardDamage     int                `yaml:"hazard_damage"`     // ambient damage per proc, 0 = none
	HazardChance     float64            `yaml:"hazard_chance"`     // probability per 5s check
	TrapMultiplier   float64            `yaml:"trap_multiplier"`
	ChestDensity     float64            `yaml:"chest_density"` // extra-chest probability per room
	MimicChance      float64            `yaml:"mimic_chance"`  // non-boss chests only
	ModifierWeights  map[string]float64 `yaml:"modifier_weights"`
	Enemies          []string           `yaml:"enemies"`
	Bosses           []string           `yaml:"bosses"`
}

// ThemeTable holds all themes indexed by ID.
type ThemeTable struct {
	themes map[string]*ThemeInfo
	order  []string
}

// NewThemeTable builds a table from templates, preserving file order.
func NewThemeTable(infos []*ThemeInfo) *ThemeTable {
	t := &ThemeTable{themes: make(map[string]*ThemeInfo, len(infos))}
	for _, ti := range infos {
		t.themes[ti.ID] = ti
		t.order = append(t.order, ti.ID)
	}
	return t
}

// Get returns a theme by ID, or nil if not found.
func (t *ThemeTable) Get(id string) *ThemeInfo {
	return t.themes[id]
}

// Count returns total loaded themes.
func (t *ThemeTable) Count() int {
	return len(t.themes)
}

// All returns themes in file order.
func (t *ThemeTable) All() []*ThemeInfo {
	result := make([]*ThemeInfo, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, t.themes[id])
	}
	return result
}

// ForFloor returns the themes eligible on a floor.
func (t *ThemeTable) ForFloor(floor int) []*ThemeInfo {
	var out []*ThemeInfo
	for _, id := range t.order {
		if t.themes[id].MinFloor <= floor {
			out = append(out, t.themes[id])
		}
	}
	return out
}

type themeFile struct {
	Themes []*ThemeInfo `yaml:"themes"`
}

// LoadThemeTable loads dungeon themes from a YAML file.
func LoadThemeTable(path string) (*ThemeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes: %w", err)
	}
	return parseThemes(raw)
}

func parseThemes(raw []byte) (*ThemeTable, error) {
	var f themeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse themes: %w", err)
	}
	for _, ti := range f.Themes {
		if ti.ID == "" {
			return nil, fmt.Errorf("parse themes: entry with empty id")
		}
		if len(ti.Enemies) == 0 {
			return nil, fmt.Errorf("parse themes: %s has no enemies", ti.ID)
		}
		if ti.MovementModifier == 0 {
			ti.MovementModifier = 1.0
		}
	}
	return NewThemeTable(f.Themes), nil
}
