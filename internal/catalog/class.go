package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClassInfo holds a playable class template.
type ClassInfo struct {
	ID                string         `yaml:"id"`
	Name              string         `yaml:"name"`
	BaseStats         map[string]int `yaml:"base_stats"`
	GainsPerLevel     map[string]int `yaml:"gains_per_level"`
	StartingAbilities []string       `yaml:"starting_abilities"`
	PetType           string         `yaml:"pet_type"` // summonable pet kind, "" = none
}

// ClassTable holds all classes indexed by ID.
type ClassTable struct {
	classes map[string]*ClassInfo
	order   []string
}

// NewClassTable builds a table from templates. Order of ids is preserved.
func NewClassTable(infos []*ClassInfo) *ClassTable {
	t := &ClassTable{classes: make(map[string]*ClassInfo, len(infos))}
	for _, ci := range infos {
		t.classes[ci.ID] = ci
		t.order = append(t.order, ci.ID)
	}
	return t
}

// Get returns a class by ID, or nil if not found.
func (t *ClassTable) Get(id string) *ClassInfo {
	return t.classes[id]
}

// Count returns total loaded classes.
func (t *ClassTable) Count() int {
	return len(t.classes)
}

// All returns classes in file order.
func (t *ClassTable) All() []*ClassInfo {
	result := make([]*ClassInfo, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, t.classes[id])
	}
	return result
}

type classFile struct {
	Classes []*ClassInfo `yaml:"classes"`
}

// LoadClassTable loads class templates from a YAML file.
func LoadClassTable(path string) (*ClassTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classes: %w", err)
	}
	return parseClasses(raw)
}

func parseClasses(raw []byte) (*ClassTable, error) {
	var f classFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse classes: %w", err)
	}
	for _, ci := range f.Classes {
		if ci.ID == "" {
			return nil, fmt.Errorf("parse classes: entry with empty id")
		}
	}
	return NewClassTable(f.Classes), nil
}
