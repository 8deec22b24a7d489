// Package catalog loads the read-only static content tables: classes,
// abilities, enemies, bosses, items, sets, themes, and progression tuning.
// Tables are loaded once at boot and shared across all runs; nothing in this
// package mutates after load.
package catalog

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Catalog bundles every static table the simulation reads.
type Catalog struct {
	Classes     *ClassTable
	Abilities   *AbilityTable
	Enemies     *EnemyTable
	Bosses      *BossTable
	Items       *ItemTable
	Sets        *SetTable
	Themes      *ThemeTable
	Progression *Progression
}

// LoadAll reads every table from dir. Any missing or malformed file aborts
// startup; the simulation cannot run on a partial catalog.
func LoadAll(dir string, log *zap.Logger) (*Catalog, error) {
	c := &Catalog{}
	var err error

	if c.Classes, err = LoadClassTable(filepath.Join(dir, "classes.yaml")); err != nil {
		return nil, err
	}
	if c.Abilities, err = LoadAbilityTable(filepath.Join(dir, "abilities.yaml")); err != nil {
		return nil, err
	}
	if c.Enemies, err = LoadEnemyTable(filepath.Join(dir, "enemies.yaml")); err != nil {
		return nil, err
	}
	if c.Bosses, err = LoadBossTable(filepath.Join(dir, "bosses.yaml")); err != nil {
		return nil, err
	}
	if c.Items, err = LoadItemTable(filepath.Join(dir, "items.yaml")); err != nil {
		return nil, err
	}
	if c.Sets, err = LoadSetTable(filepath.Join(dir, "sets.yaml")); err != nil {
		return nil, err
	}
	if c.Themes, err = LoadThemeTable(filepath.Join(dir, "themes.yaml")); err != nil {
		return nil, err
	}
	if c.Progression, err = LoadProgression(filepath.Join(dir, "progression.yaml")); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	log.Info("catalog loaded",
		zap.Int("classes", c.Classes.Count()),
		zap.Int("abilities", c.Abilities.Count()),
		zap.Int("enemies", c.Enemies.Count()),
		zap.Int("bosses", c.Bosses.Count()),
		zap.Int("items", c.Items.Count()),
		zap.Int("sets", c.Sets.Count()),
		zap.Int("themes", c.Themes.Count()))
	return c, nil
}

// validate cross-checks references between tables so bad content fails at
// boot instead of mid-run.
func (c *Catalog) validate() error {
	for _, cl := range c.Classes.All() {
		for _, abilityID := range cl.StartingAbilities {
			if c.Abilities.Get(abilityID) == nil {
				return fmt.Errorf("catalog: class %s references unknown ability %s", cl.ID, abilityID)
			}
		}
	}
	for _, th := range c.Themes.All() {
		for _, enemyID := range th.Enemies {
			if c.Enemies.Get(enemyID) == nil {
				return fmt.Errorf("catalog: theme %s references unknown enemy %s", th.ID, enemyID)
			}
		}
		for _, bossID := range th.Bosses {
			if c.Bosses.Get(bossID) == nil {
				return fmt.Errorf("catalog: theme %s references unknown boss %s", th.ID, bossID)
			}
		}
	}
	for _, set := range c.Sets.All() {
		for _, itemID := range set.Pieces {
			it := c.Items.Get(itemID)
			if it == nil {
				return fmt.Errorf("catalog: set %s references unknown item %s", set.ID, itemID)
			}
			if it.SetID != set.ID {
				return fmt.Errorf("catalog: item %s is listed in set %s but tagged %q", itemID, set.ID, it.SetID)
			}
		}
	}
	return nil
}
