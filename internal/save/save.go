// Package save implements the portable save format: an inspectable JSON
// document with strict field validation and a keyed MAC so servers can
// reject tampered imports.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/world"
)

// Hard limits on imported saves.
const (
	MaxNameLength   = 30
	MaxLevel        = 50
	MaxGold         = 99999
	MaxFloor        = 30
	MaxAbilities    = 10
	MaxBackpackSize = 20
	MaxLives        = 5
)

// SavedAbility is one known ability with its trained rank.
type SavedAbility struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

// SavedItem carries enough to re-mint the item on import.
type SavedItem struct {
	TemplateID string `json:"templateId"`
	Rarity     string `json:"rarity"`
}

// SaveData is the exported character. Version gates future migrations.
type SaveData struct {
	Version   int                  `json:"version"`
	Name      string               `json:"name"`
	ClassID   string               `json:"classId"`
	Level     int                  `json:"level"`
	XP        int                  `json:"xp"`
	Gold      int                  `json:"gold"`
	Floor     int                  `json:"floor"`
	Lives     int                  `json:"lives"`
	Abilities []SavedAbility       `json:"abilities"`
	Equipment map[string]SavedItem `json:"equipment,omitempty"`
	Backpack  []SavedItem          `json:"backpack,omitempty"`
}

// CurrentVersion is written on export; imports accept it alone.
const CurrentVersion = 1

// Parse decodes raw JSON into a save without validating it.
func Parse(raw []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(raw, &sd); err != nil {
		return nil, errors.New("save data is not valid JSON")
	}
	return &sd, nil
}

// Validate checks every field against the limits and the catalog. The
// returned error message is client-facing and names the offending field.
// The name is NFKC-normalized in place before the length check.
func (sd *SaveData) Validate(ct *catalog.Catalog) error {
	if sd.Version != CurrentVersion {
		return fmt.Errorf("unsupported save version %d", sd.Version)
	}
	sd.Name = norm.NFKC.String(sd.Name)
	if sd.Name == "" || len(sd.Name) > MaxNameLength {
		return errors.New("name must be 1-30 characters")
	}
	if ct.Classes.Get(sd.ClassID) == nil {
		return fmt.Errorf("unknown class %q", sd.ClassID)
	}
	if sd.Level < 1 || sd.Level > MaxLevel {
		return errors.New("level out of range")
	}
	if sd.XP < 0 {
		return errors.New("negative xp")
	}
	if sd.Gold < 0 || sd.Gold > MaxGold {
		return errors.New("gold out of range")
	}
	if sd.Floor < 1 || sd.Floor > MaxFloor {
		return errors.New("floor out of range")
	}
	if sd.Lives < 0 || sd.Lives > MaxLives {
		return errors.New("lives out of range")
	}
	if len(sd.Abilities) > MaxAbilities {
		return errors.New("too many abilities")
	}
	for _, sa := range sd.Abilities {
		ab := ct.Abilities.Get(sa.ID)
		if ab == nil {
			return fmt.Errorf("unknown ability %q", sa.ID)
		}
		if sa.Rank < 1 || sa.Rank > ab.MaxRank {
			return fmt.Errorf("ability %s rank out of range", sa.ID)
		}
	}
	if len(sd.Backpack) > MaxBackpackSize {
		return errors.New("backpack too large")
	}
	for slot, si := range sd.Equipment {
		if err := validItem(ct, si); err != nil {
			return err
		}
		tmpl := ct.Items.Get(si.TemplateID)
		if tmpl.Slot != slot {
			return fmt.Errorf("item %s cannot occupy slot %s", si.TemplateID, slot)
		}
	}
	for _, si := range sd.Backpack {
		if err := validItem(ct, si); err != nil {
			return err
		}
	}
	return nil
}

func validItem(ct *catalog.Catalog, si SavedItem) error {
	if ct.Items.Get(si.TemplateID) == nil {
		return fmt.Errorf("unknown item %q", si.TemplateID)
	}
	valid := false
	for _, r := range catalog.Rarities {
		if r == si.Rarity {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown rarity %q", si.Rarity)
	}
	return nil
}

// Export snapshots a player into a save document.
func Export(p *world.Player, floor int) *SaveData {
	sd := &SaveData{
		Version: CurrentVersion,
		Name:    p.Name,
		ClassID: p.ClassID,
		Level:   p.Level,
		XP:      p.XP,
		Gold:    p.Gold,
		Floor:   floor,
		Lives:   p.Lives,
	}
	if sd.Gold > MaxGold {
		sd.Gold = MaxGold
	}
	for _, pa := range p.Abilities {
		sd.Abilities = append(sd.Abilities, SavedAbility{ID: pa.ID, Rank: pa.Rank})
	}
	if len(p.Equipment) > 0 {
		sd.Equipment = make(map[string]SavedItem, len(p.Equipment))
		for slot, it := range p.Equipment {
			if it != nil {
				sd.Equipment[slot] = SavedItem{TemplateID: it.TemplateID, Rarity: it.Rarity}
			}
		}
	}
	for _, it := range p.Backpack {
		sd.Backpack = append(sd.Backpack, SavedItem{TemplateID: it.TemplateID, Rarity: it.Rarity})
	}
	return sd
}

// Marshal renders the save as canonical JSON for signing and transport.
func (sd *SaveData) Marshal() ([]byte, error) {
	return json.Marshal(sd)
}
