package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Equipment slots. SlotConsumable marks potions and other usables.
const (
	SlotWeapon     = "weapon"
	SlotOffhand    = "offhand"
	SlotHead       = "head"
	SlotChest      = "chest"
	SlotLegs       = "legs"
	SlotBoots      = "boots"
	SlotHands      = "hands"
	SlotTrinket    = "trinket"
	SlotConsumable = "consumable"
)

// EquipmentSlots lists the eight wearable slots in display order.
var EquipmentSlots = []string{
	SlotWeapon, SlotOffhand, SlotHead, SlotChest,
	SlotLegs, SlotBoots, SlotHands, SlotTrinket,
}

// Rarities orders the rarity ladder; drop rolls upgrade along it.
var Rarities = []string{"common", "uncommon", "rare", "epic", "legendary"}

// ItemInfo holds one item template with stats at common rarity.
type ItemInfo struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Slot       string         `yaml:"slot"`
	Stats      map[string]int `yaml:"stats"`
	MinFloor   int            `yaml:"min_floor"`
	SetID      string         `yaml:"set_id"`
	HealAmount int            `yaml:"heal_amount"` // consumables
	ManaAmount int            `yaml:"mana_amount"` // consumables
	Price      int            `yaml:"price"`       // vendor buy price, 0 = not sold
}

// Consumable reports whether the item is used rather than worn.
func (ii *ItemInfo) Consumable() bool {
	return ii.Slot == SlotConsumable
}

// ItemTable holds all item templates indexed by ID.
type ItemTable struct {
	items map[string]*ItemInfo
	order []string
}

// NewItemTable builds a table from templates, preserving file order.
func NewItemTable(infos []*ItemInfo) *ItemTable {
	t := &ItemTable{items: make(map[string]*ItemInfo, len(infos))}
	for _, ii := range infos {
		t.items[ii.ID] = ii
		t.order = append(t.order, ii.ID)
	}
	return t
}

// Get returns an item template by ID, or nil if not found.
func (t *ItemTable) Get(id string) *ItemInfo {
	return t.items[id]
}

// Count returns total loaded item templates.
func (t *ItemTable) Count() int {
	return len(t.items)
}

// All returns templates in file order.
func (t *ItemTable) All() []*ItemInfo {
	result := make([]*ItemInfo, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, t.items[id])
	}
	return result
}

// EquippableForFloor returns wearable templates whose MinFloor is at or
// below floor. Used by drop rolls.
func (t *ItemTable) EquippableForFloor(floor int) []*ItemInfo {
	var out []*ItemInfo
	for _, id := range t.order {
		ii := t.items[id]
		if !ii.Consumable() && ii.MinFloor <= floor {
			out = append(out, ii)
		}
	}
	return out
}

// Purchasable returns templates with a vendor price, in file order.
func (t *ItemTable) Purchasable() []*ItemInfo {
	var out []*ItemInfo
	for _, id := range t.order {
		if t.items[id].Price > 0 {
			out = append(out, t.items[id])
		}
	}
	return out
}

type itemFile struct {
	Items []*ItemInfo `yaml:"items"`
}

// LoadItemTable loads item templates from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	return parseItems(raw)
}

func parseItems(raw []byte) (*ItemTable, error) {
	var f itemFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	valid := map[string]bool{SlotConsumable: true}
	for _, s := range EquipmentSlots {
		valid[s] = true
	}
	for _, ii := range f.Items {
		if ii.ID == "" {
			return nil, fmt.Errorf("parse items: entry with empty id")
		}
		if !valid[ii.Slot] {
			return nil, fmt.Errorf("parse items: %s has unknown slot %q", ii.ID, ii.Slot)
		}
	}
	return NewItemTable(f.Items), nil
}
