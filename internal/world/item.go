package world

// Item is one item instance. Instances are minted from catalog templates by
// the loot pipeline; rarity has already been folded into Stats.
type Item struct {
	ID         string         `json:"id"`
	TemplateID string         `json:"templateId"`
	Name       string         `json:"name"`
	Slot       string         `json:"slot"`
	Rarity     string         `json:"rarity"`
	Stats      map[string]int `json:"stats,omitempty"`
	ItemPower  int            `json:"itemPower"`
	SetID      string         `json:"setId,omitempty"`
	Consumable bool           `json:"consumable,omitempty"`
	HealAmount int            `json:"healAmount,omitempty"`
	ManaAmount int            `json:"manaAmount,omitempty"`
}

// GroundItem is an item lying in a room waiting to be picked up.
type GroundItem struct {
	Item      *Item   `json:"item"`
	Pos       Vec2    `json:"position"`
	DroppedAt float64 `json:"-"` // run clock, drives the despawn sweep
}

// itemPowerWeights rates offensive and sustain stats above raw mitigation.
var itemPowerWeights = map[string]int{
	StatAttackPower: 2,
	StatSpellPower:  2,
	StatCrit:        3,
	StatHaste:       3,
	StatLifesteal:   4,
}

// ItemPowerOf computes the comparison score used by auto-equip: a weighted
// sum of the item's stats, weight 1 unless listed above.
func ItemPowerOf(stats map[string]int) int {
	power := 0
	for key, value := range stats {
		w := itemPowerWeights[key]
		if w == 0 {
			w = 1
		}
		power += value * w
	}
	return power
}
