package world

// Pet kinds. Totems are stationary and never taunt; the rest taunt on a
// cycle and follow their owner when far.
const (
	PetImp        = "imp"
	PetVoidwalker = "voidwalker"
	PetBeast      = "beast"
	PetTotem      = "totem"
)

// PetAttackRanges gives each kind its engagement distance.
var PetAttackRanges = map[string]float64{
	PetImp:        300,
	PetVoidwalker: 120,
	PetBeast:      200,
	PetTotem:      250,
}

// Pet is an owner-scoped summoned entity.
type Pet struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Type    string `json:"type"`
	Pos     Vec2   `json:"position"`
	Stats   Stats  `json:"stats"`
	IsAlive bool   `json:"isAlive"`

	AttackCooldown float64 `json:"-"`
	TauntCooldown  float64 `json:"-"`
}

// Stationary reports whether the pet holds its summon position.
func (p *Pet) Stationary() bool {
	return p.Type == PetTotem
}

// CanTaunt reports whether this kind draws enemy attention.
func (p *Pet) CanTaunt() bool {
	return p.Type != PetTotem
}

// Range returns the pet's attack range.
func (p *Pet) Range() float64 {
	if r, ok := PetAttackRanges[p.Type]; ok {
		return r
	}
	return 120
}
