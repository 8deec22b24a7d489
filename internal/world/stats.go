package world

// Stat keys used by buff deltas, item stats and set bonuses.
const (
	StatMaxHealth   = "maxHealth"
	StatMaxMana     = "maxMana"
	StatAttackPower = "attackPower"
	StatSpellPower  = "spellPower"
	StatArmor       = "armor"
	StatResist      = "resist"
	StatCrit        = "crit"
	StatHaste       = "haste"
	StatLifesteal   = "lifesteal"
	StatSpeed       = "speed"
)

// Stats is the unit-less stat block shared by players, pets and enemies.
type Stats struct {
	Health      int     `json:"health"`
	MaxHealth   int     `json:"maxHealth"`
	Mana        int     `json:"mana"`
	MaxMana     int     `json:"maxMana"`
	AttackPower int     `json:"attackPower"`
	SpellPower  int     `json:"spellPower"`
	Armor       int     `json:"armor"`
	Resist      int     `json:"resist"`
	Crit        int     `json:"crit"`
	Haste       int     `json:"haste"`
	Lifesteal   int     `json:"lifesteal"`
	Speed       float64 `json:"speed"`
}

// Apply adds sign*delta for every entry in mods, then clamps. sign is +1 on
// application and -1 on removal, so a buff subtracts exactly what it added.
func (s *Stats) Apply(mods map[string]int, sign int) {
	for key, delta := range mods {
		d := delta * sign
		switch key {
		case StatMaxHealth:
			s.MaxHealth += d
		case StatMaxMana:
			s.MaxMana += d
		case StatAttackPower:
			s.AttackPower += d
		case StatSpellPower:
			s.SpellPower += d
		case StatArmor:
			s.Armor += d
		case StatResist:
			s.Resist += d
		case StatCrit:
			s.Crit += d
		case StatHaste:
			s.Haste += d
		case StatLifesteal:
			s.Lifesteal += d
		case StatSpeed:
			s.Speed += float64(d)
		}
	}
	s.Clamp()
}

// Clamp enforces the stat invariants: mitigation and rate stats never go
// negative, vitals never exceed their maxima.
func (s *Stats) Clamp() {
	if s.Armor < 0 {
		s.Armor = 0
	}
	if s.Resist < 0 {
		s.Resist = 0
	}
	if s.Crit < 0 {
		s.Crit = 0
	}
	if s.Haste < 0 {
		s.Haste = 0
	}
	if s.Lifesteal < 0 {
		s.Lifesteal = 0
	}
	if s.MaxHealth < 1 {
		s.MaxHealth = 1
	}
	if s.MaxMana < 0 {
		s.MaxMana = 0
	}
	if s.Health > s.MaxHealth {
		s.Health = s.MaxHealth
	}
	if s.Mana > s.MaxMana {
		s.Mana = s.MaxMana
	}
	if s.Speed < 0 {
		s.Speed = 0
	}
}

// Heal raises health by amount, clamped to max. Returns the amount actually
// restored.
func (s *Stats) Heal(amount int) int {
	if amount <= 0 || s.Health <= 0 {
		return 0
	}
	before := s.Health
	s.Health += amount
	if s.Health > s.MaxHealth {
		s.Health = s.MaxHealth
	}
	return s.Health - before
}

// RestoreMana raises mana by amount, clamped to max. Returns the amount
// actually restored.
func (s *Stats) RestoreMana(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := s.Mana
	s.Mana += amount
	if s.Mana > s.MaxMana {
		s.Mana = s.MaxMana
	}
	return s.Mana - before
}
