package dungeon

import (
	"fmt"
	"math"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/rng"
	"github.com/gloomspire/server/internal/world"
)

// variantWeightsFor returns the formation roll weights for a floor. Harder
// formations creep in as floors deepen.
func variantWeightsFor(floor int) ([]string, []float64) {
	variants := []string{
		world.VariantStandard, world.VariantArena, world.VariantGuardian,
		world.VariantSwarm, world.VariantAmbush, world.VariantGauntlet,
	}
	weights := []float64{
		5.0,
		1.0 + 0.2*float64(floor),
		1.0 + 0.15*float64(floor),
		1.0 + 0.25*float64(floor),
		0.5 + 0.2*float64(floor),
		0.5 + 0.15*float64(floor),
	}
	return variants, weights
}

// assignVariants rolls a formation variant and an environmental modifier
// for every combat room. Boss rooms are always arenas; the start room stays
// untouched.
func assignVariants(d *world.Dungeon, r *rng.Stream, theme *catalog.ThemeInfo, floor int) {
	variants, weights := variantWeightsFor(floor)
	for _, room := range d.Rooms {
		switch room.Type {
		case world.RoomStart:
			continue
		case world.RoomBoss:
			room.Variant = world.VariantArena
		default:
			room.Variant = variants[rng.WeightedPick(r, weights)]
		}
		room.Modifier = rollModifier(r, theme)
	}
}

// rollModifier picks a room modifier from the theme's weight table.
// "none" (or an empty table) leaves the room unmodified.
func rollModifier(r *rng.Stream, theme *catalog.ThemeInfo) string {
	if len(theme.ModifierWeights) == 0 {
		return ""
	}
	keys := []string{"none", catalog.ModifierBurning, catalog.ModifierCursed, catalog.ModifierBlessed, catalog.ModifierDark}
	weights := make([]float64, len(keys))
	for i, k := range keys {
		weights[i] = theme.ModifierWeights[k]
	}
	picked := keys[rng.WeightedPick(r, weights)]
	if picked == "none" {
		return ""
	}
	return picked
}

// populateRooms spawns enemies into every combat room following the room
// variant's formation, and the boss into the boss room.
func populateRooms(d *world.Dungeon, r *rng.Stream, ct *catalog.Catalog, theme *catalog.ThemeInfo, p Params) {
	for _, room := range d.Rooms {
		switch room.Type {
		case world.RoomStart:
			room.Cleared = true
		case world.RoomBoss:
			spawnBoss(d, r, ct, theme, room, p)
		default:
			spawnFormation(r, ct, theme, room, p)
		}
	}
}

// enemyCountFor scales the per-room enemy count range with the floor.
func enemyCountFor(r *rng.Stream, floor int, variant string) int {
	lo := 2 + floor/3
	hi := 4 + floor/2
	if variant == world.VariantSwarm {
		lo += 2
		hi += 3
	}
	if hi > 9 {
		hi = 9
	}
	if lo > hi {
		lo = hi
	}
	return r.IntBetween(lo, hi)
}

func spawnFormation(r *rng.Stream, ct *catalog.Catalog, theme *catalog.ThemeInfo, room *world.Room, p Params) {
	count := enemyCountFor(r, p.Floor, room.Variant)
	positions := formationPositions(r, room, count)

	for i, pos := range positions {
		templateID := rng.Pick(r, theme.Enemies)
		e := newEnemy(ct, templateID, fmt.Sprintf("enemy_%d_%d_%d", p.Floor, room.ID, i), pos, room.ID, p)
		if e == nil {
			continue
		}
		if room.Variant == world.VariantAmbush {
			e.IsHidden = true
		}
		if p.Floor >= 3 && r.Chance(ct.Progression.EliteChance) {
			makeElite(e, ct.Progression)
		}
		room.Enemies = append(room.Enemies, e)
	}

	if room.Type == world.RoomRare && len(room.Enemies) > 0 {
		makeRare(room.Enemies[0], ct.Progression)
	}
}

// formationPositions lays out count spawn points per the room's variant.
func formationPositions(r *rng.Stream, room *world.Room, count int) []world.Vec2 {
	c := room.Center()
	pad := 70.0
	out := make([]world.Vec2, 0, count)

	switch room.Variant {
	case world.VariantArena:
		// perimeter ring
		radius := math.Min(room.W, room.H)/2 - pad
		for i := 0; i < count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(count)
			out = append(out, world.Vec2{X: c.X + radius*math.Cos(angle), Y: c.Y + radius*math.Sin(angle)})
		}
	case world.VariantGuardian:
		// one in the center, the rest ringed around it
		out = append(out, c)
		radius := math.Min(room.W, room.H) / 4
		for i := 1; i < count; i++ {
			angle := 2 * math.Pi * float64(i-1) / float64(count-1)
			out = append(out, world.Vec2{X: c.X + radius*math.Cos(angle), Y: c.Y + radius*math.Sin(angle)})
		}
	case world.VariantSwarm:
		// tight cluster around a random interior point
		focus := world.Vec2{
			X: r.FloatBetween(room.X+room.W/4, room.X+3*room.W/4),
			Y: r.FloatBetween(room.Y+room.H/4, room.Y+3*room.H/4),
		}
		for i := 0; i < count; i++ {
			out = append(out, world.Vec2{
				X: focus.X + r.FloatBetween(-60, 60),
				Y: focus.Y + r.FloatBetween(-60, 60),
			})
		}
	case world.VariantAmbush:
		// pressed against the walls
		for i := 0; i < count; i++ {
			var pos world.Vec2
			switch i % 4 {
			case 0:
				pos = world.Vec2{X: r.FloatBetween(room.X+pad, room.X+room.W-pad), Y: room.Y + pad/2}
			case 1:
				pos = world.Vec2{X: r.FloatBetween(room.X+pad, room.X+room.W-pad), Y: room.Y + room.H - pad/2}
			case 2:
				pos = world.Vec2{X: room.X + pad/2, Y: r.FloatBetween(room.Y+pad, room.Y+room.H-pad)}
			default:
				pos = world.Vec2{X: room.X + room.W - pad/2, Y: r.FloatBetween(room.Y+pad, room.Y+room.H-pad)}
			}
			out = append(out, pos)
		}
	case world.VariantGauntlet:
		// spread along the room's longest axis
		for i := 0; i < count; i++ {
			t := (float64(i) + 0.5) / float64(count)
			if room.W >= room.H {
				out = append(out, world.Vec2{X: room.X + pad + t*(room.W-2*pad), Y: c.Y + r.FloatBetween(-40, 40)})
			} else {
				out = append(out, world.Vec2{X: c.X + r.FloatBetween(-40, 40), Y: room.Y + pad + t*(room.H-2*pad)})
			}
		}
	default:
		for i := 0; i < count; i++ {
			out = append(out, world.Vec2{
				X: r.FloatBetween(room.X+pad, room.X+room.W-pad),
				Y: r.FloatBetween(room.Y+pad, room.Y+room.H-pad),
			})
		}
	}
	return out
}

// newEnemy mints an enemy from a template, applying the floor/party/item
// scaling multipliers.
func newEnemy(ct *catalog.Catalog, templateID, id string, pos world.Vec2, roomID int, p Params) *world.Enemy {
	tmpl := ct.Enemies.Get(templateID)
	if tmpl == nil {
		return nil
	}
	health := int(math.Round(float64(tmpl.Health) * p.HealthMult))
	damage := int(math.Round(float64(tmpl.Damage) * p.DamageMult))
	return &world.Enemy{
		ID:         id,
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Type:       tmpl.Type,
		Pos:        pos,
		Stats: world.Stats{
			Health: health, MaxHealth: health,
			AttackPower: damage,
			Armor:       tmpl.Armor,
			Resist:      tmpl.Resist,
			Speed:       tmpl.Speed,
		},
		IsAlive:        true,
		SpawnPos:       pos,
		OriginalRoomID: roomID,
		CurrentRoomID:  roomID,
		AttackRange:    tmpl.AttackRange,
		AttackSpeed:    tmpl.AttackSpeed,
		XP:             tmpl.XP,
		GoldMin:        tmpl.GoldMin,
		GoldMax:        tmpl.GoldMax,
	}
}

func makeElite(e *world.Enemy, prog *catalog.Progression) {
	e.IsElite = true
	e.Name = "Elite " + e.Name
	e.Stats.MaxHealth = int(math.Round(float64(e.Stats.MaxHealth) * prog.EliteHealthMult))
	e.Stats.Health = e.Stats.MaxHealth
	e.Stats.AttackPower = int(math.Round(float64(e.Stats.AttackPower) * prog.EliteDamageMult))
	e.XP = e.XP * 2
}

func makeRare(e *world.Enemy, prog *catalog.Progression) {
	e.IsRare = true
	e.Name = "Rare " + e.Name
	e.Stats.MaxHealth = int(math.Round(float64(e.Stats.MaxHealth) * prog.RareHealthMult))
	e.Stats.Health = e.Stats.MaxHealth
	e.Stats.AttackPower = int(math.Round(float64(e.Stats.AttackPower) * prog.RareDamageMult))
	e.XP = e.XP * 3
}

// spawnBoss places the theme's boss in the center of the boss room.
func spawnBoss(d *world.Dungeon, r *rng.Stream, ct *catalog.Catalog, theme *catalog.ThemeInfo, room *world.Room, p Params) {
	if len(theme.Bosses) == 0 {
		return
	}
	bossID := rng.Pick(r, theme.Bosses)
	tmpl := ct.Bosses.Get(bossID)
	if tmpl == nil {
		return
	}
	health := int(math.Round(float64(tmpl.Health) * p.HealthMult))
	damage := int(math.Round(float64(tmpl.Damage) * p.DamageMult))
	boss := &world.Enemy{
		ID:         fmt.Sprintf("boss_%d_%s", p.Floor, bossID),
		TemplateID: bossID,
		Name:       tmpl.Name,
		Type:       catalog.EnemyMelee,
		Pos:        room.Center(),
		Stats: world.Stats{
			Health: health, MaxHealth: health,
			AttackPower: damage,
			Armor:       tmpl.Armor,
			Resist:      tmpl.Resist,
			Speed:       tmpl.Speed,
		},
		IsAlive:        true,
		IsBoss:         true,
		BossID:         bossID,
		SpawnPos:       room.Center(),
		OriginalRoomID: room.ID,
		CurrentRoomID:  room.ID,
		AttackRange:    tmpl.AttackRange,
		AttackSpeed:    tmpl.AttackSpeed,
		XP:             tmpl.XP,
		GoldMin:        tmpl.GoldMin,
		GoldMax:        tmpl.GoldMax,
	}
	room.Enemies = append(room.Enemies, boss)
}

// MimicEnemy mints the enemy a mimic chest turns into when opened.
func MimicEnemy(ct *catalog.Catalog, id string, pos world.Vec2, roomID int, p Params) *world.Enemy {
	return newEnemy(ct, "mimic", id, pos, roomID, p)
}
