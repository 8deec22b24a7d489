package dungeon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/world"
)

func loadTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	ct, err := catalog.LoadAll("../../data", zap.NewNop())
	require.NoError(t, err)
	return ct
}

func testParams(seed string, floor int) Params {
	return Params{
		Seed:         seed,
		Floor:        floor,
		PartySize:    1,
		AvgItemPower: 0,
		HealthMult:   1.0,
		DamageMult:   1.0,
	}
}

func TestGenerateIsDeterministicPerSeedAndFloor(t *testing.T) {
	ct := loadTestCatalog(t)

	a := Generate(ct, testParams("alpha", 3), zap.NewNop())
	b := Generate(ct, testParams("alpha", 3), zap.NewNop())

	aj, err := json.Marshal(a)
	require.NoError(t, err)
	bj, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(aj), string(bj))

	c := Generate(ct, testParams("beta", 3), zap.NewNop())
	cj, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotEqual(t, string(aj), string(cj), "seed must perturb the layout")
}

func TestGenerateLayoutInvariants(t *testing.T) {
	ct := loadTestCatalog(t)

	for _, seed := range []string{"one", "two", "three", "four"} {
		for _, floor := range []int{1, 4, 9} {
			d := Generate(ct, testParams(seed, floor), zap.NewNop())

			assert.GreaterOrEqual(t, len(d.Rooms), 2)
			assert.LessOrEqual(t, len(d.Rooms), maxRooms)

			// No two rooms overlap.
			for i, a := range d.Rooms {
				for _, b := range d.Rooms[i+1:] {
					assert.False(t, overlaps(a, b), "seed %s floor %d: rooms %d and %d overlap", seed, floor, a.ID, b.ID)
				}
			}

			start := d.StartRoom()
			require.NotNil(t, start)
			assert.True(t, start.Cleared, "the entrance never fights")
			assert.Empty(t, start.Enemies)
			assert.Equal(t, start.ID, d.CurrentRoomID)

			boss := d.BossRoom()
			require.NotNil(t, boss)
			assert.True(t, reachable(d, start.ID, boss.ID), "seed %s floor %d: boss cut off", seed, floor)
			assert.Equal(t, world.VariantArena, boss.Variant)

			var bossEnemy *world.Enemy
			for _, e := range boss.Enemies {
				if e.IsBoss {
					bossEnemy = e
				}
			}
			require.NotNil(t, bossEnemy, "seed %s floor %d: no boss spawned", seed, floor)
			assert.NotEmpty(t, bossEnemy.BossID)

			// Connectivity is symmetric.
			for _, room := range d.Rooms {
				for _, other := range room.ConnectedTo {
					require.NotNil(t, d.Room(other))
					assert.True(t, d.Room(other).ConnectedWith(room.ID))
				}
			}
		}
	}
}

func TestGenerateStartRoomHoldsAllThreeVendors(t *testing.T) {
	ct := loadTestCatalog(t)
	d := Generate(ct, testParams("vendors", 1), zap.NewNop())

	start := d.StartRoom()
	require.NotNil(t, start.Vendor)
	require.NotNil(t, start.ShopVendor)
	require.NotNil(t, start.CryptoVendor)
	assert.Equal(t, world.VendorTrainer, start.Vendor.Type)
	assert.Equal(t, world.VendorShop, start.ShopVendor.Type)
	assert.Equal(t, world.VendorCrypto, start.CryptoVendor.Type)

	for _, v := range []*world.Vendor{start.Vendor, start.ShopVendor, start.CryptoVendor} {
		assert.True(t, start.Contains(v.Pos), "vendor %s outside the start room", v.ID)
	}
}

func TestGenerateCombatRoomsArePopulated(t *testing.T) {
	ct := loadTestCatalog(t)
	d := Generate(ct, testParams("spawns", 5), zap.NewNop())

	for _, room := range d.Rooms {
		if room.Type == world.RoomStart {
			continue
		}
		assert.NotEmpty(t, room.Enemies, "room %d has nothing to fight", room.ID)
		for _, e := range room.Enemies {
			assert.True(t, e.IsAlive)
			assert.Equal(t, e.Stats.MaxHealth, e.Stats.Health)
			assert.Equal(t, room.ID, e.CurrentRoomID)
			if !e.IsPatrolling {
				assert.True(t, room.Contains(e.Pos) || e.IsBoss, "enemy %s spawned outside room %d", e.ID, room.ID)
			}
		}
	}
}

func TestGenerateScalesEnemyStats(t *testing.T) {
	ct := loadTestCatalog(t)
	base := Generate(ct, testParams("scaling", 2), zap.NewNop())

	scaled := testParams("scaling", 2)
	scaled.HealthMult = 2.0
	scaled.DamageMult = 3.0
	buffed := Generate(ct, scaled, zap.NewNop())

	// Same seed, same layout; only the stat blocks differ. Rare and elite
	// promotions round on top of the scaled value, so compare plain spawns.
	for i, room := range base.Rooms {
		for j, e := range room.Enemies {
			if e.IsRare || e.IsElite {
				continue
			}
			be := buffed.Rooms[i].Enemies[j]
			assert.Equal(t, e.TemplateID, be.TemplateID)
			assert.Equal(t, e.Stats.MaxHealth*2, be.Stats.MaxHealth)
			assert.Equal(t, e.Stats.AttackPower*3, be.Stats.AttackPower)
		}
	}
}

func TestPatrollersGetWalkableWaypointChains(t *testing.T) {
	ct := loadTestCatalog(t)

	found := false
	for _, seed := range []string{"p1", "p2", "p3", "p4", "p5"} {
		d := Generate(ct, testParams(seed, 4), zap.NewNop())
		for _, room := range d.Rooms {
			for _, e := range room.Enemies {
				if !e.IsPatrolling {
					continue
				}
				found = true
				require.GreaterOrEqual(t, len(e.PatrolWaypoints), 3, "a two-room route has at least center, midpoint, center")
				for _, wp := range e.PatrolWaypoints {
					assert.True(t, d.Walkable(wp), "waypoint off the walkable grid")
				}
			}
		}
	}
	assert.True(t, found, "floor 4 should produce at least one patroller across five seeds")
}

func TestNoPatrolsOnTheFirstFloor(t *testing.T) {
	ct := loadTestCatalog(t)
	d := Generate(ct, testParams("calm", 1), zap.NewNop())

	for _, room := range d.Rooms {
		for _, e := range room.Enemies {
			assert.False(t, e.IsPatrolling)
		}
	}
}

func TestBossChestStartsLocked(t *testing.T) {
	ct := loadTestCatalog(t)

	for _, seed := range []string{"c1", "c2", "c3"} {
		d := Generate(ct, testParams(seed, 3), zap.NewNop())
		boss := d.BossRoom()
		require.NotEmpty(t, boss.Chests, "seed %s: boss room has no chest", seed)
		for _, chest := range boss.Chests {
			assert.True(t, chest.IsLocked)
			assert.False(t, chest.IsOpen)
		}
	}
}

func TestMimicEnemyMintsFromTemplate(t *testing.T) {
	ct := loadTestCatalog(t)
	p := testParams("mimic", 3)
	p.HealthMult = 2.0

	e := MimicEnemy(ct, "enemy_42", world.Vec2{X: 100, Y: 100}, 2, p)
	require.NotNil(t, e)
	assert.Equal(t, "enemy_42", e.ID)
	assert.Equal(t, "mimic", e.TemplateID)
	assert.Equal(t, 2, e.CurrentRoomID)
	assert.True(t, e.IsAlive)

	tmpl := ct.Enemies.Get("mimic")
	require.NotNil(t, tmpl)
	assert.Equal(t, tmpl.Health*2, e.Stats.MaxHealth)
}
