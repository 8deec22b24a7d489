package system

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/scripting"
	"github.com/gloomspire/server/internal/world"
)

// testContext builds a context over the shipped catalog, the built-in
// formula fallbacks, and a hand-laid two-room dungeon: a start room at
// the origin and a normal room directly east, corridor-connected.
func testContext(t *testing.T) *Context {
	t.Helper()
	ct, err := catalog.LoadAll("../../data", zap.NewNop())
	require.NoError(t, err)
	scripts, err := scripting.NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(scripts.Close)

	start := &world.Room{ID: 0, X: 0, Y: 0, W: 600, H: 600, Type: world.RoomStart, ConnectedTo: []int{1}}
	east := &world.Room{ID: 1, X: 700, Y: 0, W: 600, H: 600, Type: world.RoomNormal, ConnectedTo: []int{0}}

	w := world.NewRun("run_test", "seed_test")
	w.Dungeon = &world.Dungeon{
		Floor:         1,
		Theme:         "crypt",
		ThemeMods:     world.ThemeMods{MovementModifier: 1},
		Rooms:         []*world.Room{start, east},
		CurrentRoomID: 0,
	}
	return NewContext(w, ct, scripts, zap.NewNop())
}

// addPlayer spawns a class-built level 1 player in the start room. Crit
// is zeroed so damage assertions stay exact.
func addPlayer(ctx *Context, classID string) *world.Player {
	ci := ctx.Catalog.Classes.Get(classID)
	p := &world.Player{
		ID:        ctx.Run.NextEntityID("player"),
		Name:      "Tester",
		ClassID:   classID,
		Pos:       ctx.Run.Dungeon.Rooms[0].Center(),
		Stats:     world.BaseStatsFor(ctx.Catalog, classID, 1),
		Equipment: make(map[string]*world.Item),
		Level:     1,
		Lives:     3,
		IsAlive:   true,
	}
	p.Stats.Crit = 0
	for _, id := range ci.StartingAbilities {
		p.Abilities = append(p.Abilities, &world.PlayerAbility{ID: id, Rank: 1})
	}
	ctx.Run.Players = append(ctx.Run.Players, p)
	return p
}

// addEnemy spawns a plain melee enemy into the given room.
func addEnemy(ctx *Context, roomID, health int) *world.Enemy {
	room := ctx.Run.Dungeon.Room(roomID)
	e := &world.Enemy{
		ID:             ctx.Run.NextEntityID("enemy"),
		TemplateID:     "skeleton_warrior",
		Name:           "Skeleton Warrior",
		Type:           catalog.EnemyMelee,
		Pos:            room.Center(),
		SpawnPos:       room.Center(),
		OriginalRoomID: roomID,
		CurrentRoomID:  roomID,
		Stats:          world.Stats{Health: health, MaxHealth: health, AttackPower: 8, Speed: 150},
		AttackRange:    50,
		AttackSpeed:    1.5,
		XP:             50,
		GoldMin:        7,
		GoldMax:        7,
		IsAlive:        true,
	}
	room.Enemies = append(room.Enemies, e)
	return e
}

// drainEvents copies out the buffered events; the buffer reuses its
// backing slice across drains.
func drainEvents(ctx *Context) []world.Event {
	return append([]world.Event(nil), ctx.Run.Events.Drain()...)
}
