package dungeon

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gloomspire/server/internal/rng"
	"github.com/gloomspire/server/internal/world"
)

func TestPatrolRoutesAvoidStartAndBossRooms(t *testing.T) {
	d := &world.Dungeon{Rooms: []*world.Room{
		{ID: 0, Type: world.RoomStart, ConnectedTo: []int{1, 4}},
		{ID: 1, Type: world.RoomNormal, ConnectedTo: []int{0, 2, 3}},
		{ID: 2, Type: world.RoomBoss, ConnectedTo: []int{1}},
		{ID: 3, Type: world.RoomNormal, ConnectedTo: []int{1}},
		{ID: 4, Type: world.RoomNormal, ConnectedTo: []int{0}},
	}}

	for i := 0; i < 20; i++ {
		route := patrolRoute(d, rng.New(fmt.Sprintf("route_%d", i)), 1)
		for _, id := range route {
			assert.NotEqual(t, 0, id, "routes never cross the entrance")
			assert.NotEqual(t, 2, id, "routes never cross the boss room")
		}
	}

	// A room whose only corridor leads to the entrance gets no route.
	route := patrolRoute(d, rng.New("cornered"), 4)
	assert.Equal(t, []int{4}, route)
}
