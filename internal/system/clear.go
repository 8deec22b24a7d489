package system

import "github.com/gloomspire/server/internal/proto"

// ClearSystem flips rooms to cleared once nothing in them lives, and
// finishes the boss fight: defeated phase event, floor unlock, and the
// boss chest.
type ClearSystem struct{}

func (s *ClearSystem) Phase() Phase { return PhaseClear }

func (s *ClearSystem) Update(ctx *Context, dt float64) {
	d := ctx.Run.Dungeon
	for _, room := range d.Rooms {
		if !room.Cleared && len(room.Enemies) > 0 && room.AliveEnemyCount() == 0 {
			room.Cleared = true
		}
	}

	if d.BossDefeated {
		return
	}
	boss := d.BossRoom()
	if boss == nil {
		return
	}
	for _, e := range boss.Enemies {
		if e.IsBoss && !e.IsAlive {
			d.BossDefeated = true
			for _, chest := range boss.Chests {
				chest.IsLocked = false
			}
			ctx.Run.Events.Emit(proto.SBossPhaseChange, proto.BossPhaseChange{
				BossID: e.BossID, Phase: "defeated", RoomID: boss.ID,
			})
			return
		}
	}
}
