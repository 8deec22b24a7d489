package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/dungeon"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/system"
	"github.com/gloomspire/server/internal/world"
)

// handleOpenChest opens a chest in the current room. Mimics spring,
// everything else rolls loot; boss-room chests additionally mint an
// oracle claim.
func (d *Deps) handleOpenChest(t *run.Task, env *proto.Envelope) {
	var in proto.OpenChest
	if err := env.Bind(&in); err != nil {
		return
	}
	w := t.Run
	p := w.Player()
	room := w.CurrentRoom()
	if p == nil || !p.IsAlive || room == nil {
		return
	}

	var chest *world.Chest
	for _, c := range room.Chests {
		if c.ID == in.ChestID {
			chest = c
			break
		}
	}
	if chest == nil || chest.IsOpen {
		return
	}
	if world.Dist(p.Pos, chest.Pos) > system.ChestOpenRange {
		return
	}
	if chest.IsLocked {
		w.Events.Emit(proto.SError, proto.Error{Message: "the chest is locked"})
		return
	}
	chest.IsOpen = true

	if chest.IsMimic {
		d.springMimic(t, room, chest, p)
		return
	}

	items, gold := system.RollChestLoot(t.Ctx, chest)
	p.Gold += gold
	ev := proto.ChestOpened{ChestID: chest.ID, Gold: gold}
	for _, item := range items {
		ev.ItemIDs = append(ev.ItemIDs, item.ID)
		if !system.CollectItem(t.Ctx, p, item) {
			room.GroundItems = append(room.GroundItems, &world.GroundItem{
				Item:      item,
				Pos:       chest.Pos.Add(world.Vec2{Y: 20}),
				DroppedAt: w.Clock,
			})
		}
	}

	if room.Type == world.RoomBoss && d.Oracle != nil && d.Config.Oracle.Enabled {
		claimID, err := d.Oracle.RecordChestOpen(context.Background(),
			w.ID, p.Name, w.Floor, chest.ID, ev.ItemIDs, gold)
		if err != nil {
			d.Log.Warn("chest claim failed", zap.String("run", w.ID), zap.Error(err))
		} else {
			ev.ClaimID = claimID
		}
	}
	w.Events.Emit(proto.SChestOpened, ev)
}

// springMimic replaces the chest with a hostile mimic already locked onto
// the opener.
func (d *Deps) springMimic(t *run.Task, room *world.Room, chest *world.Chest, p *world.Player) {
	w := t.Run
	mimic := dungeon.MimicEnemy(d.Catalog, w.NextEntityID("enemy"), chest.Pos, room.ID, d.floorParams(w, w.Floor))
	mimic.TargetID = p.ID
	room.Enemies = append(room.Enemies, mimic)
	room.Cleared = false
	// No grace period; the bite is the reveal.
	w.Tracking.AggroAt[mimic.ID] = w.Clock - system.EnemyAggroDelay

	w.Events.Emit(proto.SChestOpened, proto.ChestOpened{ChestID: chest.ID, Mimic: true})
}

// handleClaimAttestation forwards an attestation for a minted claim to
// the ledger.
func (d *Deps) handleClaimAttestation(t *run.Task, env *proto.Envelope) {
	var in proto.ClaimAttestation
	if err := env.Bind(&in); err != nil {
		return
	}
	if d.Oracle == nil || !d.Config.Oracle.Enabled {
		t.Run.Events.Emit(proto.SError, proto.Error{Message: "attestations are disabled"})
		return
	}
	if err := d.Oracle.Attest(context.Background(), in.ClaimID, in.Attestation); err != nil {
		t.Run.Events.Emit(proto.SError, proto.Error{Message: err.Error()})
		return
	}
	t.Run.Events.Emit(proto.SClaimReceipt, proto.ClaimReceipt{
		ClaimID:  in.ClaimID,
		Attested: true,
	})
}
