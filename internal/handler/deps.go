// Package handler resolves client intents against run state. Every
// function here runs on the owning run's task goroutine; handlers mutate
// freely and queue replies on the run's event buffer.
package handler

import (
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/catalog"
	"github.com/gloomspire/server/internal/config"
	"github.com/gloomspire/server/internal/dungeon"
	"github.com/gloomspire/server/internal/oracle"
	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/scripting"
	"github.com/gloomspire/server/internal/world"
)

// Deps bundles the shared services handlers need. It implements both
// run.Builder (run creation) and run.Dispatcher (in-run intents).
type Deps struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Scripts *scripting.Engine
	Oracle  *oracle.Bridge
	Log     *zap.Logger
}

// Dispatch routes one in-run intent. Unknown types get an ERROR reply;
// handlers themselves follow the silent no-op policy for bad state and
// an explicit result message where the protocol defines one.
func (d *Deps) Dispatch(t *run.Task, c run.Client, env *proto.Envelope) {
	switch env.Type {
	case proto.CPlayerInput:
		d.handleInput(t, env)
	case proto.CSetTarget:
		d.handleSetTarget(t, env)
	case proto.CAdvanceFloor:
		d.handleAdvanceFloor(t)
	case proto.CUseItem:
		d.handleUseItem(t, env)
	case proto.CSwapEquipment:
		d.handleSwapEquipment(t, env)
	case proto.CUnequipItem:
		d.handleUnequipItem(t, env)
	case proto.CInteractVendor:
		d.handleInteractVendor(t, env)
	case proto.CPurchaseService:
		d.handlePurchaseService(t, env)
	case proto.CPickupGroundItem:
		d.handlePickupGroundItem(t, env)
	case proto.COpenChest:
		d.handleOpenChest(t, env)
	case proto.CExportSave:
		d.handleExportSave(t)
	case proto.CClaimAttestation:
		d.handleClaimAttestation(t, env)
	case proto.CPing:
		d.handlePing(t)
	default:
		t.Run.Events.Emit(proto.SError, proto.Error{Message: "unknown message type " + env.Type})
	}
}

// scaleConfig lifts the progression fallbacks into the scripting call.
func (d *Deps) scaleConfig() scripting.ScaleConfig {
	p := d.Catalog.Progression
	return scripting.ScaleConfig{
		HealthPerFloor:        p.HealthPerFloor,
		DamagePerFloor:        p.DamagePerFloor,
		PartyHealthBonus:      p.PartyHealthBonus,
		PartyDamageBonus:      p.PartyDamageBonus,
		ItemPowerHealthFactor: p.ItemPowerHealthFactor,
		ItemPowerDamageFactor: p.ItemPowerDamageFactor,
	}
}

// floorParams folds the party's current strength into generation inputs.
func (d *Deps) floorParams(w *world.Run, floor int) dungeon.Params {
	avgPower := w.AverageItemPower()
	healthMult, damageMult := d.Scripts.EnemyScale(floor, w.PartySize, avgPower, d.scaleConfig())
	return dungeon.Params{
		Seed:         w.Seed,
		Floor:        floor,
		PartySize:    w.PartySize,
		AvgItemPower: avgPower,
		HealthMult:   healthMult,
		DamageMult:   damageMult,
	}
}

// generateFloor builds one dungeon floor scaled to the run's party.
func (d *Deps) generateFloor(w *world.Run, floor int) *world.Dungeon {
	return dungeon.Generate(d.Catalog, d.floorParams(w, floor), d.Log)
}
