package handler

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/save"
	"github.com/gloomspire/server/internal/system"
	"github.com/gloomspire/server/internal/world"
)

// BuildRun creates the initial world for CREATE_RUN and
// CREATE_RUN_FROM_SAVE. Errors are client-facing.
func (d *Deps) BuildRun(env *proto.Envelope, clientID string) (*world.Run, error) {
	switch env.Type {
	case proto.CCreateRun:
		return d.buildNewRun(env)
	case proto.CCreateRunFromSave:
		return d.buildRunFromSave(env)
	default:
		return nil, fmt.Errorf("cannot create run from %s", env.Type)
	}
}

func (d *Deps) buildNewRun(env *proto.Envelope) (*world.Run, error) {
	var in proto.CreateRun
	if err := env.Bind(&in); err != nil {
		return nil, err
	}
	name := norm.NFKC.String(in.PlayerName)
	if name == "" || len(name) > save.MaxNameLength {
		return nil, errors.New("name must be 1-30 characters")
	}
	ci := d.Catalog.Classes.Get(in.ClassID)
	if ci == nil {
		return nil, fmt.Errorf("unknown class %q", in.ClassID)
	}

	w := world.NewRun(uuid.NewString(), uuid.NewString())
	p := &world.Player{
		ID:        w.NextEntityID("player"),
		Name:      name,
		ClassID:   ci.ID,
		Level:     1,
		Lives:     d.Config.Game.StartingLives,
		Stats:     world.BaseStatsFor(d.Catalog, ci.ID, 1),
		Equipment: make(map[string]*world.Item),
		IsAlive:   true,
	}
	for _, id := range ci.StartingAbilities {
		if d.Catalog.Abilities.Get(id) != nil {
			p.Abilities = append(p.Abilities, &world.PlayerAbility{ID: id, Rank: 1})
		}
	}
	w.Players = append(w.Players, p)

	d.startFloor(w, 1)
	w.Events.Emit(proto.SRunCreated, proto.RunCreated{
		RunID:    w.ID,
		PlayerID: p.ID,
		Seed:     w.Seed,
		Floor:    w.Floor,
	})
	return w, nil
}

func (d *Deps) buildRunFromSave(env *proto.Envelope) (*world.Run, error) {
	var in proto.CreateRunFromSave
	if err := env.Bind(&in); err != nil {
		return nil, err
	}
	if len(in.SaveData) == 0 {
		return nil, errors.New("save data is required")
	}

	key := []byte(d.Config.Save.MACKey)
	switch {
	case in.MAC == "":
		if !d.Config.Save.AllowUnsigned {
			return nil, errors.New("save is unsigned")
		}
	case len(key) == 0:
		return nil, errors.New("server does not accept signed saves")
	case !save.Verify(in.SaveData, key, in.MAC):
		return nil, errors.New("save signature rejected")
	}

	sd, err := save.Parse(in.SaveData)
	if err != nil {
		return nil, err
	}
	if err := sd.Validate(d.Catalog); err != nil {
		return nil, err
	}

	w := world.NewRun(uuid.NewString(), uuid.NewString())
	p := &world.Player{
		ID:        w.NextEntityID("player"),
		Name:      sd.Name,
		ClassID:   sd.ClassID,
		Level:     sd.Level,
		XP:        sd.XP,
		Gold:      sd.Gold,
		Lives:     sd.Lives,
		Equipment: make(map[string]*world.Item),
		IsAlive:   true,
	}
	for _, sa := range sd.Abilities {
		p.Abilities = append(p.Abilities, &world.PlayerAbility{ID: sa.ID, Rank: sa.Rank})
	}
	prog := d.Catalog.Progression
	for slot, si := range sd.Equipment {
		p.Equipment[slot] = system.MintItem(w, d.Catalog.Items.Get(si.TemplateID), si.Rarity, prog)
	}
	for _, si := range sd.Backpack {
		p.Backpack = append(p.Backpack, system.MintItem(w, d.Catalog.Items.Get(si.TemplateID), si.Rarity, prog))
	}
	p.RecomputeStats(d.Catalog)
	p.Stats.Health = p.Stats.MaxHealth
	p.Stats.Mana = p.Stats.MaxMana
	w.Players = append(w.Players, p)

	d.startFloor(w, sd.Floor)
	w.Events.Emit(proto.SRunCreated, proto.RunCreated{
		RunID:    w.ID,
		PlayerID: p.ID,
		Seed:     w.Seed,
		Floor:    w.Floor,
	})
	return w, nil
}

// startFloor generates a floor, installs it and places the party in the
// start room.
func (d *Deps) startFloor(w *world.Run, floor int) {
	dg := d.generateFloor(w, floor)
	w.ReplaceDungeon(dg)
	start := dg.StartRoom()
	for i, p := range w.Players {
		p.Pos = start.Center().Add(world.Vec2{X: float64(i) * 40})
	}
	for _, pet := range w.Pets {
		if owner := w.PlayerByID(pet.OwnerID); owner != nil {
			pet.Pos = owner.Pos.Add(world.Vec2{X: -30, Y: -30})
		}
	}
}
