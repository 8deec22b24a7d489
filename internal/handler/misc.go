package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/run"
	"github.com/gloomspire/server/internal/save"
)

func (d *Deps) handlePing(t *run.Task) {
	t.Run.Events.Emit(proto.SPong, proto.Pong{Time: time.Now().UnixMilli()})
}

// handleExportSave snapshots the player into a signed save document.
func (d *Deps) handleExportSave(t *run.Task) {
	p := t.Run.Player()
	if p == nil {
		return
	}
	sd := save.Export(p, t.Run.Floor)
	payload, err := sd.Marshal()
	if err != nil {
		d.Log.Error("save export failed", zap.String("run", t.Run.ID), zap.Error(err))
		t.Run.Events.Emit(proto.SError, proto.Error{Message: "export failed"})
		return
	}
	mac, err := save.Sign(payload, []byte(d.Config.Save.MACKey))
	if err != nil {
		d.Log.Error("save signing failed", zap.String("run", t.Run.ID), zap.Error(err))
		t.Run.Events.Emit(proto.SError, proto.Error{Message: "export failed"})
		return
	}
	t.Run.Events.Emit(proto.SSaveData, proto.SaveData{SaveData: sd, MAC: mac})
}
