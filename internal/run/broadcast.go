package run

import (
	"encoding/json"

	"github.com/gloomspire/server/internal/proto"
	"github.com/gloomspire/server/internal/world"
)

// Broadcaster sends queued events plus state to the run's client. State
// goes out as section deltas against the last marshaled copy; the first
// flush and every floor change send the full snapshot instead.
type Broadcaster struct {
	cache     map[string]json.RawMessage
	lastFloor int
	needFull  bool
}

// NewBroadcaster starts in full-sync mode.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		cache:    make(map[string]json.RawMessage),
		needFull: true,
	}
}

// stateMeta is the small always-compared header section.
type stateMeta struct {
	Floor         int     `json:"floor"`
	CurrentRoomID int     `json:"currentRoomId"`
	BossDefeated  bool    `json:"bossDefeated"`
	PartySize     int     `json:"partySize"`
	Clock         float64 `json:"clock"`
}

// Flush drains the run's event buffer and sends the state update.
func (b *Broadcaster) Flush(t *Task) {
	for _, ev := range t.Run.Events.Drain() {
		b.send(t, ev.Type, ev.Data)
	}

	if t.Run.Floor != b.lastFloor {
		b.lastFloor = t.Run.Floor
		b.needFull = true
	}

	if b.needFull {
		b.needFull = false
		b.cache = make(map[string]json.RawMessage)
		b.refreshCache(t.Run)
		b.send(t, proto.SStateUpdate, t.Run)
		return
	}

	delta := make(map[string]json.RawMessage)
	for name, raw := range b.sections(t.Run) {
		if prev, ok := b.cache[name]; !ok || string(prev) != string(raw) {
			b.cache[name] = raw
			delta[name] = raw
		}
	}
	if len(delta) > 0 {
		b.send(t, proto.SDeltaUpdate, delta)
	}
}

// ForceFull makes the next flush a full snapshot. Used on reconnect.
func (b *Broadcaster) ForceFull() { b.needFull = true }

// sections marshals each independently-diffed slice of run state.
func (b *Broadcaster) sections(r *world.Run) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, 5)
	put := func(name string, v any) {
		if raw, err := json.Marshal(v); err == nil {
			out[name] = raw
		}
	}
	put("players", r.Players)
	put("pets", r.Pets)
	put("groundEffects", r.GroundEffects)
	if room := r.CurrentRoom(); room != nil {
		put("room", room)
	}
	put("meta", stateMeta{
		Floor:         r.Floor,
		CurrentRoomID: r.Dungeon.CurrentRoomID,
		BossDefeated:  r.Dungeon.BossDefeated,
		PartySize:     r.PartySize,
		Clock:         r.Clock,
	})
	return out
}

func (b *Broadcaster) refreshCache(r *world.Run) {
	for name, raw := range b.sections(r) {
		b.cache[name] = raw
	}
}

// send encodes and enqueues one message. A client that cannot keep up is
// kicked and the run stops with it.
func (b *Broadcaster) send(t *Task, msgType string, data any) {
	out, err := proto.Encode(msgType, data)
	if err != nil {
		t.log.Warn("encode failed: " + msgType)
		return
	}
	if !t.client.Enqueue(out) {
		t.log.Warn("client send queue full, kicking")
		t.client.Kick()
		t.Stop()
	}
}
