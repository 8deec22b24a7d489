package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/config"
)

// pingInterval must be shorter than the read deadline so a healthy idle
// connection keeps renewing it.
const pingInterval = 25 * time.Second

// Session is one websocket connection. It implements run.Client: the run
// task enqueues outbound frames, the pumps own the socket.
type Session struct {
	id   string
	conn *websocket.Conn
	cfg  *config.Config

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second message rate limit, readPump only.
	msgCount   int
	msgResetAt int64

	log *zap.Logger
}

func newSession(id string, conn *websocket.Conn, cfg *config.Config, log *zap.Logger) *Session {
	return &Session{
		id:   id,
		conn: conn,
		cfg:  cfg,
		out:  make(chan []byte, cfg.Network.OutQueueSize),
		done: make(chan struct{}),
		log:  log.With(zap.String("client", id)),
	}
}

func (s *Session) ClientID() string { return s.id }

// Enqueue stages one outbound frame. Non-blocking; false means the
// client's queue is full.
func (s *Session) Enqueue(msg []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.out <- msg:
		return true
	default:
		return false
	}
}

// Kick closes the connection. The out channel is never closed: Enqueue
// may race a disconnect, and a send on a closed channel would panic the
// run task. writePump watches done instead.
func (s *Session) Kick() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.conn.Close()
	})
}

// readPump owns reads: deadline renewal via pongs, size and rate limits,
// and the hand-off of each frame to the registry.
func (s *Session) readPump(handler MessageHandler) {
	defer func() {
		handler.DetachClient(s)
		s.Kick()
		s.log.Info("client disconnected")
	}()

	s.conn.SetReadLimit(s.cfg.Network.ReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.Network.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.Network.ReadTimeout))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.Network.ReadTimeout))

		if s.overRateLimit() {
			s.log.Warn("message rate exceeded, dropping")
			continue
		}
		handler.HandleMessage(s, raw)
	}
}

// overRateLimit counts messages per wall-clock second against the
// configured ceiling.
func (s *Session) overRateLimit() bool {
	if !s.cfg.RateLimit.Enabled || s.cfg.RateLimit.MessagesPerSecond <= 0 {
		return false
	}
	now := time.Now().Unix()
	if now != s.msgResetAt {
		s.msgCount = 0
		s.msgResetAt = now
	}
	s.msgCount++
	return s.msgCount > s.cfg.RateLimit.MessagesPerSecond
}

// writePump owns writes: queued frames and keep-alive pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.Network.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.Network.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
