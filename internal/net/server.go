// Package net is the websocket transport: it upgrades connections, runs
// the read/write pumps, and forwards decoded frames to the run registry.
// Game state is never touched here.
package net

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gloomspire/server/internal/config"
	"github.com/gloomspire/server/internal/run"
)

// MessageHandler consumes raw client frames. Satisfied by run.Registry.
type MessageHandler interface {
	HandleMessage(c run.Client, raw []byte)
	DetachClient(c run.Client)
}

// Server is the HTTP listener hosting the websocket endpoint.
type Server struct {
	cfg      *config.Config
	handler  MessageHandler
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	log      *zap.Logger
}

func NewServer(cfg *config.Config, handler MessageHandler, log *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The core is origin-agnostic; deployments front this with
			// their own origin policy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Server.WSPath, s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.httpSrv = &http.Server{
		Addr:              cfg.Server.BindAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Server.BindAddr), zap.String("path", s.cfg.Server.WSPath))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes the listener and drains in-flight upgrades.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	sess := newSession(uuid.NewString(), conn, s.cfg, s.log)
	s.log.Info("client connected",
		zap.String("client", sess.ClientID()),
		zap.String("ip", conn.RemoteAddr().String()))

	go sess.writePump()
	go sess.readPump(s.handler)
}
