// internal/handlers/game_server.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jason-s-yu/thulla/internal/auth"
	"github.com/jason-s-yu/thulla/internal/broadcast"
	"github.com/jason-s-yu/thulla/internal/config"
	"github.com/jason-s-yu/thulla/internal/game"
	"github.com/jason-s-yu/thulla/internal/middleware"
	"github.com/sirupsen/logrus"
)

// EventSink receives a copy of every published batch, after the broadcaster.
// Record must not block.
type EventSink interface {
	Record(events ...game.Event)
}

// GameServer owns the process-wide game, its broadcaster, and the admin
// token issuer. Every websocket session and HTTP handler shares it.
type GameServer struct {
	Store       *game.Store
	Broadcaster *broadcast.Broadcaster[game.Event]
	Tokens      *auth.TokenIssuer

	cfg    config.Config
	logger *logrus.Logger
	sinks  []EventSink

	mu   sync.Mutex
	live int
}

// NewGameServer builds the shared game and wires its publisher to the
// broadcaster followed by each sink.
func NewGameServer(logger *logrus.Logger, cfg config.Config, sinks ...EventSink) (*GameServer, error) {
	tokens, err := auth.NewTokenIssuer(cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("admin tokens: %w", err)
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.MailboxSize < 1 {
		cfg.MailboxSize = 64
	}
	gs := &GameServer{
		Broadcaster: broadcast.New[game.Event](),
		Tokens:      tokens,
		cfg:         cfg,
		logger:      logger,
		sinks:       sinks,
	}
	gs.Store = game.NewStore(game.NewGame(), game.PublisherFunc(gs.publish), logger.WithField("component", "store"))
	return gs, nil
}

func (gs *GameServer) publish(events ...game.Event) {
	if gs.logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, ev := range events {
			gs.logger.WithField("event", ev.Type).Debug("publish")
		}
	}
	gs.Broadcaster.Publish(events...)
	for _, s := range gs.sinks {
		s.Record(events...)
	}
}

// Routes mounts every endpoint behind the request logger.
func (gs *GameServer) Routes() http.Handler {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(gs.logger)

	mux.Handle("/ws", logged(GameWSHandler(gs.logger, gs)))
	mux.Handle("/healthz", logged(HealthHandler(gs)))
	mux.Handle("/admin/login", logged(AdminLoginHandler(gs)))
	mux.Handle("/admin/state", logged(gs.requireAdmin(AdminStateHandler(gs))))
	mux.Handle("/admin/reset", logged(gs.requireAdmin(AdminResetHandler(gs))))
	return mux
}

// Close ends every session's event stream. Sessions then leave their seats.
func (gs *GameServer) Close() {
	gs.Broadcaster.Close()
}

// Shutdown closes the server and waits until every seated session has left,
// so the events their departures publish reach the sinks.
func (gs *GameServer) Shutdown(ctx context.Context) error {
	gs.Close()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if gs.liveSessions() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%d sessions still open: %w", gs.liveSessions(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// track counts a seated session until the returned func is called.
func (gs *GameServer) track() (done func()) {
	gs.mu.Lock()
	gs.live++
	gs.mu.Unlock()
	return func() {
		gs.mu.Lock()
		gs.live--
		gs.mu.Unlock()
	}
}

func (gs *GameServer) liveSessions() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.live
}
