// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/thulla/internal/game"
	"github.com/jason-s-yu/thulla/internal/middleware"
	"github.com/sirupsen/logrus"
)

// GameWSHandler upgrades the connection, seats the player in the lowest free
// seat and serves the session until either side goes away. The seat is
// always released on exit; leaving mid-round aborts the round.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: gs.cfg.OriginPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.CloseNow()

		// Subscribe before joining so this session sees its own PlayerAdded.
		sub := gs.Broadcaster.Subscribe(gs.cfg.SubscriberBuffer)
		defer sub.Close()

		// Counted before the seat exists so Shutdown cannot miss it.
		untrack := gs.track()

		seat, err := gs.Store.Join()
		if err != nil {
			untrack()
			reason := "game full"
			if errors.Is(err, game.ErrNotAccepting) {
				reason = "round in progress"
			}
			logger.WithField("remote", r.RemoteAddr).Infof("rejecting connection: %s", reason)
			c.Close(GameFullError, reason)
			return
		}

		connID := uuid.New()
		entry := logger.WithFields(logrus.Fields{
			"conn": connID,
			"seat": seat,
		})
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, uint8(seat))

		s := &session{
			id:           connID,
			seat:         seat,
			conn:         c,
			store:        gs.Store,
			sub:          sub,
			mailbox:      make(chan interface{}, gs.cfg.MailboxSize),
			writeTimeout: gs.cfg.WriteTimeout,
			log:          entry,
		}
		s.mailbox <- newSeatMessage(seat)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		runErr := s.run(ctx)

		left := gs.Store.Leave(seat)
		untrack()
		entry.WithField("events", len(left)).Debug("seat released")

		switch status := websocket.CloseStatus(runErr); {
		case errors.Is(runErr, errServerClosing):
			c.Close(websocket.StatusGoingAway, "server shutting down")
			runErr = nil
		case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
			runErr = nil
		default:
			c.Close(websocket.StatusNormalClosure, "")
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, uint8(seat), runErr)
	}
}
