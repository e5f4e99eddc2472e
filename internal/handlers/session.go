// internal/handlers/session.go
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/thulla/internal/broadcast"
	"github.com/jason-s-yu/thulla/internal/game"
	"github.com/jason-s-yu/thulla/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// errServerClosing ends a session when the broadcaster shuts down.
var errServerClosing = errors.New("server closing")

// session is one seated websocket connection. Three goroutines serve it:
// the reader applies client actions to the store, the forwarder moves
// broadcast events (plus the private hand) into the mailbox, and the writer
// drains the mailbox onto the socket. The first to fail cancels the rest.
type session struct {
	id   uuid.UUID
	seat models.PlayerID

	conn    *websocket.Conn
	store   *game.Store
	sub     *broadcast.Subscription[game.Event]
	mailbox chan interface{}

	writeTimeout time.Duration
	log          *logrus.Entry
}

func (s *session) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.forward(ctx) })
	g.Go(func() error { return s.writeLoop(ctx) })
	return g.Wait()
}

// readLoop decodes inbound frames and applies them. Frames that are not
// valid actions are dropped; game errors are already reported as events.
func (s *session) readLoop(ctx context.Context) error {
	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			s.log.Debugf("ignoring non-text frame type %d", typ)
			continue
		}

		action, err := game.ParseAction(data)
		if err != nil {
			s.log.Debugf("dropping frame: %v", err)
			continue
		}

		if _, err := s.store.Apply(action); err != nil {
			s.log.WithFields(logrus.Fields{
				"action": action.Type,
				"player": action.PlayerID,
			}).Debugf("action rejected: %v", err)
		}
	}
}

// forward copies broadcast events into the mailbox. Every StartGame is
// followed by this seat's hand; a round emits StartGame exactly once.
func (s *session) forward(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-s.sub.C():
			if !ok {
				return errServerClosing
			}
			if err := s.enqueue(ctx, ev); err != nil {
				return err
			}
			if ev.Type != game.EventStartGame {
				continue
			}
			cards, ok := s.store.Hand(s.seat)
			if !ok {
				continue
			}
			if err := s.enqueue(ctx, newHandMessage(cards)); err != nil {
				return err
			}
		}
	}
}

func (s *session) enqueue(ctx context.Context, msg interface{}) error {
	select {
	case s.mailbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writeLoop serializes mailbox messages onto the socket in order.
func (s *session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.mailbox:
			wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
			err := wsjson.Write(wctx, s.conn, msg)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
