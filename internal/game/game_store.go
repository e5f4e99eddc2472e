package game

import (
	"errors"
	"sync"

	"github.com/jason-s-yu/thulla/internal/models"
	"github.com/sirupsen/logrus"
)

// Publisher receives each committed batch of events. Publish is called
// outside the game lock but must not block.
type Publisher interface {
	Publish(events ...Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(events ...Event)

func (f PublisherFunc) Publish(events ...Event) { f(events...) }

// Store holds the single Game behind a readers-writer lock. Queries share
// the read lock; every mutation takes the write lock, and its events are
// published after the lock is released, in the same order the mutations
// were applied.
type Store struct {
	mu    sync.RWMutex
	order sync.Mutex
	game  *Game
	pub   Publisher
	log   logrus.FieldLogger
}

// NewStore wraps g. pub may be nil.
func NewStore(g *Game, pub Publisher, logger logrus.FieldLogger) *Store {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Store{game: g, pub: pub, log: logger}
}

// update runs fn with exclusive access and publishes the resulting events.
// The ordering mutex is taken before the write lock is dropped so that a
// later mutation cannot publish ahead of an earlier one.
func (s *Store) update(fn func(g *Game) []Event) []Event {
	s.mu.Lock()
	events := fn(s.game)
	s.order.Lock()
	s.mu.Unlock()
	defer s.order.Unlock()

	if len(events) > 0 && s.pub != nil {
		s.pub.Publish(events...)
	}
	return events
}

// Join seats a new player and publishes PlayerAdded.
func (s *Store) Join() (models.PlayerID, error) {
	var (
		id  models.PlayerID
		err error
	)
	s.update(func(g *Game) []Event {
		ev, addErr := g.AddPlayer()
		if addErr != nil {
			err = addErr
			return nil
		}
		id = ev.Player
		return []Event{ev}
	})
	return id, err
}

// Leave releases the seat. A departure mid-round aborts the round, resets
// the board and then frees the seat, publishing AbortGame and PlayerLeft.
func (s *Store) Leave(id models.PlayerID) []Event {
	return s.update(func(g *Game) []Event {
		ev, err := g.RemovePlayer(id)
		if err != nil {
			return nil
		}
		events := []Event{ev}
		if ev.Type == EventAbortGame {
			s.log.WithField("seat", id).Info("player left mid-round, resetting")
			g.Reset()
			if left, err := g.RemovePlayer(id); err == nil {
				events = append(events, left)
			}
		}
		return events
	})
}

// Apply runs a client action. When the action starts a round the store
// deals and appends NextTurn for the opening player. Invariant violations
// reset the round before the events are published.
func (s *Store) Apply(a Action) ([]Event, error) {
	var err error
	events := s.update(func(g *Game) []Event {
		var events []Event
		events, err = g.Apply(a)
		if errors.Is(err, ErrInvariant) {
			s.log.WithFields(logrus.Fields{
				"action": a.Type,
				"seat":   a.PlayerID,
			}).Warnf("resetting round: %v", err)
			g.Reset()
		}

		if g.Phase() == PhasePlaying && !g.CardsDealt() {
			if startErr := g.StartRound(); startErr != nil {
				s.log.Errorf("failed to start round: %v", startErr)
				g.Reset()
				err = startErr
				return append(events, AbortGame())
			}
			s.log.WithField("turn", g.Turn()).Info("round started")
			events = append(events, NextTurn(g.Turn()))
		}
		return events
	})
	return events, err
}

// Reset is the administrative reset. It publishes AbortGame.
func (s *Store) Reset() {
	s.update(func(g *Game) []Event {
		g.Reset()
		return []Event{AbortGame()}
	})
}

// Hand returns a copy of the seat's hand.
func (s *Store) Hand(id models.PlayerID) ([]models.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Hand(id)
}

// Phase returns the current phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Phase()
}

// Turn returns the seat expected to play next.
func (s *Store) Turn() models.PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Turn()
}

// Snapshot returns a copy of the public board state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Snapshot()
}
