// internal/game/events.go
package game

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/thulla/internal/models"
)

// EventType tags a public event broadcast to every session.
type EventType string

const (
	EventStartGame     EventType = "start_game"
	EventAbortGame     EventType = "abort_game"
	EventEndGame       EventType = "end_game"
	EventCardPlayed    EventType = "card_played"
	EventNextTurn      EventType = "next_turn"
	EventFoulGiven     EventType = "foul_given"
	EventDiscardPile   EventType = "discard_pile"
	EventPlayerWon     EventType = "player_won"
	EventSpecialEvent  EventType = "special_event"
	EventPlayerAdded   EventType = "player_added"
	EventInvalidCard   EventType = "invalid_card"
	EventInvalidPlayer EventType = "invalid_player"
	EventPlayerLeft    EventType = "player_left"
	EventError         EventType = "error"
	EventMarkReady     EventType = "mark_ready"
)

// Event is a public game event. Which fields are meaningful depends on Type:
//
//	end_game, next_turn, player_won, player_added,
//	invalid_card, player_left, mark_ready   Player
//	card_played                             Player, Card
//	foul_given                              From, To, Cards
//	special_event                           Player (receiver), Card, From (giver)
//	error                                   Message
type Event struct {
	Type    EventType
	Player  models.PlayerID
	Card    models.Card
	From    models.PlayerID
	To      models.PlayerID
	Cards   []models.Card
	Message string
}

func playerEvent(t EventType, id models.PlayerID) Event {
	return Event{Type: t, Player: id}
}

func StartGame() Event                     { return Event{Type: EventStartGame} }
func AbortGame() Event                     { return Event{Type: EventAbortGame} }
func DiscardPile() Event                   { return Event{Type: EventDiscardPile} }
func InvalidPlayer() Event                 { return Event{Type: EventInvalidPlayer} }
func EndGame(id models.PlayerID) Event     { return playerEvent(EventEndGame, id) }
func NextTurn(id models.PlayerID) Event    { return playerEvent(EventNextTurn, id) }
func PlayerWon(id models.PlayerID) Event   { return playerEvent(EventPlayerWon, id) }
func PlayerAdded(id models.PlayerID) Event { return playerEvent(EventPlayerAdded, id) }
func InvalidCard(id models.PlayerID) Event { return playerEvent(EventInvalidCard, id) }
func PlayerLeft(id models.PlayerID) Event  { return playerEvent(EventPlayerLeft, id) }
func MarkReady(id models.PlayerID) Event   { return playerEvent(EventMarkReady, id) }
func ErrorEvent(msg string) Event          { return Event{Type: EventError, Message: msg} }

func CardPlayed(c models.Card, id models.PlayerID) Event {
	return Event{Type: EventCardPlayed, Card: c, Player: id}
}

func FoulGiven(from, to models.PlayerID, cards []models.Card) Event {
	return Event{Type: EventFoulGiven, From: from, To: to, Cards: cards}
}

func SpecialEvent(receiver models.PlayerID, c models.Card, giver models.PlayerID) Event {
	return Event{Type: EventSpecialEvent, Player: receiver, Card: c, From: giver}
}

// Terminal reports whether the event closes a round.
func (e Event) Terminal() bool {
	return e.Type == EventEndGame || e.Type == EventAbortGame
}

type wireEvent struct {
	Type     EventType        `json:"type"`
	PlayerID *models.PlayerID `json:"player_id,omitempty"`
	Card     *models.Card     `json:"card,omitempty"`
	From     *models.PlayerID `json:"from,omitempty"`
	To       *models.PlayerID `json:"to,omitempty"`
	Cards    []models.Card    `json:"cards,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// MarshalJSON writes only the fields that belong to the event's type.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Type: e.Type}
	switch e.Type {
	case EventStartGame, EventAbortGame, EventDiscardPile, EventInvalidPlayer:
	case EventEndGame, EventNextTurn, EventPlayerWon, EventPlayerAdded,
		EventInvalidCard, EventPlayerLeft, EventMarkReady:
		w.PlayerID = &e.Player
	case EventCardPlayed:
		w.PlayerID, w.Card = &e.Player, &e.Card
	case EventFoulGiven:
		w.From, w.To = &e.From, &e.To
		w.Cards = e.Cards
	case EventSpecialEvent:
		w.PlayerID, w.Card, w.From = &e.Player, &e.Card, &e.From
	case EventError:
		w.Message = e.Message
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON is the inverse of MarshalJSON; the archive and tests read events back.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{Type: w.Type, Cards: w.Cards, Message: w.Message}
	if w.PlayerID != nil {
		e.Player = *w.PlayerID
	}
	if w.Card != nil {
		e.Card = *w.Card
	}
	if w.From != nil {
		e.From = *w.From
	}
	if w.To != nil {
		e.To = *w.To
	}
	return nil
}
