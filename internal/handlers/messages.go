package handlers

import (
	"github.com/jason-s-yu/thulla/internal/models"
)

// Private messages are written to a single session and never broadcast.
const (
	msgHand = "hand"
	msgSeat = "seat"
)

// handMessage carries the session's own cards at the start of a round.
type handMessage struct {
	Type  string        `json:"type"`
	Cards []models.Card `json:"cards"`
}

func newHandMessage(cards []models.Card) handMessage {
	if cards == nil {
		cards = []models.Card{}
	}
	return handMessage{Type: msgHand, Cards: cards}
}

// seatMessage tells a new session which seat it holds.
type seatMessage struct {
	Type     string          `json:"type"`
	PlayerID models.PlayerID `json:"player_id"`
}

func newSeatMessage(id models.PlayerID) seatMessage {
	return seatMessage{Type: msgSeat, PlayerID: id}
}
