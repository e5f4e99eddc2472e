package game

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/thulla/internal/models"
)

// ActionType tags an inbound client action.
type ActionType string

const (
	ActionReady              ActionType = "ready"
	ActionEndGame            ActionType = "end_game"
	ActionCardPlayedByPlayer ActionType = "card_played_by_player"
)

// Action is a decoded client message.
type Action struct {
	Type     ActionType      `json:"type"`
	PlayerID models.PlayerID `json:"player_id"`
	Card     models.Card     `json:"card"`
}

// Ready marks a seat ready for the next round.
func Ready(id models.PlayerID) Action {
	return Action{Type: ActionReady, PlayerID: id}
}

// PlayCard plays c from the seat's hand.
func PlayCard(id models.PlayerID, c models.Card) Action {
	return Action{Type: ActionCardPlayedByPlayer, PlayerID: id, Card: c}
}

// EndRound is the administrative reset action.
func EndRound() Action {
	return Action{Type: ActionEndGame}
}

// MarshalJSON writes the client wire form, omitting fields the type does not carry.
func (a Action) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"type": a.Type}
	switch a.Type {
	case ActionReady:
		out["player_id"] = a.PlayerID
	case ActionCardPlayedByPlayer:
		out["player_id"] = a.PlayerID
		out["card"] = a.Card
	}
	return json.Marshal(out)
}

// ParseAction decodes one inbound frame. Unknown types and missing
// required fields are errors.
func ParseAction(data []byte) (Action, error) {
	var raw struct {
		Type     ActionType       `json:"type"`
		PlayerID *models.PlayerID `json:"player_id"`
		Card     *models.Card     `json:"card"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}

	switch raw.Type {
	case ActionEndGame:
		return EndRound(), nil
	case ActionReady:
		if raw.PlayerID == nil {
			return Action{}, fmt.Errorf("%s: missing player_id", raw.Type)
		}
		return Ready(*raw.PlayerID), nil
	case ActionCardPlayedByPlayer:
		if raw.PlayerID == nil || raw.Card == nil {
			return Action{}, fmt.Errorf("%s: missing player_id or card", raw.Type)
		}
		return PlayCard(*raw.PlayerID, *raw.Card), nil
	default:
		return Action{}, fmt.Errorf("unknown action type %q", raw.Type)
	}
}
