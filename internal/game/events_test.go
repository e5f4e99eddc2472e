package game

import (
	"encoding/json"
	"testing"

	"github.com/jason-s-yu/thulla/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWireShape(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"start", StartGame(), `{"type":"start_game"}`},
		{"next turn seat zero", NextTurn(0), `{"type":"next_turn","player_id":0}`},
		{"card played", CardPlayed(models.AceOfSpades, 2), `{"type":"card_played","player_id":2,"card":{"rank":14,"suit":"spade"}}`},
		{"foul", FoulGiven(1, 3, []models.Card{{Rank: models.Two, Suit: models.Club}}),
			`{"type":"foul_given","from":1,"to":3,"cards":[{"rank":2,"suit":"club"}]}`},
		{"special", SpecialEvent(0, models.Card{Rank: models.Ten, Suit: models.Heart}, 1),
			`{"type":"special_event","player_id":0,"card":{"rank":10,"suit":"heart"},"from":1}`},
		{"error", ErrorEvent("player not found"), `{"type":"error","message":"player not found"}`},
		{"invalid player", InvalidPlayer(), `{"type":"invalid_player"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Event
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.event, back)
		})
	}
}

func TestEventUnknownTypeFailsToMarshal(t *testing.T) {
	_, err := json.Marshal(Event{Type: "bogus"})
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction([]byte(`{"type":"card_played_by_player","player_id":1,"card":{"rank":"queen","suit":"Hearts"}}`))
	require.NoError(t, err)
	assert.Equal(t, PlayCard(1, models.Card{Rank: models.Queen, Suit: models.Heart}), a)

	a, err = ParseAction([]byte(`{"type":"ready","player_id":0}`))
	require.NoError(t, err)
	assert.Equal(t, Ready(0), a)

	a, err = ParseAction([]byte(`{"type":"end_game"}`))
	require.NoError(t, err)
	assert.Equal(t, EndRound(), a)

	for _, bad := range []string{
		`not json`,
		`{"type":"ready"}`,
		`{"type":"card_played_by_player","player_id":1}`,
		`{"type":"card_played_by_player","player_id":1,"card":{"rank":1,"suit":"spade"}}`,
		`{"type":"shuffle"}`,
	} {
		_, err := ParseAction([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestActionMarshalRoundTrip(t *testing.T) {
	for _, a := range []Action{Ready(2), EndRound(), PlayCard(3, models.AceOfSpades)} {
		data, err := json.Marshal(a)
		require.NoError(t, err)
		back, err := ParseAction(data)
		require.NoError(t, err)
		assert.Equal(t, a, back)
	}
}
