package models

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardDeckHasFiftyTwoDistinctCards(t *testing.T) {
	deck := StandardDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.True(t, c.Rank.Valid(), "rank out of range: %v", c)
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
	assert.True(t, seen[AceOfSpades])
}

func TestShuffleIsAPermutation(t *testing.T) {
	deck := StandardDeck()
	Shuffle(rand.New(rand.NewSource(7)), deck)

	seen := make(map[Card]int)
	for _, c := range deck {
		seen[c]++
	}
	assert.Len(t, seen, DeckSize)
	for c, n := range seen {
		assert.Equal(t, 1, n, "card %v appears %d times", c, n)
	}
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(AceOfSpades)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":14,"suit":"spade"}`, string(data))

	cases := map[string]Card{
		`{"rank":14,"suit":"spade"}`:     AceOfSpades,
		`{"rank":"Ace","suit":"Spade"}`:  AceOfSpades,
		`{"rank":"K","suit":"hearts"}`:   {Rank: King, Suit: Heart},
		`{"rank":"10","suit":"DIAMOND"}`: {Rank: Ten, Suit: Diamond},
		`{"rank":2,"suit":"club"}`:       {Rank: Two, Suit: Club},
	}
	for in, want := range cases {
		var got Card
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{
		`{"rank":15,"suit":"spade"}`,
		`{"rank":1,"suit":"spade"}`,
		`{"rank":"joker","suit":"spade"}`,
		`{"rank":3,"suit":"star"}`,
	} {
		var c Card
		assert.Error(t, json.Unmarshal([]byte(bad), &c), bad)
	}
}

func TestPlayerHandOperations(t *testing.T) {
	p := NewPlayer(2)
	p.Hand = []Card{
		{Rank: Two, Suit: Heart},
		{Rank: Ace, Suit: Spade},
		{Rank: Nine, Suit: Club},
	}

	assert.True(t, p.HasCard(AceOfSpades))
	assert.True(t, p.HasSuit(Club))
	assert.False(t, p.HasSuit(Diamond))

	require.True(t, p.RemoveCard(AceOfSpades))
	assert.False(t, p.HasCard(AceOfSpades))
	assert.Len(t, p.Hand, 2)
	assert.False(t, p.RemoveCard(AceOfSpades))

	hand := p.HandCopy()
	hand[0] = AceOfSpades
	assert.False(t, p.HasCard(AceOfSpades), "copy must not alias the hand")
}

func TestPlayerIDSliceEncodesAsArray(t *testing.T) {
	data, err := json.Marshal([]PlayerID{0, 3})
	require.NoError(t, err)
	assert.JSONEq(t, `[0,3]`, string(data))

	var back []PlayerID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []PlayerID{0, 3}, back)
}
