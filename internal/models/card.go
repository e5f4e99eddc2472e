// internal/models/card.go
package models

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Suit is one of the four French suits.
type Suit uint8

const (
	Spade Suit = iota
	Heart
	Diamond
	Club
)

var suitNames = [...]string{"spade", "heart", "diamond", "club"}

// Suits lists every suit in deck construction order.
var Suits = [...]Suit{Spade, Heart, Diamond, Club}

func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return "Suit(" + strconv.Itoa(int(s)) + ")"
}

// MarshalJSON encodes the suit by its lower-case name.
func (s Suit) MarshalJSON() ([]byte, error) {
	if int(s) >= len(suitNames) {
		return nil, fmt.Errorf("invalid suit %d", s)
	}
	return json.Marshal(suitNames[s])
}

// UnmarshalJSON accepts the suit name in any case, singular or plural.
func (s *Suit) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("suit must be a string: %w", err)
	}
	name = strings.TrimSuffix(strings.ToLower(name), "s")
	for i, n := range suitNames {
		if n == name {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("unknown suit %q", name)
}

// Rank is the face value of a card, Two (2) through Ace (14). Ace is high.
type Rank uint8

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var rankNames = map[string]Rank{
	"two": Two, "three": Three, "four": Four, "five": Five, "six": Six,
	"seven": Seven, "eight": Eight, "nine": Nine, "ten": Ten, "t": Ten,
	"jack": Jack, "j": Jack, "queen": Queen, "q": Queen,
	"king": King, "k": King, "ace": Ace, "a": Ace,
}

// Valid reports whether r is within Two..Ace.
func (r Rank) Valid() bool { return r >= Two && r <= Ace }

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	return strconv.Itoa(int(r))
}

// UnmarshalJSON accepts either the numeric rank (2..14) or a name such as
// "ace", "K" or "10".
func (r *Rank) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if !Rank(n).Valid() {
			return fmt.Errorf("rank %d out of range", n)
		}
		*r = Rank(n)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("rank must be a number or a name: %w", err)
	}
	name = strings.ToLower(name)
	if v, ok := rankNames[name]; ok {
		*r = v
		return nil
	}
	if n, err := strconv.Atoi(name); err == nil && Rank(n).Valid() {
		*r = Rank(n)
		return nil
	}
	return fmt.Errorf("unknown rank %q", name)
}

// Card is an immutable playing card. Two cards are equal when rank and suit match.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// AceOfSpades must open every round.
var AceOfSpades = Card{Rank: Ace, Suit: Spade}

func (c Card) String() string {
	return c.Rank.String() + " of " + c.Suit.String()
}

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// StandardDeck returns the 52 distinct cards in a fixed order.
func StandardDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Shuffle permutes cards uniformly at random in place.
func Shuffle(r *rand.Rand, cards []Card) {
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
