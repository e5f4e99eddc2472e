package models

import "strconv"

// PlayerID identifies one of the four seats, not a connection.
type PlayerID uint8

// MaxSeats is the size of the seat pool.
const MaxSeats = 4

// Valid reports whether id names one of the seats.
func (id PlayerID) Valid() bool { return id < MaxSeats }

// MarshalJSON writes the id as a number, so []PlayerID encodes as an array
// instead of the base64 string encoding/json uses for byte slices.
func (id PlayerID) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(id), 10), nil
}

// Player is a seated participant. Hand order carries no meaning.
type Player struct {
	ID    PlayerID `json:"id"`
	Hand  []Card   `json:"hand"`
	Ready bool     `json:"ready"`
}

// NewPlayer returns an empty, not-ready player for the seat.
func NewPlayer(id PlayerID) *Player {
	return &Player{ID: id, Hand: []Card{}}
}

// HasCard reports whether c is in the hand.
func (p *Player) HasCard(c Card) bool {
	return p.indexOf(c) >= 0
}

// HasSuit reports whether the hand holds any card of suit s.
func (p *Player) HasSuit(s Suit) bool {
	for _, c := range p.Hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// RemoveCard takes c out of the hand. It returns false if c was not held.
func (p *Player) RemoveCard(c Card) bool {
	idx := p.indexOf(c)
	if idx < 0 {
		return false
	}
	last := len(p.Hand) - 1
	p.Hand[idx] = p.Hand[last]
	p.Hand = p.Hand[:last]
	return true
}

// TakeAt removes and returns the card at idx.
func (p *Player) TakeAt(idx int) Card {
	c := p.Hand[idx]
	last := len(p.Hand) - 1
	p.Hand[idx] = p.Hand[last]
	p.Hand = p.Hand[:last]
	return c
}

// HandCopy returns a copy of the hand safe to hand to other goroutines.
func (p *Player) HandCopy() []Card {
	out := make([]Card, len(p.Hand))
	copy(out, p.Hand)
	return out
}

func (p *Player) indexOf(c Card) int {
	for i, h := range p.Hand {
		if h == c {
			return i
		}
	}
	return -1
}
