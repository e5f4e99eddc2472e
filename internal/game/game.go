// internal/game/game.go

// Package game implements the rules of a four-seat trick-taking game in
// which the last player still holding cards loses, and the lock-guarded
// store through which connection sessions read and mutate the one shared
// game instance.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jason-s-yu/thulla/internal/models"
)

// Phase is the lifecycle stage of a round.
type Phase uint8

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	// PhaseEnded is transient; a finished round resets to PhaseWaiting immediately.
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// MarshalText lets snapshots encode the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Play is one card in the current trick together with who played it.
type Play struct {
	Card   models.Card     `json:"card"`
	Player models.PlayerID `json:"player_id"`
}

// Game is the authoritative aggregate. It is not safe for concurrent use;
// Store provides the locking.
type Game struct {
	phase  Phase
	turn   models.PlayerID
	leader models.PlayerID
	trick  []Play

	seats Seats
	// active is the rotation for the current round, in seat order.
	// Winners leave it but keep their seat.
	active []*models.Player

	deck    []models.Card
	discard []models.Card

	handDealt     bool
	firstMoveDone bool

	rng *rand.Rand
}

// Option configures a Game.
type Option func(*Game)

// WithRand makes shuffling and the rescue draw use r.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// NewGame builds an empty game in the waiting phase.
func NewGame(opts ...Option) *Game {
	g := &Game{
		phase: PhaseWaiting,
		deck:  models.StandardDeck(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Turn returns the seat expected to play next.
func (g *Game) Turn() models.PlayerID { return g.turn }

// Leader returns the seat that led, or will lead, the current trick.
func (g *Game) Leader() models.PlayerID { return g.leader }

// CardsDealt reports whether this round's hands have been dealt.
func (g *Game) CardsDealt() bool { return g.handDealt }

// Hand returns a copy of the seat's hand.
func (g *Game) Hand(id models.PlayerID) ([]models.Card, bool) {
	p := g.seats.Get(id)
	if p == nil {
		return nil, false
	}
	return p.HandCopy(), true
}

// Reset clears the board for a new round. Seats and ready flags survive.
func (g *Game) Reset() {
	g.phase = PhaseWaiting
	g.clearBoard()
	g.active = nil
	g.handDealt = false
	g.firstMoveDone = false
	g.normalizeTurn()
}

func (g *Game) clearBoard() {
	g.deck = models.StandardDeck()
	g.trick = nil
	g.discard = nil
	for _, p := range g.seats.Held() {
		p.Hand = p.Hand[:0]
	}
}

// normalizeTurn points turn and leader at a held seat when they name a free one.
func (g *Game) normalizeTurn() {
	held := g.seats.Held()
	if len(held) == 0 {
		return
	}
	if g.seats.Get(g.turn) == nil {
		g.turn = held[0].ID
	}
	if g.seats.Get(g.leader) == nil {
		g.leader = g.turn
	}
}

// AddPlayer seats a new player in the lowest free seat.
func (g *Game) AddPlayer() (Event, error) {
	if g.phase != PhaseWaiting {
		return Event{}, ErrNotAccepting
	}
	p, ok := g.seats.Acquire()
	if !ok {
		return Event{}, ErrGameFull
	}
	g.normalizeTurn()
	return PlayerAdded(p.ID), nil
}

// RemovePlayer frees a seat. During a round it only reports AbortGame and
// leaves the seat held; the caller is expected to Reset and call again.
func (g *Game) RemovePlayer(id models.PlayerID) (Event, error) {
	if g.seats.Get(id) == nil {
		return Event{}, ErrSeatNotHeld
	}
	if g.phase == PhasePlaying {
		return AbortGame(), nil
	}
	g.seats.Release(id)
	g.normalizeTurn()
	return PlayerLeft(id), nil
}

// MarkReady sets the seat's ready flag.
func (g *Game) MarkReady(id models.PlayerID) error {
	p := g.seats.Get(id)
	if p == nil {
		return ErrSeatNotHeld
	}
	p.Ready = true
	return nil
}

func (g *Game) allReady() bool {
	held := g.seats.Held()
	if len(held) < 2 {
		return false
	}
	for _, p := range held {
		if !p.Ready {
			return false
		}
	}
	return true
}

// StartRound shuffles a fresh deck, deals it round-robin to every seated
// player and hands the first turn to whoever holds the ace of spades.
func (g *Game) StartRound() error {
	held := g.seats.Held()
	if len(held) == 0 {
		return fmt.Errorf("start round with no players: %w", ErrNoAceOfSpades)
	}

	g.clearBoard()
	models.Shuffle(g.rng, g.deck)
	g.active = held
	g.deal()
	g.phase = PhasePlaying
	g.handDealt = true
	g.firstMoveDone = false

	holder, ok := g.aceOfSpadesHolder()
	if !ok {
		return ErrNoAceOfSpades
	}
	g.turn, g.leader = holder, holder
	return nil
}

func (g *Game) deal() {
	n := len(g.active)
	for i := 0; len(g.deck) > 0; i++ {
		last := len(g.deck) - 1
		card := g.deck[last]
		g.deck = g.deck[:last]
		p := g.active[i%n]
		p.Hand = append(p.Hand, card)
	}
}

func (g *Game) aceOfSpadesHolder() (models.PlayerID, bool) {
	for _, p := range g.active {
		if p.HasCard(models.AceOfSpades) {
			return p.ID, true
		}
	}
	return 0, false
}

// Apply runs one client action through the rules. The returned events are
// meant for broadcast and are returned even when err is non-nil:
//
//   - ErrWrongPhase, ErrSeatNotHeld: no events, nothing changed.
//   - ErrRuleViolation: InvalidCard or InvalidPlayer, nothing changed.
//   - ErrInvariant: AbortGame or Error; the caller must Reset.
func (g *Game) Apply(a Action) ([]Event, error) {
	switch a.Type {
	case ActionReady:
		return g.ready(a.PlayerID)
	case ActionEndGame:
		g.Reset()
		return nil, nil
	case ActionCardPlayedByPlayer:
		return g.playCard(a.PlayerID, a.Card)
	}
	return nil, fmt.Errorf("unknown action type %q", a.Type)
}

func (g *Game) ready(id models.PlayerID) ([]Event, error) {
	if g.phase != PhaseWaiting {
		return nil, fmt.Errorf("ready in phase %s: %w", g.phase, ErrWrongPhase)
	}
	if err := g.MarkReady(id); err != nil {
		return nil, fmt.Errorf("ready seat %d: %w", id, err)
	}
	events := []Event{MarkReady(id)}
	if g.allReady() {
		g.phase = PhasePlaying
		events = append(events, StartGame())
	}
	return events, nil
}

func (g *Game) position(id models.PlayerID) int {
	for i, p := range g.active {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (g *Game) playCard(id models.PlayerID, card models.Card) ([]Event, error) {
	if g.phase != PhasePlaying || !g.handDealt {
		return nil, fmt.Errorf("play card in phase %s: %w", g.phase, ErrWrongPhase)
	}
	if !g.firstMoveDone && card != models.AceOfSpades {
		return []Event{InvalidCard(id)}, ErrRuleViolation
	}

	pos := g.position(id)
	if pos < 0 {
		if g.seats.Get(id) != nil {
			// Seated but already out of this round.
			return []Event{InvalidPlayer()}, ErrRuleViolation
		}
		return []Event{ErrorEvent("player not found")}, fmt.Errorf("seat %d: %w", id, ErrInvariant)
	}
	if g.turn != id {
		return []Event{InvalidPlayer()}, ErrRuleViolation
	}
	player := g.active[pos]
	if !player.HasCard(card) {
		return []Event{AbortGame()}, fmt.Errorf("seat %d does not hold %s: %w", id, card, ErrInvariant)
	}

	next := g.active[(pos+1)%len(g.active)].ID

	if len(g.trick) == 0 {
		g.firstMoveDone = true
		player.RemoveCard(card)
		g.trick = append(g.trick, Play{Card: card, Player: id})
		g.turn = next
		return []Event{CardPlayed(card, id), NextTurn(next)}, nil
	}

	top := g.trick[len(g.trick)-1].Card
	if card.Suit == top.Suit {
		return g.followSuit(player, card, next), nil
	}

	// Off suit: only legal when the hand has nothing of the lead suit.
	if player.HasSuit(top.Suit) {
		return []Event{InvalidCard(id)}, ErrRuleViolation
	}
	return g.foul(player, card), nil
}

func (g *Game) followSuit(player *models.Player, card models.Card, next models.PlayerID) []Event {
	player.RemoveCard(card)
	g.trick = append(g.trick, Play{Card: card, Player: player.ID})
	events := []Event{CardPlayed(card, player.ID)}

	if next != g.leader {
		g.turn = next
		return append(events, NextTurn(g.turn))
	}

	// Full circle: highest card takes the lead and the trick is discarded.
	winner := g.highest()
	g.turn, g.leader = winner, winner
	for _, p := range g.trick {
		g.discard = append(g.discard, p.Card)
	}
	g.trick = nil
	events = append(events, DiscardPile())

	events = append(events, g.removeWinners()...)
	if ev, over := g.endIfDecided(); over {
		return append(events, ev)
	}

	if ev, ok := g.rescue(); ok {
		events = append(events, ev)
	}
	return append(events, NextTurn(g.turn))
}

func (g *Game) foul(player *models.Player, card models.Card) []Event {
	player.RemoveCard(card)
	events := []Event{CardPlayed(card, player.ID)}

	receiver := g.highest()
	pile := make([]models.Card, 0, len(g.trick)+1)
	for _, p := range g.trick {
		pile = append(pile, p.Card)
	}
	pile = append(pile, card)
	g.trick = nil

	events = append(events, FoulGiven(player.ID, receiver, pile))
	if r := g.seats.Get(receiver); r != nil {
		r.Hand = append(r.Hand, pile...)
	}
	g.turn, g.leader = receiver, receiver

	events = append(events, g.removeWinners()...)
	if ev, over := g.endIfDecided(); over {
		return append(events, ev)
	}
	return append(events, NextTurn(g.turn))
}

// highest returns who played the highest-ranked card of the current trick.
func (g *Game) highest() models.PlayerID {
	best := g.trick[0]
	for _, p := range g.trick[1:] {
		if p.Card.Rank > best.Card.Rank {
			best = p
		}
	}
	return best.Player
}

// removeWinners drops every empty-handed player other than the turn holder
// from the rotation.
func (g *Game) removeWinners() []Event {
	var events []Event
	kept := make([]*models.Player, 0, len(g.active))
	for _, p := range g.active {
		if len(p.Hand) == 0 && p.ID != g.turn {
			events = append(events, PlayerWon(p.ID))
			continue
		}
		kept = append(kept, p)
	}
	g.active = kept
	return events
}

func (g *Game) endIfDecided() (Event, bool) {
	if len(g.active) != 1 {
		return Event{}, false
	}
	last := g.active[0].ID
	g.phase = PhaseEnded
	g.Reset()
	return EndGame(last), true
}

// rescue hands an empty-handed turn holder one random card from the next
// player in the rotation.
func (g *Game) rescue() (Event, bool) {
	pos := g.position(g.turn)
	if pos < 0 || len(g.active[pos].Hand) > 0 {
		return Event{}, false
	}
	receiver := g.active[pos]
	giver := g.active[(pos+1)%len(g.active)]
	if giver == receiver || len(giver.Hand) == 0 {
		return Event{}, false
	}
	card := giver.TakeAt(g.rng.Intn(len(giver.Hand)))
	receiver.Hand = append(receiver.Hand, card)
	return SpecialEvent(receiver.ID, card, giver.ID), true
}
