package game

import "github.com/jason-s-yu/thulla/internal/models"

// SeatView is the public view of one held seat.
type SeatView struct {
	ID       models.PlayerID `json:"player_id"`
	Ready    bool            `json:"ready"`
	HandSize int             `json:"hand_size"`
	InRound  bool            `json:"in_round"`
}

// Snapshot is a point-in-time copy of the board without hand contents.
type Snapshot struct {
	Phase         Phase             `json:"phase"`
	Turn          models.PlayerID   `json:"turn"`
	Leader        models.PlayerID   `json:"leader"`
	Trick         []Play            `json:"trick"`
	DeckSize      int               `json:"deck_size"`
	DiscardSize   int               `json:"discard_size"`
	Seats         []SeatView        `json:"seats"`
	FreeSeats     []models.PlayerID `json:"free_seats"`
	CardsDealt    bool              `json:"cards_dealt"`
	FirstMoveDone bool              `json:"first_move_done"`
}

// Snapshot copies the public state of the board.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Phase:         g.phase,
		Turn:          g.turn,
		Leader:        g.leader,
		Trick:         append([]Play{}, g.trick...),
		DeckSize:      len(g.deck),
		DiscardSize:   len(g.discard),
		FreeSeats:     g.seats.Free(),
		CardsDealt:    g.handDealt,
		FirstMoveDone: g.firstMoveDone,
	}
	for _, p := range g.seats.Held() {
		s.Seats = append(s.Seats, SeatView{
			ID:       p.ID,
			Ready:    p.Ready,
			HandSize: len(p.Hand),
			InRound:  g.position(p.ID) >= 0,
		})
	}
	return s
}
