package game

import "github.com/jason-s-yu/thulla/internal/models"

// Seats is the fixed arena of four seat slots. A nil slot is free.
type Seats struct {
	slots [models.MaxSeats]*models.Player
}

// Acquire takes the lowest free seat. ok is false when all seats are held.
func (s *Seats) Acquire() (p *models.Player, ok bool) {
	for i, slot := range s.slots {
		if slot == nil {
			p = models.NewPlayer(models.PlayerID(i))
			s.slots[i] = p
			return p, true
		}
	}
	return nil, false
}

// Release frees the seat. It returns false if the seat was not held or the id is out of range.
func (s *Seats) Release(id models.PlayerID) bool {
	if !id.Valid() || s.slots[id] == nil {
		return false
	}
	s.slots[id] = nil
	return true
}

// Get returns the seat holder, or nil.
func (s *Seats) Get(id models.PlayerID) *models.Player {
	if !id.Valid() {
		return nil
	}
	return s.slots[id]
}

// Held lists occupied seats in seat order.
func (s *Seats) Held() []*models.Player {
	out := make([]*models.Player, 0, models.MaxSeats)
	for _, p := range s.slots {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Free lists unoccupied seat ids in ascending order.
func (s *Seats) Free() []models.PlayerID {
	var out []models.PlayerID
	for i, p := range s.slots {
		if p == nil {
			out = append(out, models.PlayerID(i))
		}
	}
	return out
}

// Count is the number of held seats.
func (s *Seats) Count() int {
	n := 0
	for _, p := range s.slots {
		if p != nil {
			n++
		}
	}
	return n
}
