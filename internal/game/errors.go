package game

import "errors"

var (
	// ErrNotAccepting is returned by AddPlayer while a round is in progress.
	ErrNotAccepting = errors.New("game is not accepting players")
	// ErrGameFull is returned by AddPlayer when every seat is held.
	ErrGameFull = errors.New("all seats are taken")
	// ErrSeatNotHeld means the player id does not name an occupied seat.
	ErrSeatNotHeld = errors.New("seat is not held")
	// ErrWrongPhase means the action is not valid in the current phase. No events are produced.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrRuleViolation accompanies InvalidCard and InvalidPlayer events. The round is unchanged.
	ErrRuleViolation = errors.New("move rejected by the rules")
	// ErrInvariant accompanies AbortGame and Error events. The caller must reset the round.
	ErrInvariant = errors.New("game state invariant violated")
	// ErrNoAceOfSpades means no seated player was dealt the opening card.
	ErrNoAceOfSpades = errors.New("no player holds the ace of spades")
)
