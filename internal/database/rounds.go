// internal/database/rounds.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/thulla/internal/cache"
	"github.com/jason-s-yu/thulla/internal/game"
)

// Round outcomes stored in rounds.outcome.
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
)

// RoundStore writes archived events and round summaries.
type RoundStore struct {
	DB *pgxpool.Pool
}

// WriteBatch persists records in one transaction. Re-delivered records are
// ignored. A terminal record also writes the round summary, with the
// finishing order read back from the player_won events already stored.
func (s *RoundStore) WriteBatch(ctx context.Context, recs []cache.EventRecord) error {
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertEventTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert event %s/%d: %w", rec.RoundID, rec.Seq, err)
			}
			if !rec.Terminal() {
				continue
			}
			if err := finalizeRoundTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("finalize round %s: %w", rec.RoundID, err)
			}
		}
		return nil
	})
}

func insertEventTx(ctx context.Context, tx pgx.Tx, rec cache.EventRecord) error {
	q := `
		INSERT INTO round_events (round_id, seq, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (round_id, seq) DO NOTHING
	`
	_, err := tx.Exec(ctx, q,
		rec.RoundID, rec.Seq, string(rec.Type), []byte(rec.Payload), time.UnixMilli(rec.Timestamp),
	)
	return err
}

func finalizeRoundTx(ctx context.Context, tx pgx.Tx, rec cache.EventRecord) error {
	outcome, loser, err := RoundOutcome(rec)
	if err != nil {
		return err
	}
	order, err := finishingOrderTx(ctx, tx, rec.RoundID)
	if err != nil {
		return err
	}

	q := `
		INSERT INTO rounds (id, outcome, loser, finishing_order, event_count, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = tx.Exec(ctx, q,
		rec.RoundID, outcome, loser, order, rec.Seq+1, time.UnixMilli(rec.Timestamp),
	)
	return err
}

func finishingOrderTx(ctx context.Context, tx pgx.Tx, roundID uuid.UUID) ([]int16, error) {
	q := `
		SELECT (payload->>'player_id')::smallint
		FROM round_events
		WHERE round_id = $1 AND type = $2
		ORDER BY seq
	`
	rows, err := tx.Query(ctx, q, roundID, string(game.EventPlayerWon))
	if err != nil {
		return nil, err
	}
	order, err := pgx.CollectRows(rows, pgx.RowTo[int16])
	if err != nil {
		return nil, err
	}
	if order == nil {
		order = []int16{}
	}
	return order, nil
}

// RoundOutcome classifies a terminal record. loser is nil for an aborted round.
func RoundOutcome(rec cache.EventRecord) (outcome string, loser *int16, err error) {
	switch rec.Type {
	case game.EventAbortGame:
		return OutcomeAborted, nil, nil
	case game.EventEndGame:
		var ev game.Event
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return "", nil, fmt.Errorf("decode end_game payload: %w", err)
		}
		l := int16(ev.Player)
		return OutcomeCompleted, &l, nil
	}
	return "", nil, fmt.Errorf("%s does not end a round", rec.Type)
}
