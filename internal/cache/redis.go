// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/thulla/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// EventRecord is one archived game event as it travels through the Redis
// queue to the historian.
type EventRecord struct {
	RoundID   uuid.UUID       `json:"round_id"`
	Seq       int             `json:"seq"`
	Type      game.EventType  `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// Terminal reports whether the record closes its round.
func (r EventRecord) Terminal() bool {
	return r.Type == game.EventEndGame || r.Type == game.EventAbortGame
}

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Pusher is the slice of the Redis API the archive needs.
type Pusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// EventArchive appends every published game event to a Redis list. Record
// never blocks: events are queued and pushed by Run, and dropped with a
// warning if the queue is full.
type EventArchive struct {
	rdb   Pusher
	queue string
	log   logrus.FieldLogger

	mu      sync.Mutex
	roundID uuid.UUID
	seq     int

	pending chan EventRecord
	now     func() time.Time
}

// NewEventArchive builds an archive pushing to the named list. buffer bounds
// the number of records waiting for Run.
func NewEventArchive(rdb Pusher, queue string, buffer int, logger logrus.FieldLogger) *EventArchive {
	if buffer < 1 {
		buffer = 1
	}
	return &EventArchive{
		rdb:     rdb,
		queue:   queue,
		log:     logger,
		roundID: uuid.New(),
		pending: make(chan EventRecord, buffer),
		now:     time.Now,
	}
}

// Record stamps events with the current round id and sequence number and
// queues them. StartGame opens a new round unless the current one is still
// empty, and a terminal event closes it.
func (a *EventArchive) Record(events ...game.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			a.log.Warnf("archive: cannot encode %s: %v", ev.Type, err)
			continue
		}
		if ev.Type == game.EventStartGame && a.seq > 0 {
			a.rotate()
		}
		rec := EventRecord{
			RoundID:   a.roundID,
			Seq:       a.seq,
			Type:      ev.Type,
			Payload:   payload,
			Timestamp: a.now().UnixMilli(),
		}
		a.seq++
		if ev.Terminal() {
			a.rotate()
		}

		select {
		case a.pending <- rec:
		default:
			a.log.WithFields(logrus.Fields{
				"round_id": rec.RoundID,
				"seq":      rec.Seq,
				"type":     rec.Type,
			}).Warn("archive queue full, dropping event")
		}
	}
}

func (a *EventArchive) rotate() {
	a.roundID = uuid.New()
	a.seq = 0
}

// Run pushes queued records until ctx is done, then drains what is left
// with a short grace period.
func (a *EventArchive) Run(ctx context.Context) {
	for {
		select {
		case rec := <-a.pending:
			a.push(ctx, rec)
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			for {
				select {
				case rec := <-a.pending:
					a.push(drainCtx, rec)
				default:
					return
				}
			}
		}
	}
}

func (a *EventArchive) push(ctx context.Context, rec EventRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		a.log.Errorf("archive: failed to marshal EventRecord: %v", err)
		return
	}
	if err := a.rdb.RPush(ctx, a.queue, data).Err(); err != nil {
		a.log.Warnf("archive: failed to RPush to Redis list '%s': %v", a.queue, err)
	}
}
