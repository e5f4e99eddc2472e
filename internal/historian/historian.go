// internal/historian/historian.go

// Package historian drains the Redis event queue written by the game server
// and persists the records in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jason-s-yu/thulla/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Source is the slice of the Redis API the historian reads from.
type Source interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Sink persists one batch atomically.
type Sink interface {
	WriteBatch(ctx context.Context, recs []cache.EventRecord) error
}

// Service pops records, accumulates them and flushes a batch when it is
// full, when the flush interval elapses, or on shutdown.
type Service struct {
	src        Source
	sink       Sink
	queue      string
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration
	log        logrus.FieldLogger

	batch []cache.EventRecord
}

// New builds a Service. batchSize and flushDelay fall back to 20 and 500ms.
func New(src Source, sink Sink, queue string, batchSize int, flushDelay time.Duration, logger logrus.FieldLogger) *Service {
	if batchSize < 1 {
		batchSize = 20
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	return &Service{
		src:        src,
		sink:       sink,
		queue:      queue,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		popTimeout: time.Second,
		log:        logger,
		batch:      make([]cache.EventRecord, 0, batchSize),
	}
}

// Run blocks until ctx is done. The final partial batch is flushed with a
// fresh context so shutdown does not lose it.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()

	s.log.WithField("queue", s.queue).Info("historian started")
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.flush(flushCtx)
			s.log.Info("historian stopped")
			return nil
		case <-ticker.C:
			s.flush(ctx)
		default:
			rec, ok := s.pop(ctx)
			if !ok {
				continue
			}
			s.batch = append(s.batch, rec)
			if len(s.batch) >= s.batchSize {
				s.flush(ctx)
			}
		}
	}
}

// pop waits up to popTimeout for one record. Malformed payloads are logged and skipped.
func (s *Service) pop(ctx context.Context) (cache.EventRecord, bool) {
	var rec cache.EventRecord
	res, err := s.src.BLPop(ctx, s.popTimeout, s.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			s.log.Errorf("BLPop: %v", err)
		}
		return rec, false
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return rec, false
	}
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		s.log.Warnf("invalid event record: %v", err)
		return rec, false
	}
	return rec, true
}

// flush writes the pending batch. A failed batch is logged and dropped;
// the archive is best effort and never feeds back into play.
func (s *Service) flush(ctx context.Context) {
	if len(s.batch) == 0 {
		return
	}
	batch := make([]cache.EventRecord, len(s.batch))
	copy(batch, s.batch)
	s.batch = s.batch[:0]

	if err := s.sink.WriteBatch(ctx, batch); err != nil {
		s.log.WithField("records", len(batch)).Errorf("flush failed: %v", err)
		return
	}
	s.log.Debugf("flushed %d events", len(batch))
}
