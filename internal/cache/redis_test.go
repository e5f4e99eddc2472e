package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/thulla/internal/game"
	"github.com/jason-s-yu/thulla/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeList struct {
	mu    sync.Mutex
	items map[string][]string
	err   error
}

func (f *fakeList) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	if f.items == nil {
		f.items = make(map[string][]string)
	}
	for _, v := range values {
		f.items[key] = append(f.items[key], string(v.([]byte)))
	}
	cmd.SetVal(int64(len(f.items[key])))
	return cmd
}

func (f *fakeList) records(t *testing.T, key string) []EventRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []EventRecord
	for _, raw := range f.items[key] {
		var rec EventRecord
		require.NoError(t, json.Unmarshal([]byte(raw), &rec))
		out = append(out, rec)
	}
	return out
}

func (f *fakeList) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[key])
}

func TestArchiveStampsRoundsAndSequence(t *testing.T) {
	logger, _ := test.NewNullLogger()
	list := &fakeList{}
	a := NewEventArchive(list, "events", 16, logger)

	a.Record(game.StartGame(), game.NextTurn(2))
	a.Record(game.EndGame(1))
	a.Record(game.PlayerLeft(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.Run(ctx)

	recs := list.records(t, "events")
	require.Len(t, recs, 4)
	assert.Equal(t, []int{0, 1, 2, 0}, []int{recs[0].Seq, recs[1].Seq, recs[2].Seq, recs[3].Seq})
	assert.Equal(t, recs[0].RoundID, recs[2].RoundID)
	assert.NotEqual(t, recs[2].RoundID, recs[3].RoundID)
	assert.True(t, recs[2].Terminal())

	var ev game.Event
	require.NoError(t, json.Unmarshal(recs[1].Payload, &ev))
	assert.Equal(t, game.NextTurn(2), ev)
}

// A reset that publishes nothing still must not merge two rounds.
func TestArchiveStartGameOpensNewRound(t *testing.T) {
	logger, _ := test.NewNullLogger()
	list := &fakeList{}
	a := NewEventArchive(list, "events", 16, logger)

	a.Record(game.MarkReady(0), game.StartGame(), game.NextTurn(0))
	a.Record(game.MarkReady(0), game.StartGame())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.Run(ctx)

	recs := list.records(t, "events")
	require.Len(t, recs, 5)
	assert.Equal(t, []int{0, 0, 1, 2, 0}, []int{recs[0].Seq, recs[1].Seq, recs[2].Seq, recs[3].Seq, recs[4].Seq})
	assert.NotEqual(t, recs[0].RoundID, recs[1].RoundID)
	assert.Equal(t, recs[1].RoundID, recs[3].RoundID)
	assert.NotEqual(t, recs[3].RoundID, recs[4].RoundID)
	assert.Equal(t, game.EventStartGame, recs[4].Type)
}

func TestArchiveDropsWhenQueueFull(t *testing.T) {
	logger, hook := test.NewNullLogger()
	list := &fakeList{}
	a := NewEventArchive(list, "events", 1, logger)

	a.Record(game.CardPlayed(models.AceOfSpades, 0), game.NextTurn(1))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Len(t, a.pending, 1)
}

func TestArchiveRunPushesUntilCancelled(t *testing.T) {
	logger, hook := test.NewNullLogger()
	list := &fakeList{}
	a := NewEventArchive(list, "events", 16, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Run(ctx)
	}()

	a.Record(game.MarkReady(0))
	assert.Eventually(t, func() bool {
		return list.count("events") == 1
	}, time.Second, 5*time.Millisecond)

	list.mu.Lock()
	list.err = errors.New("connection refused")
	list.mu.Unlock()
	a.Record(game.MarkReady(1))
	assert.Eventually(t, func() bool {
		e := hook.LastEntry()
		return e != nil && e.Level == logrus.WarnLevel
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
