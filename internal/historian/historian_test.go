// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/cache"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	mu      sync.Mutex
	batches [][]models.MatchEvent
	fail    bool
}

func (s *memSink) InsertEvents(_ context.Context, evs []models.MatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("db down")
	}
	s.batches = append(s.batches, evs)
	return nil
}

func (s *memSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func setup(t *testing.T, opts Options) (*Historian, *cache.Cache, *memSink, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sink := &memSink{}
	opts.Queue = cache.DefaultEventQueue
	if opts.PollTimeout == 0 {
		opts.PollTimeout = time.Second
	}
	return New(rdb, sink, opts, logger), cache.New(rdb, cache.DefaultEventQueue, time.Minute), sink, mr
}

func event(typ models.EventType) models.MatchEvent {
	return models.MatchEvent{
		Type:       typ,
		ViewerID:   uuid.New(),
		ProposalID: "lobby-entry",
		LobbyID:    uuid.New(),
		UserID:     uuid.New(),
		Score:      75,
		Timestamp:  time.Now().UnixMilli(),
	}
}

func TestHistorianFlushesFullBatch(t *testing.T) {
	h, pub, sink, _ := setup(t, Options{BatchSize: 3, FlushDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		require.NoError(t, pub.PublishEvent(ctx, event(models.EventProposalDetected)))
	}

	assert.Eventually(t, func() bool { return sink.total() == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestHistorianFlushesPartialBatchOnTimer(t *testing.T) {
	h, pub, sink, _ := setup(t, Options{BatchSize: 100, FlushDelay: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	require.NoError(t, pub.PublishEvent(ctx, event(models.EventProposalAccepted)))

	assert.Eventually(t, func() bool { return sink.total() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHistorianFlushesRemainderOnShutdown(t *testing.T) {
	h, pub, sink, mr := setup(t, Options{BatchSize: 100, FlushDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	require.NoError(t, pub.PublishEvent(ctx, event(models.EventProposalRejected)))
	require.NoError(t, pub.PublishEvent(ctx, event(models.EventProposalPruned)))
	assert.Eventually(t, func() bool {
		n, _ := mr.List(cache.DefaultEventQueue)
		return len(n) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 2, sink.total())
}

func TestHistorianSkipsMalformedPayload(t *testing.T) {
	h, pub, sink, mr := setup(t, Options{BatchSize: 1, FlushDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := mr.Lpush(cache.DefaultEventQueue, "{not json")
	require.NoError(t, err)
	go h.Run(ctx)
	require.NoError(t, pub.PublishEvent(ctx, event(models.EventAcceptConflict)))

	assert.Eventually(t, func() bool { return sink.total() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHistorianDropsBatchWhenSinkFails(t *testing.T) {
	h, _, sink, _ := setup(t, Options{BatchSize: 1})
	sink.fail = true

	h.append(event(models.EventProposalDetected))
	h.flush(context.Background())

	h.batchMu.Lock()
	defer h.batchMu.Unlock()
	assert.Empty(t, h.batch)
}

func TestHistorianStopsWhileBackingOff(t *testing.T) {
	h, _, _, mr := setup(t, Options{BatchSize: 10, FlushDelay: time.Hour})
	mr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	// let the first BLPop fail against the stopped server
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("historian kept waiting after cancellation")
	}
}
