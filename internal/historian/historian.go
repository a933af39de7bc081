// internal/historian/historian.go is an asynchronous historian that pops matchmaking events from a Redis queue and persists them to PostgreSQL.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/premade/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink persists a batch of events.
type Sink interface {
	InsertEvents(ctx context.Context, evs []models.MatchEvent) error
}

// Options tunes batching.
type Options struct {
	Queue     string
	BatchSize int
	// FlushDelay bounds how long a partial batch waits before it is written.
	FlushDelay time.Duration
	// PollTimeout is the BLPop block time; it bounds how quickly Run notices cancellation.
	PollTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Queue == "" {
		o.Queue = "premade_events"
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = 3 * time.Second
	}
	return o
}

// Historian drains the event queue into the sink in batches.
type Historian struct {
	rdb  *redis.Client
	sink Sink
	opts Options
	log  *logrus.Logger

	batchMu sync.Mutex
	batch   []models.MatchEvent
}

// New constructs a Historian.
func New(rdb *redis.Client, sink Sink, opts Options, logger *logrus.Logger) *Historian {
	opts = opts.withDefaults()
	return &Historian{
		rdb:   rdb,
		sink:  sink,
		opts:  opts,
		log:   logger,
		batch: make([]models.MatchEvent, 0, opts.BatchSize),
	}
}

// Run reads the queue until ctx ends, then flushes what is left.
func (h *Historian) Run(ctx context.Context) {
	h.log.WithField("queue", h.opts.Queue).Info("premade-historian started")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.flushLoop(ctx)
	}()

	h.readLoop(ctx)
	wg.Wait()

	h.flush(context.WithoutCancel(ctx))
	h.log.Info("premade-historian shutting down")
}

// readLoop uses BLPop with a short timeout so cancellation is noticed.
func (h *Historian) readLoop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := h.rdb.BLPop(ctx, h.opts.PollTimeout, h.opts.Queue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				h.log.WithError(err).Error("BLPop failed")
				select {
				case <-ctx.Done():
				case <-time.After(h.opts.FlushDelay):
				}
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		// res[0] is the queue name and res[1] the payload.
		var ev models.MatchEvent
		if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
			h.log.WithError(err).Warn("invalid event record")
			continue
		}
		if full := h.append(ev); full {
			h.flush(ctx)
		}
	}
}

func (h *Historian) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(h.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.flush(ctx)
		}
	}
}

// append adds ev to the batch and reports whether the batch reached its size.
func (h *Historian) append(ev models.MatchEvent) bool {
	h.batchMu.Lock()
	defer h.batchMu.Unlock()
	h.batch = append(h.batch, ev)
	return len(h.batch) >= h.opts.BatchSize
}

// flush writes the current batch. The lock is held only to swap the batch out.
func (h *Historian) flush(ctx context.Context) {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	pending := h.batch
	h.batch = make([]models.MatchEvent, 0, h.opts.BatchSize)
	h.batchMu.Unlock()

	if err := h.sink.InsertEvents(ctx, pending); err != nil {
		h.log.WithError(err).WithField("events", len(pending)).Error("flush failed")
		return
	}
	h.log.WithField("events", len(pending)).Debug("flushed events")
}
