// internal/scheduler/watcher.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/finder"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Service is the part of the finder a watcher drives.
type Service interface {
	Detect(ctx context.Context, viewerID uuid.UUID) (finder.DetectOutcome, error)
	EstimateForLobby(ctx context.Context, lobbyID uuid.UUID) (matchmaking.Forecast, error)
	EstimateForQueue(ctx context.Context, userID uuid.UUID) (matchmaking.Forecast, error)
}

// Config holds the polling cadence.
type Config struct {
	DetectInterval   time.Duration
	EstimateInterval time.Duration
	ClockInterval    time.Duration
}

// DefaultConfig polls detection every 10s, refreshes the estimate every 30s and
// ticks the queue clock every second.
func DefaultConfig() Config {
	return Config{
		DetectInterval:   10 * time.Second,
		EstimateInterval: 30 * time.Second,
		ClockInterval:    time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DetectInterval <= 0 {
		c.DetectInterval = d.DetectInterval
	}
	if c.EstimateInterval <= 0 {
		c.EstimateInterval = d.EstimateInterval
	}
	if c.ClockInterval <= 0 {
		c.ClockInterval = d.ClockInterval
	}
	return c
}

// Status is the latest view a watcher holds for its viewer.
type Status struct {
	ViewerID       uuid.UUID                   `json:"viewer_id"`
	LobbyID        *uuid.UUID                  `json:"lobby_id,omitempty"`
	Running        bool                        `json:"running"`
	Proposals      []matchmaking.MatchProposal `json:"proposals"`
	Forecast       *matchmaking.Forecast       `json:"forecast,omitempty"`
	ElapsedSeconds int                         `json:"elapsed_seconds"`
	Elapsed        string                      `json:"elapsed"`
	Cycles         int                         `json:"cycles"`
	LastError      string                      `json:"last_error,omitempty"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// Watcher polls detection and estimates for one viewer until the viewer has
// nothing left to match, it is stopped, or its context ends. A result that
// arrives after the watcher stopped is dropped.
type Watcher struct {
	viewerID uuid.UUID
	lobbyID  *uuid.UUID
	svc      Service
	cfg      Config
	log      *logrus.Logger
	now      func() time.Time
	clock    matchmaking.QueueClock

	mu      sync.Mutex
	status  Status
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	// onStop runs once after the loop exits.
	onStop func(*Watcher)
}

// NewWatcher prepares a watcher for viewerID. With a lobbyID the estimate is
// the lobby fill forecast; otherwise it is the viewer's queue wait.
func NewWatcher(viewerID uuid.UUID, lobbyID *uuid.UUID, svc Service, cfg Config, logger *logrus.Logger) *Watcher {
	return &Watcher{
		viewerID: viewerID,
		lobbyID:  lobbyID,
		svc:      svc,
		cfg:      cfg.withDefaults(),
		log:      logger,
		now:      time.Now,
		done:     make(chan struct{}),
		status:   Status{ViewerID: viewerID, LobbyID: lobbyID, Proposals: []matchmaking.MatchProposal{}},
	}
}

// WithClock replaces the time source used for the queue clock.
func (w *Watcher) WithClock(now func() time.Time) *Watcher {
	w.now = now
	return w
}

// ViewerID returns the viewer this watcher serves.
func (w *Watcher) ViewerID() uuid.UUID { return w.viewerID }

// Start launches the polling loop. It runs a first cycle immediately.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	w.cancel = cancel
	w.clock = matchmaking.QueueClock{Start: w.now()}
	w.status.Running = true
	w.mu.Unlock()

	metrics.ActiveWatchers.Inc()
	go w.run(ctx)
}

// Stop ends the loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
		<-w.done
	}
}

// Done is closed once the loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Status returns a copy of the latest state.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.status
	s.Proposals = append([]matchmaking.MatchProposal(nil), w.status.Proposals...)
	return s
}

func (w *Watcher) run(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		w.stopped = true
		w.status.Running = false
		w.mu.Unlock()
		metrics.ActiveWatchers.Dec()
		close(w.done)
		if w.onStop != nil {
			w.onStop(w)
		}
	}()

	detect := time.NewTicker(w.cfg.DetectInterval)
	defer detect.Stop()
	estimate := time.NewTicker(w.cfg.EstimateInterval)
	defer estimate.Stop()
	clock := time.NewTicker(w.cfg.ClockInterval)
	defer clock.Stop()

	if !w.detect(ctx) {
		return
	}
	w.estimate(ctx)
	w.tick()

	for {
		select {
		case <-ctx.Done():
			return
		case <-detect.C:
			if !w.detect(ctx) {
				return
			}
		case <-estimate.C:
			w.estimate(ctx)
		case <-clock.C:
			w.tick()
		}
	}
}

// detect runs one cycle and reports whether the watcher should keep going.
func (w *Watcher) detect(ctx context.Context) bool {
	out, err := w.svc.Detect(ctx, w.viewerID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || ctx.Err() != nil {
		return false
	}
	w.status.Cycles++
	w.status.UpdatedAt = w.now()
	if err != nil {
		// the next tick is the retry
		w.status.LastError = err.Error()
		w.log.WithError(err).WithField("viewer", w.viewerID).Warn("detection cycle failed")
		return true
	}
	w.status.LastError = ""
	w.status.Proposals = out.Proposals
	if !out.Active {
		w.log.WithField("viewer", w.viewerID).Info("viewer no longer matching; watcher stopping")
		return false
	}
	return true
}

func (w *Watcher) estimate(ctx context.Context) {
	var (
		f   matchmaking.Forecast
		err error
	)
	if w.lobbyID != nil {
		f, err = w.svc.EstimateForLobby(ctx, *w.lobbyID)
	} else {
		f, err = w.svc.EstimateForQueue(ctx, w.viewerID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || ctx.Err() != nil {
		return
	}
	if err != nil {
		w.log.WithError(err).WithField("viewer", w.viewerID).Debug("estimate unavailable")
		return
	}
	w.status.Forecast = &f
}

func (w *Watcher) tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	secs := w.clock.ElapsedSeconds(w.now())
	w.status.ElapsedSeconds = secs
	w.status.Elapsed = matchmaking.FormatElapsed(secs)
}
