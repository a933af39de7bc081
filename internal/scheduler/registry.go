// internal/scheduler/registry.go
package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry keeps at most one running watcher per viewer.
type Registry struct {
	mu       sync.Mutex
	watchers map[uuid.UUID]*Watcher

	ctx context.Context
	svc Service
	cfg Config
	log *logrus.Logger
}

// NewRegistry creates a registry whose watchers live until ctx ends or they stop.
func NewRegistry(ctx context.Context, svc Service, cfg Config, logger *logrus.Logger) *Registry {
	return &Registry{
		watchers: make(map[uuid.UUID]*Watcher),
		ctx:      ctx,
		svc:      svc,
		cfg:      cfg,
		log:      logger,
	}
}

// Watch starts a watcher for viewerID, replacing one that is already running.
func (r *Registry) Watch(viewerID uuid.UUID, lobbyID *uuid.UUID) *Watcher {
	w := NewWatcher(viewerID, lobbyID, r.svc, r.cfg, r.log)
	w.onStop = r.forget

	r.mu.Lock()
	prev := r.watchers[viewerID]
	r.watchers[viewerID] = w
	r.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	w.Start(r.ctx)
	r.log.WithField("viewer", viewerID).Debug("watcher started")
	return w
}

// Get returns the viewer's watcher if one is registered.
func (r *Registry) Get(viewerID uuid.UUID) (*Watcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watchers[viewerID]
	return w, ok
}

// Unwatch stops the viewer's watcher. It reports whether one was running.
func (r *Registry) Unwatch(viewerID uuid.UUID) bool {
	r.mu.Lock()
	w, ok := r.watchers[viewerID]
	delete(r.watchers, viewerID)
	r.mu.Unlock()

	if ok {
		w.Stop()
	}
	return ok
}

// Len returns the number of registered watchers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

// StopAll stops every watcher, used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	all := make([]*Watcher, 0, len(r.watchers))
	for id, w := range r.watchers {
		all = append(all, w)
		delete(r.watchers, id)
	}
	r.mu.Unlock()

	for _, w := range all {
		w.Stop()
	}
}

// forget drops w once its loop exits, unless it was already replaced.
func (r *Registry) forget(w *Watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.watchers[w.viewerID]; ok && cur == w {
		delete(r.watchers, w.viewerID)
	}
}
