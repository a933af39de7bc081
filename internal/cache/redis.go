// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultEventQueue is the Redis list the historian drains.
const DefaultEventQueue = "premade_events"

const (
	proposalsPrefix = "premade:proposals:"
	forecastPrefix  = "premade:forecast:"
)

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
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

// Cache keeps per-viewer proposal trackers and wait forecasts in Redis, and
// publishes matchmaking events onto a list for the historian.
type Cache struct {
	rdb          *redis.Client
	queue        string
	proposalsTTL time.Duration
}

// New wraps rdb. Trackers expire after proposalsTTL without a save.
func New(rdb *redis.Client, queue string, proposalsTTL time.Duration) *Cache {
	if queue == "" {
		queue = DefaultEventQueue
	}
	return &Cache{rdb: rdb, queue: queue, proposalsTTL: proposalsTTL}
}

// Load returns the viewer's tracker, or an empty one when none is stored.
func (c *Cache) Load(ctx context.Context, viewerID uuid.UUID) (matchmaking.Tracker, error) {
	data, err := c.rdb.Get(ctx, proposalsPrefix+viewerID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return matchmaking.NewTracker(viewerID), nil
	}
	if err != nil {
		return matchmaking.Tracker{}, fmt.Errorf("failed to load proposals for %s: %w", viewerID, err)
	}

	var t matchmaking.Tracker
	if err := json.Unmarshal(data, &t); err != nil {
		return matchmaking.Tracker{}, fmt.Errorf("failed to decode proposals for %s: %w", viewerID, err)
	}
	if t.Proposals == nil {
		t.Proposals = []matchmaking.MatchProposal{}
	}
	return t, nil
}

// Save stores the tracker, refreshing its TTL. An empty tracker deletes the key.
func (c *Cache) Save(ctx context.Context, t matchmaking.Tracker) error {
	key := proposalsPrefix + t.ViewerID.String()
	if len(t.Proposals) == 0 {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to clear proposals for %s: %w", t.ViewerID, err)
		}
		return nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal proposals: %w", err)
	}
	if err := c.rdb.Set(ctx, key, data, c.proposalsTTL).Err(); err != nil {
		return fmt.Errorf("failed to save proposals for %s: %w", t.ViewerID, err)
	}
	return nil
}

// GetForecast returns nil when nothing is cached under key.
func (c *Cache) GetForecast(ctx context.Context, key string) (*matchmaking.Forecast, error) {
	data, err := c.rdb.Get(ctx, forecastPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast %s: %w", key, err)
	}
	var f matchmaking.Forecast
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode forecast %s: %w", key, err)
	}
	return &f, nil
}

// SetForecast caches f under key for ttl.
func (c *Cache) SetForecast(ctx context.Context, key string, f matchmaking.Forecast, ttl time.Duration) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	return c.rdb.Set(ctx, forecastPrefix+key, data, ttl).Err()
}

// PublishEvent serializes the event and pushes it onto the events list.
func (c *Cache) PublishEvent(ctx context.Context, ev models.MatchEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchEvent: %w", err)
	}
	if err := c.rdb.RPush(ctx, c.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", c.queue, err)
	}
	return nil
}
