// internal/finder/ports.go
package finder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/membership"
	"github.com/jason-s-yu/premade/internal/models"
)

// Store is the persistence the finder reads snapshots from and writes intents to.
type Store interface {
	membership.Store

	// LobbiesByCreator returns the creator's lobbies that are not cancelled.
	LobbiesByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Lobby, error)
	// OpenLobbies returns waiting lobbies of mode with a free slot, oldest first.
	OpenLobbies(ctx context.Context, mode models.GameMode, limit int) ([]models.Lobby, error)
	InsertLobby(ctx context.Context, l models.Lobby) error

	// QueueByMode returns queue entries of mode, oldest first.
	QueueByMode(ctx context.Context, mode models.GameMode, limit int) ([]models.QueueEntry, error)
	// QueueEntryByUser returns nil when the user is not queued.
	QueueEntryByUser(ctx context.Context, userID uuid.UUID) (*models.QueueEntry, error)
	// InsertQueueEntry fails with a conflict when the user already has an entry.
	InsertQueueEntry(ctx context.Context, e models.QueueEntry) error
	// DeleteQueueEntry reports whether the entry existed.
	DeleteQueueEntry(ctx context.Context, entryID uuid.UUID) (bool, error)
	// DeleteQueueEntryByUser reports whether an entry was removed.
	DeleteQueueEntryByUser(ctx context.Context, userID uuid.UUID) (bool, error)

	// HistoryByUser returns history newest first.
	HistoryByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.HistoryRecord, error)
	// EvaluationsFor returns the evaluations a user received.
	EvaluationsFor(ctx context.Context, userID uuid.UUID) ([]models.Evaluation, error)

	UpsertProfile(ctx context.Context, p models.Profile) error
}

// ProposalCache holds each viewer's tracker between detection cycles.
type ProposalCache interface {
	// Load returns an empty tracker when nothing is cached for the viewer.
	Load(ctx context.Context, viewerID uuid.UUID) (matchmaking.Tracker, error)
	Save(ctx context.Context, t matchmaking.Tracker) error
}

// ForecastCache memoizes wait forecasts between refreshes.
type ForecastCache interface {
	GetForecast(ctx context.Context, key string) (*matchmaking.Forecast, error)
	SetForecast(ctx context.Context, key string, f matchmaking.Forecast, ttl time.Duration) error
}

// EventPublisher ships matchmaking events to the historian.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.MatchEvent) error
}
