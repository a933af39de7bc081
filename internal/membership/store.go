// internal/membership/store.go
package membership

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/models"
)

// Store is the persistence the lifecycle needs. Every method is a single-row or
// single-statement operation; nothing spans a transaction.
type Store interface {
	GetLobby(ctx context.Context, lobbyID uuid.UUID) (models.Lobby, error)

	// ActiveMembership returns nil when the user has no active record in the lobby.
	ActiveMembership(ctx context.Context, lobbyID, userID uuid.UUID) (*models.Membership, error)
	// ListMemberships returns every record of the lobby, active or not, in join order.
	ListMemberships(ctx context.Context, lobbyID uuid.UUID) ([]models.Membership, error)
	InsertMembership(ctx context.Context, m models.Membership) error
	// UpdateMembershipExit persists left_at, total_time_minutes and can_evaluate.
	UpdateMembershipExit(ctx context.Context, m models.Membership) error
	DeleteMemberships(ctx context.Context, lobbyID uuid.UUID) error

	// IncrementMembers admits one member if the lobby is waiting and has room,
	// flipping it to full on the last slot. It reports false when no slot was taken.
	IncrementMembers(ctx context.Context, lobbyID uuid.UUID) (bool, error)
	// DecrementMembers frees one slot and reopens a full lobby.
	DecrementMembers(ctx context.Context, lobbyID uuid.UUID) error
	SetLobbyStatus(ctx context.Context, lobbyID uuid.UUID, status models.LobbyStatus) error

	// UsersWithHistory returns which of userIDs already have a history record for the lobby.
	UsersWithHistory(ctx context.Context, lobbyID uuid.UUID, userIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	InsertHistory(ctx context.Context, recs []models.HistoryRecord) error

	EvaluationsBy(ctx context.Context, lobbyID, evaluatorID uuid.UUID) ([]models.Evaluation, error)
	InsertEvaluations(ctx context.Context, evals []models.Evaluation) error

	// ProfilesByIDs omits ids with no profile row.
	ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error)
}
