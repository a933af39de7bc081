package matchmaking

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/models"
)

var t0 = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func rank(r models.Rank) *models.Rank { return &r }

func roles(rs ...models.Role) models.RoleSet { return models.RoleSet(rs) }

func newLobby(creator uuid.UUID, mode models.GameMode, rs models.RoleSet) models.Lobby {
	return models.Lobby{
		ID:             uuid.New(),
		CreatorID:      creator,
		Title:          "duo climb",
		GameMode:       mode,
		PreferredRoles: rs,
		CurrentMembers: 1,
		MaxMembers:     models.DefaultMaxMembers,
		Status:         models.LobbyWaiting,
		CreatedAt:      t0,
	}
}

func newEntry(user uuid.UUID, mode models.GameMode, solo *models.Rank, rs models.RoleSet) models.QueueEntry {
	return models.QueueEntry{
		ID:             uuid.New(),
		UserID:         user,
		GameMode:       mode,
		PreferredRoles: rs,
		RankSolo:       solo,
		CreatedAt:      t0,
	}
}
