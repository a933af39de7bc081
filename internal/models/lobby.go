// internal/models/lobby.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxMembers is a full five-player premade.
const DefaultMaxMembers = 5

// Lobby represents a row in the lobbies table. It is also the requirement side
// of matchmaking: a queued player must fit its rank range, roles and tags.
type Lobby struct {
	ID             uuid.UUID   `json:"id"`
	CreatorID      uuid.UUID   `json:"creator_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	GameMode       GameMode    `json:"game_mode"`
	PreferredRoles RoleSet     `json:"preferred_roles"`
	RankMin        *Rank       `json:"required_rank_min,omitempty"`
	RankMax        *Rank       `json:"required_rank_max,omitempty"`
	PlaystyleTags  []string    `json:"playstyle_tags,omitempty"`
	CurrentMembers int         `json:"current_members"`
	MaxMembers     int         `json:"max_members"`
	Status         LobbyStatus `json:"status"`
	ScheduledTime  *time.Time  `json:"scheduled_time,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsOpen reports whether the lobby is waiting and still has a free slot.
func (l Lobby) IsOpen() bool {
	return l.Status == LobbyWaiting && l.CurrentMembers < l.MaxMembers
}

// SlotsNeeded is the number of free slots left.
func (l Lobby) SlotsNeeded() int {
	if n := l.MaxMembers - l.CurrentMembers; n > 0 {
		return n
	}
	return 0
}
