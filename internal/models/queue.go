// internal/models/queue.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntry is a player waiting in the matchmaking queue for a game mode.
// RankSolo and RankFlex are copied from the profile on entry; RankMin/RankMax
// are the bounds the player wants a lobby creator to sit in.
type QueueEntry struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	GameMode       GameMode  `json:"game_mode"`
	PreferredRoles RoleSet   `json:"preferred_roles"`
	RankSolo       *Rank     `json:"rank_solo,omitempty"`
	RankFlex       *Rank     `json:"rank_flex,omitempty"`
	RankMin        *Rank     `json:"required_rank_min,omitempty"`
	RankMax        *Rank     `json:"required_rank_max,omitempty"`
	PlaystyleTags  []string  `json:"playstyle_tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RankFor returns the rank relevant to mode.
func (q QueueEntry) RankFor(mode GameMode) *Rank {
	return rankForMode(mode, q.RankSolo, q.RankFlex)
}
