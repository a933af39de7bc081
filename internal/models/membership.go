// internal/models/membership.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EvaluationThresholdMinutes is the shared time required to rate someone
	// and to produce a history entry on leave.
	EvaluationThresholdMinutes = 20
	// CloseHistoryThresholdMinutes is the minimum stay logged when a lobby closes.
	CloseHistoryThresholdMinutes = 5
)

// Membership is a row in lobby_members. LeftAt is nil while the member is active.
type Membership struct {
	ID               uuid.UUID  `json:"id"`
	LobbyID          uuid.UUID  `json:"lobby_id"`
	UserID           uuid.UUID  `json:"user_id"`
	Role             Role       `json:"role"`
	JoinedAt         time.Time  `json:"joined_at"`
	LeftAt           *time.Time `json:"left_at,omitempty"`
	TotalTimeMinutes int        `json:"total_time_minutes"`
	CanEvaluate      bool       `json:"can_evaluate"`
}

// Active reports whether the member has not left yet.
func (m Membership) Active() bool { return m.LeftAt == nil }

// Window returns the membership interval, using now for an active member.
func (m Membership) Window(now time.Time) (time.Time, time.Time) {
	if m.LeftAt != nil {
		return m.JoinedAt, *m.LeftAt
	}
	return m.JoinedAt, now
}

// HistoryRecord is a row in lobby_history.
type HistoryRecord struct {
	ID               uuid.UUID `json:"id"`
	LobbyID          uuid.UUID `json:"lobby_id"`
	UserID           uuid.UUID `json:"user_id"`
	LobbyTitle       string    `json:"lobby_title"`
	GameMode         GameMode  `json:"game_mode"`
	Role             Role      `json:"role"`
	JoinedAt         time.Time `json:"joined_at"`
	LeftAt           time.Time `json:"left_at"`
	TotalTimeMinutes int       `json:"total_time_minutes"`
}

// ElapsedMinutes floors the whole minutes between from and to, never negative.
func ElapsedMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// OverlapMinutes floors the whole minutes two intervals share.
func OverlapMinutes(aStart, aEnd, bStart, bEnd time.Time) int {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return ElapsedMinutes(start, end)
}
