// internal/models/event.go
package models

import "github.com/google/uuid"

// EventType names a matchmaking event recorded by the historian.
type EventType string

const (
	EventProposalDetected EventType = "proposal_detected"
	EventProposalPruned   EventType = "proposal_pruned"
	EventProposalAccepted EventType = "proposal_accepted"
	EventProposalRejected EventType = "proposal_rejected"
	EventAcceptConflict   EventType = "accept_conflict"
)

// MatchEvent is pushed onto the events queue and persisted by the historian.
type MatchEvent struct {
	Type       EventType `json:"type"`
	ViewerID   uuid.UUID `json:"viewer_id"`
	ProposalID string    `json:"proposal_id"`
	LobbyID    uuid.UUID `json:"lobby_id"`
	UserID     uuid.UUID `json:"user_id"`
	Score      int       `json:"score"`
	Timestamp  int64     `json:"timestamp"` // epoch millis
}
