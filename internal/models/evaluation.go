// internal/models/evaluation.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportReasons is the fixed set of reasons a report may carry.
var ReportReasons = []string{
	"toxic behavior",
	"griefing/sabotage",
	"spam/flood",
	"inappropriate language",
	"harassment",
	"other",
}

// IsReportReason reports whether reason is one of ReportReasons.
func IsReportReason(reason string) bool {
	for _, r := range ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// Evaluation is a row in user_evaluations. Reports always carry Rating 0.
type Evaluation struct {
	ID           uuid.UUID `json:"id"`
	LobbyID      uuid.UUID `json:"lobby_id"`
	EvaluatorID  uuid.UUID `json:"evaluator_id"`
	EvaluatedID  uuid.UUID `json:"evaluated_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	IsReport     bool      `json:"is_report"`
	ReportReason string    `json:"report_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
