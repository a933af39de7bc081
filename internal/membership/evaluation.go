// internal/membership/evaluation.go
package membership

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const placeholderNickname = "User"

// Participant is a co-member the viewer may rate.
type Participant struct {
	Profile          models.Profile     `json:"profile"`
	MinutesTogether  int                `json:"minutes_together"`
	AlreadyEvaluated bool               `json:"already_evaluated"`
	Evaluation       *models.Evaluation `json:"evaluation,omitempty"`
}

// EvaluationInput is one rating or report submitted by the viewer.
type EvaluationInput struct {
	EvaluatedID  uuid.UUID `json:"evaluated_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	IsReport     bool      `json:"is_report"`
	ReportReason string    `json:"report_reason"`
}

// Participants lists everyone who shared at least EvaluationThresholdMinutes
// with userID in the lobby, with any evaluation userID already gave them.
func (m *Manager) Participants(ctx context.Context, lobbyID, userID uuid.UUID) ([]Participant, error) {
	members, err := m.store.ListMemberships(ctx, lobbyID)
	if err != nil {
		return nil, errs.Collaborator(err, "list memberships")
	}
	mine, ok := lo.Find(members, func(r models.Membership) bool { return r.UserID == userID })
	if !ok {
		return nil, errs.NotFound("user %s was never a member of lobby %s", userID, lobbyID)
	}

	now := m.now()
	myStart, myEnd := mine.Window(now)
	together := make(map[uuid.UUID]int)
	var order []uuid.UUID
	for _, other := range members {
		if other.UserID == userID {
			continue
		}
		start, end := other.Window(now)
		minutes := models.OverlapMinutes(myStart, myEnd, start, end)
		if minutes < models.EvaluationThresholdMinutes {
			continue
		}
		if _, dup := together[other.UserID]; !dup {
			order = append(order, other.UserID)
		}
		together[other.UserID] = max(together[other.UserID], minutes)
	}
	if len(order) == 0 {
		return []Participant{}, nil
	}

	profiles, err := m.store.ProfilesByIDs(ctx, order)
	if err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Warn("participant profiles unavailable")
		profiles = map[uuid.UUID]models.Profile{}
	}
	given, err := m.store.EvaluationsBy(ctx, lobbyID, userID)
	if err != nil {
		return nil, errs.Collaborator(err, "load evaluations")
	}
	byTarget := lo.KeyBy(given, func(e models.Evaluation) uuid.UUID { return e.EvaluatedID })

	out := make([]Participant, 0, len(order))
	for _, id := range order {
		p, ok := profiles[id]
		if !ok {
			p = models.PlaceholderProfile(id, placeholderNickname)
		}
		part := Participant{Profile: p, MinutesTogether: together[id]}
		if e, ok := byTarget[id]; ok {
			part.AlreadyEvaluated = true
			part.Evaluation = &e
		}
		out = append(out, part)
	}
	return out, nil
}

// SubmitEvaluations stores the viewer's new ratings and reports. Targets the
// viewer already evaluated are skipped; at least one new evaluation is required.
func (m *Manager) SubmitEvaluations(ctx context.Context, lobbyID, evaluatorID uuid.UUID, inputs []EvaluationInput) ([]models.Evaluation, error) {
	participants, err := m.Participants(ctx, lobbyID, evaluatorID)
	if err != nil {
		return nil, err
	}
	eligible := lo.KeyBy(participants, func(p Participant) uuid.UUID { return p.Profile.UserID })

	now := m.now()
	var out []models.Evaluation
	for _, in := range inputs {
		p, ok := eligible[in.EvaluatedID]
		if !ok {
			return nil, errs.Validation("user %s did not share enough time with you in this lobby", in.EvaluatedID)
		}
		if p.AlreadyEvaluated || lo.ContainsBy(out, func(e models.Evaluation) bool { return e.EvaluatedID == in.EvaluatedID }) {
			continue
		}
		ev, keep, err := buildEvaluation(in, now)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		ev.LobbyID = lobbyID
		ev.EvaluatorID = evaluatorID
		out = append(out, ev)
	}
	if len(out) == 0 {
		return nil, errs.Validation("select at least one rating or report")
	}

	if err := m.store.InsertEvaluations(ctx, out); err != nil {
		return nil, errs.Collaborator(err, "insert evaluations")
	}
	m.log.WithFields(logrus.Fields{
		"lobby":     lobbyID,
		"evaluator": evaluatorID,
		"count":     len(out),
	}).Info("evaluations submitted")
	return out, nil
}

// buildEvaluation validates a single input. An unrated, unreported entry is
// dropped rather than rejected.
func buildEvaluation(in EvaluationInput, now time.Time) (models.Evaluation, bool, error) {
	ev := models.Evaluation{
		ID:          uuid.New(),
		EvaluatedID: in.EvaluatedID,
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   now,
	}
	if in.IsReport {
		reason := strings.ToLower(strings.TrimSpace(in.ReportReason))
		if !models.IsReportReason(reason) {
			return ev, false, errs.Validation("unknown report reason %q", in.ReportReason)
		}
		ev.IsReport = true
		ev.ReportReason = reason
		return ev, true, nil
	}
	if in.Rating == 0 {
		return ev, false, nil
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ev, false, errs.Validation("rating must be between 1 and 5, got %d", in.Rating)
	}
	ev.Rating = in.Rating
	return ev, true, nil
}
