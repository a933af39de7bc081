package membership

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
)

// Member is a membership record with the member's profile attached.
type Member struct {
	models.Membership
	Profile models.Profile `json:"profile"`
}

// LobbyDetail is a lobby and everyone who joined it, in join order.
type LobbyDetail struct {
	Lobby   models.Lobby `json:"lobby"`
	Members []Member     `json:"members"`
}

// Detail loads a lobby with its members. Members who left keep their record
// with left_at set. Missing profiles are filled with placeholders.
func (m *Manager) Detail(ctx context.Context, lobbyID uuid.UUID) (LobbyDetail, error) {
	lobby, err := m.store.GetLobby(ctx, lobbyID)
	if err != nil {
		if errs.IsNotFound(err) {
			return LobbyDetail{}, err
		}
		return LobbyDetail{}, errs.Collaborator(err, "load lobby")
	}
	records, err := m.store.ListMemberships(ctx, lobbyID)
	if err != nil {
		return LobbyDetail{}, errs.Collaborator(err, "list memberships")
	}

	detail := LobbyDetail{Lobby: lobby, Members: make([]Member, 0, len(records))}
	if len(records) == 0 {
		return detail, nil
	}

	ids := lo.Uniq(lo.Map(records, func(r models.Membership, _ int) uuid.UUID { return r.UserID }))
	profiles, err := m.store.ProfilesByIDs(ctx, ids)
	if err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Warn("member profiles unavailable")
		profiles = map[uuid.UUID]models.Profile{}
	}
	for _, r := range records {
		p, ok := profiles[r.UserID]
		if !ok {
			p = models.PlaceholderProfile(r.UserID, placeholderNickname)
		}
		detail.Members = append(detail.Members, Member{Membership: r, Profile: p})
	}
	return detail, nil
}
