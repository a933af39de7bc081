// internal/matchmaking/filter.go
package matchmaking

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/jason-s-yu/premade/internal/rating"
	"github.com/samber/lo"
)

// Requirement is the side imposing constraints.
type Requirement struct {
	Roles   models.RoleSet
	Tags    []string
	RankMin *models.Rank
	RankMax *models.Rank
}

// Candidate is the side being checked against a Requirement.
type Candidate struct {
	Roles models.RoleSet
	Tags  []string
	Rank  *models.Rank
}

// Passes applies the rank, role and playstyle checks in that order.
// Missing data never excludes: an absent bound is open, an absent rank passes
// and tags only matter when both sides declared some.
func Passes(req Requirement, c Candidate) bool {
	if !rating.InRange(c.Rank, req.RankMin, req.RankMax) {
		return false
	}
	if !RolesOverlap(req.Roles, c.Roles) {
		return false
	}
	if len(req.Tags) > 0 && len(c.Tags) > 0 && sharedTags(req.Tags, c.Tags) == 0 {
		return false
	}
	return true
}

// LobbyRequirement views a lobby as a Requirement.
func LobbyRequirement(l models.Lobby) Requirement {
	return Requirement{Roles: l.PreferredRoles, Tags: l.PlaystyleTags, RankMin: l.RankMin, RankMax: l.RankMax}
}

// FilterQueue keeps the queue entries that satisfy the lobby's requirement,
// in pool order.
func FilterQueue(lobby models.Lobby, pool []models.QueueEntry) []models.QueueEntry {
	req := LobbyRequirement(lobby)
	return lo.Filter(pool, func(q models.QueueEntry, _ int) bool {
		return Passes(req, Candidate{Roles: q.PreferredRoles, Tags: q.PlaystyleTags, Rank: q.RankFor(lobby.GameMode)})
	})
}

// FilterLobbies keeps the lobbies a queued player would accept, in pool order.
// The entry's desired bounds are checked against the lobby creator's rank for
// the lobby's mode; a creator without a loaded profile is treated as unranked.
func FilterLobbies(entry models.QueueEntry, pool []models.Lobby, profiles map[uuid.UUID]models.Profile) []models.Lobby {
	req := Requirement{Roles: entry.PreferredRoles, Tags: entry.PlaystyleTags, RankMin: entry.RankMin, RankMax: entry.RankMax}
	return lo.Filter(pool, func(l models.Lobby, _ int) bool {
		var creatorRank *models.Rank
		if p, ok := profiles[l.CreatorID]; ok {
			creatorRank = p.RankFor(l.GameMode)
		}
		return Passes(req, Candidate{Roles: l.PreferredRoles, Tags: l.PlaystyleTags, Rank: creatorRank})
	})
}
