package matchmaking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPasses(t *testing.T) {
	bounded := Requirement{
		Roles:   roles(models.RoleMid, models.RoleTop),
		RankMin: rank(models.RankSilver),
		RankMax: rank(models.RankPlatinum),
	}
	tests := []struct {
		name string
		req  Requirement
		c    Candidate
		want bool
	}{
		{"in range, shared role", bounded, Candidate{Roles: roles(models.RoleTop), Rank: rank(models.RankGold)}, true},
		{"above range", bounded, Candidate{Roles: roles(models.RoleTop), Rank: rank(models.RankMaster)}, false},
		{"unranked passes rank", bounded, Candidate{Roles: roles(models.RoleTop)}, true},
		{"no role overlap", bounded, Candidate{Roles: roles(models.RoleSupport), Rank: rank(models.RankGold)}, false},
		{"fill candidate", bounded, Candidate{Roles: roles(models.RoleFill), Rank: rank(models.RankGold)}, true},
		{
			"tags disjoint",
			Requirement{Roles: roles(models.RoleFill), Tags: []string{"chill"}},
			Candidate{Roles: roles(models.RoleMid), Tags: []string{"tryhard"}},
			false,
		},
		{
			"tags shared",
			Requirement{Roles: roles(models.RoleFill), Tags: []string{"chill", "voice"}},
			Candidate{Roles: roles(models.RoleMid), Tags: []string{"voice"}},
			true,
		},
		{
			"candidate without tags",
			Requirement{Roles: roles(models.RoleFill), Tags: []string{"chill"}},
			Candidate{Roles: roles(models.RoleMid)},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Passes(tt.req, tt.c))
		})
	}
}

func TestFilterQueuePreservesOrder(t *testing.T) {
	l := newLobby(uuid.New(), models.ModeRankedSoloDuo, roles(models.RoleMid, models.RoleADC))
	l.RankMin, l.RankMax = rank(models.RankGold), rank(models.RankDiamond)

	a := newEntry(uuid.New(), models.ModeRankedSoloDuo, rank(models.RankEmerald), roles(models.RoleADC))
	b := newEntry(uuid.New(), models.ModeRankedSoloDuo, rank(models.RankIron), roles(models.RoleADC))
	c := newEntry(uuid.New(), models.ModeRankedSoloDuo, nil, roles(models.RoleFill))
	d := newEntry(uuid.New(), models.ModeRankedSoloDuo, rank(models.RankGold), roles(models.RoleTop))

	got := FilterQueue(l, []models.QueueEntry{a, b, c, d})
	assert.Equal(t, []models.QueueEntry{a, c}, got)

	assert.Empty(t, FilterQueue(l, nil))
}

func TestFilterLobbiesUsesCreatorRank(t *testing.T) {
	gold, master := uuid.New(), uuid.New()
	profiles := map[uuid.UUID]models.Profile{
		gold:   {UserID: gold, RankSolo: rank(models.RankGold)},
		master: {UserID: master, RankSolo: rank(models.RankMaster)},
	}
	low := newLobby(gold, models.ModeRankedSoloDuo, roles(models.RoleJungle))
	high := newLobby(master, models.ModeRankedSoloDuo, roles(models.RoleJungle))
	unknown := newLobby(uuid.New(), models.ModeRankedSoloDuo, roles(models.RoleJungle))

	e := newEntry(uuid.New(), models.ModeRankedSoloDuo, rank(models.RankGold), roles(models.RoleJungle))
	e.RankMin, e.RankMax = rank(models.RankSilver), rank(models.RankPlatinum)

	got := FilterLobbies(e, []models.Lobby{high, low, unknown}, profiles)
	assert.Equal(t, []models.Lobby{low, unknown}, got)
}
