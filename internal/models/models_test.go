package models

import (
	"testing"
	"time"

	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRank(t *testing.T) {
	r, err := ParseRank(" Gold ")
	require.NoError(t, err)
	assert.Equal(t, RankGold, r)

	_, err = ParseRank("wood")
	assert.True(t, errs.IsValidation(err))

	opt, err := ParseOptionalRank("")
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestParseRoleSetDedupes(t *testing.T) {
	rs, err := ParseRoleSet([]string{"mid", "adc", "mid"})
	require.NoError(t, err)
	assert.Equal(t, RoleSet{RoleMid, RoleADC}, rs)

	_, err = ParseRoleSet([]string{"mid", "carry"})
	assert.True(t, errs.IsValidation(err))
}

func TestRankFor(t *testing.T) {
	solo, flex := RankGold, RankDiamond
	q := QueueEntry{RankSolo: &solo, RankFlex: &flex}
	assert.Equal(t, RankDiamond, *q.RankFor(ModeRankedFlex))
	assert.Equal(t, RankGold, *q.RankFor(ModeRankedSoloDuo))
	assert.Equal(t, RankGold, *q.RankFor(ModeARAM))
}

func TestLobbyIsOpen(t *testing.T) {
	l := Lobby{Status: LobbyWaiting, CurrentMembers: 4, MaxMembers: 5}
	assert.True(t, l.IsOpen())
	assert.Equal(t, 1, l.SlotsNeeded())

	l.CurrentMembers = 5
	assert.False(t, l.IsOpen())

	l.CurrentMembers = 2
	l.Status = LobbyCancelled
	assert.False(t, l.IsOpen())
}

func TestElapsedAndOverlapMinutes(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 19, ElapsedMinutes(t0, t0.Add(19*time.Minute+59*time.Second)))
	assert.Equal(t, 0, ElapsedMinutes(t0, t0.Add(-time.Minute)))

	// [0,30] and [10,50] share 20 minutes
	assert.Equal(t, 20, OverlapMinutes(t0, t0.Add(30*time.Minute), t0.Add(10*time.Minute), t0.Add(50*time.Minute)))
	// disjoint
	assert.Equal(t, 0, OverlapMinutes(t0, t0.Add(5*time.Minute), t0.Add(10*time.Minute), t0.Add(20*time.Minute)))
}

func TestIsReportReason(t *testing.T) {
	assert.True(t, IsReportReason("harassment"))
	assert.False(t, IsReportReason("bad at game"))
}
