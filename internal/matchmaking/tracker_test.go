package matchmaking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	viewer     uuid.UUID
	ownLobby   models.Lobby
	otherLobby models.Lobby
	queued     models.QueueEntry
	viewerQ    models.QueueEntry
	snap       Snapshot
}

// newFixture builds a viewer who both owns a lobby and sits in the queue.
func newFixture() fixture {
	viewer, other, queuedUser := uuid.New(), uuid.New(), uuid.New()

	own := newLobby(viewer, models.ModeRankedSoloDuo, roles(models.RoleMid, models.RoleSupport))
	otherLobby := newLobby(other, models.ModeRankedSoloDuo, roles(models.RoleTop))
	queued := newEntry(queuedUser, models.ModeRankedSoloDuo, rank(models.RankGold), roles(models.RoleSupport))
	viewerQ := newEntry(viewer, models.ModeRankedSoloDuo, rank(models.RankGold), roles(models.RoleTop))

	return fixture{
		viewer:     viewer,
		ownLobby:   own,
		otherLobby: otherLobby,
		queued:     queued,
		viewerQ:    viewerQ,
		snap: Snapshot{
			ViewerID:    viewer,
			OwnLobbies:  []models.Lobby{own},
			QueuePools:  map[models.GameMode][]models.QueueEntry{models.ModeRankedSoloDuo: {queued, viewerQ}},
			ViewerEntry: &viewerQ,
			OpenLobbies: []models.Lobby{own, otherLobby},
			Profiles: map[uuid.UUID]models.Profile{
				viewer: {UserID: viewer, Nickname: "viewer"},
				other:  {UserID: other, Nickname: "other"},
			},
			Now: t0,
		},
	}
}

func TestDetectOrdersCreatorSideFirst(t *testing.T) {
	f := newFixture()

	state, res := Detect(NewTracker(f.viewer), f.snap)

	require.Len(t, state.Proposals, 2)
	assert.Equal(t, ProposalID(f.ownLobby.ID, f.queued.ID), state.Proposals[0].ID)
	assert.Equal(t, ProposalID(f.otherLobby.ID, f.viewerQ.ID), state.Proposals[1].ID)
	assert.Len(t, res.Added, 2)
	assert.Empty(t, res.Pruned)

	// the viewer's own queue entry never matches their own lobby
	_, ok := state.Get(ProposalID(f.ownLobby.ID, f.viewerQ.ID))
	assert.False(t, ok)
}

func TestDetectPlaceholderProfiles(t *testing.T) {
	f := newFixture()

	state, _ := Detect(NewTracker(f.viewer), f.snap)
	p, ok := state.Get(ProposalID(f.ownLobby.ID, f.queued.ID))
	require.True(t, ok)

	assert.True(t, p.Player.Placeholder)
	assert.Equal(t, "Player", p.Player.Nickname)
	assert.Equal(t, "viewer", p.Creator.Nickname)
}

func TestDetectIsIdempotent(t *testing.T) {
	f := newFixture()

	first, _ := Detect(NewTracker(f.viewer), f.snap)
	later := f.snap
	later.Now = t0.Add(10 * time.Second)
	second, res := Detect(first, later)

	assert.Empty(t, res.Added)
	assert.Len(t, res.Refreshed, 2)
	require.Len(t, second.Proposals, len(first.Proposals))
	for i := range first.Proposals {
		assert.Equal(t, first.Proposals[i].ID, second.Proposals[i].ID)
		assert.Equal(t, first.Proposals[i].Score, second.Proposals[i].Score)
		assert.Equal(t, t0, second.Proposals[i].DetectedAt)
	}
}

func TestDetectPrunesStaleProposals(t *testing.T) {
	f := newFixture()
	state, _ := Detect(NewTracker(f.viewer), f.snap)

	// the queued player left the queue
	snap := f.snap
	snap.QueuePools = map[models.GameMode][]models.QueueEntry{models.ModeRankedSoloDuo: {f.viewerQ}}
	next, res := Detect(state, snap)

	require.Len(t, res.Pruned, 1)
	assert.Equal(t, ProposalID(f.ownLobby.ID, f.queued.ID), res.Pruned[0].ID)
	assert.Len(t, next.Proposals, 1)
}

func TestDetectSkipsFullAndForeignLobbies(t *testing.T) {
	f := newFixture()
	full := f.ownLobby
	full.CurrentMembers = full.MaxMembers
	f.snap.OwnLobbies = []models.Lobby{full}
	f.snap.ViewerEntry = nil

	state, _ := Detect(NewTracker(f.viewer), f.snap)
	assert.Empty(t, state.Proposals)
	assert.False(t, f.snap.Active())
}

func TestAccept(t *testing.T) {
	f := newFixture()
	state, _ := Detect(NewTracker(f.viewer), f.snap)
	id := ProposalID(f.ownLobby.ID, f.queued.ID)

	next, intent, err := Accept(state, id)
	require.NoError(t, err)

	assert.Equal(t, f.ownLobby.ID, intent.LobbyID)
	assert.Equal(t, f.queued.UserID, intent.UserID)
	assert.Equal(t, f.queued.ID, intent.QueueEntryID)
	assert.Equal(t, models.RoleSupport, intent.Role)

	_, ok := next.Get(id)
	assert.False(t, ok)
	assert.Len(t, state.Proposals, 2, "accept must not mutate the input state")

	_, _, err = Accept(next, id)
	assert.True(t, errs.IsNotFound(err))
}

func TestReject(t *testing.T) {
	f := newFixture()
	state, _ := Detect(NewTracker(f.viewer), f.snap)
	id := ProposalID(f.otherLobby.ID, f.viewerQ.ID)

	next, intent, err := Reject(state, id)
	require.NoError(t, err)
	assert.Equal(t, f.viewerQ.ID, intent.QueueEntryID)
	assert.Len(t, next.Proposals, 1)

	_, _, err = Reject(next, "missing")
	assert.True(t, errs.IsNotFound(err))
}
