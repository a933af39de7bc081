// internal/matchmaking/tracker.go
package matchmaking

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
)

const (
	placeholderPlayer  = "Player"
	placeholderCreator = "Lobby creator"
)

// MatchProposal pairs a lobby with a queue entry that passed the filter.
type MatchProposal struct {
	ID         string            `json:"id"`
	Lobby      models.Lobby      `json:"lobby"`
	Entry      models.QueueEntry `json:"queue_entry"`
	Creator    models.Profile    `json:"creator_profile"`
	Player     models.Profile    `json:"player_profile"`
	Score      int               `json:"compatibility_score"`
	DetectedAt time.Time         `json:"detected_at"`
}

// ProposalID is the pair identity used for deduplication.
func ProposalID(lobbyID, entryID uuid.UUID) string {
	return lobbyID.String() + "-" + entryID.String()
}

// Tracker is one viewer's set of open proposals, in detection order.
// Transitions return a new Tracker and leave the receiver untouched.
type Tracker struct {
	ViewerID  uuid.UUID       `json:"viewer_id"`
	Proposals []MatchProposal `json:"proposals"`
}

// NewTracker returns an empty tracker for viewerID.
func NewTracker(viewerID uuid.UUID) Tracker {
	return Tracker{ViewerID: viewerID, Proposals: []MatchProposal{}}
}

// Get looks up a proposal by ID.
func (t Tracker) Get(id string) (MatchProposal, bool) {
	return lo.Find(t.Proposals, func(p MatchProposal) bool { return p.ID == id })
}

// Remove drops a proposal by ID. Unknown IDs are a no-op.
func (t Tracker) Remove(id string) Tracker {
	return Tracker{
		ViewerID:  t.ViewerID,
		Proposals: lo.Reject(t.Proposals, func(p MatchProposal, _ int) bool { return p.ID == id }),
	}
}

// Snapshot is everything one detection cycle reads.
type Snapshot struct {
	ViewerID uuid.UUID
	// OwnLobbies are lobbies created by the viewer.
	OwnLobbies []models.Lobby
	// QueuePools holds queue entries keyed by game mode.
	QueuePools map[models.GameMode][]models.QueueEntry
	// ViewerEntry is the viewer's own queue entry, if any.
	ViewerEntry *models.QueueEntry
	// OpenLobbies are waiting lobbies for the viewer entry's mode.
	OpenLobbies []models.Lobby
	// Profiles of every creator and queued user referenced above.
	Profiles map[uuid.UUID]models.Profile
	Now      time.Time
}

// Active reports whether the viewer still has something to match: an open
// lobby of their own or a queue entry.
func (s Snapshot) Active() bool {
	if s.ViewerEntry != nil {
		return true
	}
	return lo.SomeBy(s.OwnLobbies, func(l models.Lobby) bool {
		return l.CreatorID == s.ViewerID && l.IsOpen()
	})
}

// DetectResult reports what a cycle changed.
type DetectResult struct {
	Added     []MatchProposal
	Refreshed []MatchProposal
	Pruned    []MatchProposal
}

// Detect runs one detection cycle. Proposals for the viewer's lobbies come
// first, then proposals for the viewer's queue entry. A proposal held in state
// that no longer passes the filter is pruned.
func Detect(state Tracker, snap Snapshot) (Tracker, DetectResult) {
	var found []MatchProposal
	seen := make(map[string]bool)
	add := func(l models.Lobby, e models.QueueEntry) {
		id := ProposalID(l.ID, e.ID)
		if seen[id] {
			return
		}
		seen[id] = true
		found = append(found, MatchProposal{
			ID:         id,
			Lobby:      l,
			Entry:      e,
			Creator:    profileOr(snap.Profiles, l.CreatorID, placeholderCreator),
			Player:     profileOr(snap.Profiles, e.UserID, placeholderPlayer),
			Score:      Score(l, e),
			DetectedAt: snap.Now,
		})
	}

	for _, l := range snap.OwnLobbies {
		if l.CreatorID != snap.ViewerID || !l.IsOpen() {
			continue
		}
		pool := lo.Filter(snap.QueuePools[l.GameMode], func(e models.QueueEntry, _ int) bool {
			return e.UserID != l.CreatorID
		})
		for _, e := range FilterQueue(l, pool) {
			add(l, e)
		}
	}

	if e := snap.ViewerEntry; e != nil {
		pool := lo.Filter(snap.OpenLobbies, func(l models.Lobby, _ int) bool {
			return l.GameMode == e.GameMode && l.IsOpen() && l.CreatorID != snap.ViewerID
		})
		for _, l := range FilterLobbies(*e, pool, snap.Profiles) {
			add(l, *e)
		}
	}

	var res DetectResult
	next := Tracker{ViewerID: snap.ViewerID, Proposals: make([]MatchProposal, 0, len(found))}
	for _, p := range found {
		if prev, ok := state.Get(p.ID); ok {
			p.DetectedAt = prev.DetectedAt
			res.Refreshed = append(res.Refreshed, p)
		} else {
			res.Added = append(res.Added, p)
		}
		next.Proposals = append(next.Proposals, p)
	}
	for _, p := range state.Proposals {
		if !seen[p.ID] {
			res.Pruned = append(res.Pruned, p)
		}
	}
	return next, res
}

func profileOr(profiles map[uuid.UUID]models.Profile, id uuid.UUID, nickname string) models.Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return models.PlaceholderProfile(id, nickname)
}

// AcceptIntent is the set of writes an accepted proposal requires:
// increment the lobby, add the member, drop the queue entry.
type AcceptIntent struct {
	ProposalID   string
	LobbyID      uuid.UUID
	UserID       uuid.UUID
	QueueEntryID uuid.UUID
	Role         models.Role
}

// RejectIntent drops the candidate's queue entry entirely.
type RejectIntent struct {
	ProposalID   string
	UserID       uuid.UUID
	QueueEntryID uuid.UUID
}

// Accept removes the proposal and returns the writes that admit the player.
// The role falls back to fill when the role sets only matched through a wildcard
// with nothing on the other side.
func Accept(state Tracker, id string) (Tracker, AcceptIntent, error) {
	p, ok := state.Get(id)
	if !ok {
		return state, AcceptIntent{}, errs.NotFound("proposal %s not found", id)
	}
	role, ok := PickSharedRole(p.Lobby.PreferredRoles, p.Entry.PreferredRoles)
	if !ok {
		role = models.RoleFill
	}
	return state.Remove(id), AcceptIntent{
		ProposalID:   id,
		LobbyID:      p.Lobby.ID,
		UserID:       p.Entry.UserID,
		QueueEntryID: p.Entry.ID,
		Role:         role,
	}, nil
}

// Reject removes the proposal and returns the write that pulls the candidate
// out of matchmaking.
func Reject(state Tracker, id string) (Tracker, RejectIntent, error) {
	p, ok := state.Get(id)
	if !ok {
		return state, RejectIntent{}, errs.NotFound("proposal %s not found", id)
	}
	return state.Remove(id), RejectIntent{
		ProposalID:   id,
		UserID:       p.Entry.UserID,
		QueueEntryID: p.Entry.ID,
	}, nil
}
