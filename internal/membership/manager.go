// internal/membership/manager.go
package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Manager drives lobby membership: join, leave, kick and close, plus the
// history and evaluation records that fall out of them.
type Manager struct {
	store Store
	log   *logrus.Logger
	now   func() time.Time
}

// NewManager returns a Manager using the wall clock.
func NewManager(store Store, logger *logrus.Logger) *Manager {
	return &Manager{store: store, log: logger, now: time.Now}
}

// WithClock replaces the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Join admits userID to the lobby in role, taking a slot atomically.
func (m *Manager) Join(ctx context.Context, lobby models.Lobby, userID uuid.UUID, role models.Role) (models.Membership, error) {
	if lobby.Status == models.LobbyCancelled {
		return models.Membership{}, errs.Conflict("lobby %s is cancelled", lobby.ID)
	}
	existing, err := m.store.ActiveMembership(ctx, lobby.ID, userID)
	if err != nil {
		return models.Membership{}, errs.Collaborator(err, "load membership")
	}
	if existing != nil {
		return models.Membership{}, errs.Conflict("user %s is already in lobby %s", userID, lobby.ID)
	}

	ok, err := m.store.IncrementMembers(ctx, lobby.ID)
	if err != nil {
		return models.Membership{}, errs.Collaborator(err, "increment lobby members")
	}
	if !ok {
		return models.Membership{}, errs.Conflict("lobby %s is full", lobby.ID)
	}

	rec := models.Membership{
		ID:       uuid.New(),
		LobbyID:  lobby.ID,
		UserID:   userID,
		Role:     role,
		JoinedAt: m.now(),
	}
	if err := m.store.InsertMembership(ctx, rec); err != nil {
		// release the slot taken above
		if derr := m.store.DecrementMembers(ctx, lobby.ID); derr != nil {
			m.log.WithError(derr).WithField("lobby", lobby.ID).Warn("join: could not release slot")
		}
		if errs.IsConflict(err) {
			return models.Membership{}, err
		}
		return models.Membership{}, errs.Collaborator(err, "insert membership")
	}

	m.log.WithFields(logrus.Fields{
		"lobby": lobby.ID,
		"user":  userID,
		"role":  role,
	}).Info("member joined")
	return rec, nil
}

// Seat records the creator's own membership. The lobby row already counts them.
func (m *Manager) Seat(ctx context.Context, lobby models.Lobby, role models.Role) (models.Membership, error) {
	rec := models.Membership{
		ID:       uuid.New(),
		LobbyID:  lobby.ID,
		UserID:   lobby.CreatorID,
		Role:     role,
		JoinedAt: m.now(),
	}
	if err := m.store.InsertMembership(ctx, rec); err != nil {
		return models.Membership{}, errs.Collaborator(err, "insert creator membership")
	}
	return rec, nil
}

// Leave ends userID's active membership.
func (m *Manager) Leave(ctx context.Context, lobbyID, userID uuid.UUID) (models.Membership, error) {
	lobby, err := m.openLobby(ctx, lobbyID)
	if err != nil {
		return models.Membership{}, err
	}
	rec, err := m.active(ctx, lobbyID, userID)
	if err != nil {
		return models.Membership{}, err
	}
	return m.depart(ctx, lobby, rec)
}

// Kick ends targetID's membership on behalf of the lobby creator.
func (m *Manager) Kick(ctx context.Context, lobbyID, actorID, targetID uuid.UUID) (models.Membership, error) {
	lobby, err := m.openLobby(ctx, lobbyID)
	if err != nil {
		return models.Membership{}, err
	}
	if lobby.CreatorID != actorID {
		return models.Membership{}, errs.Validation("only the lobby creator can kick members")
	}
	if targetID == actorID {
		return models.Membership{}, errs.Validation("cannot kick yourself from lobby")
	}
	rec, err := m.active(ctx, lobbyID, targetID)
	if err != nil {
		return models.Membership{}, err
	}
	return m.depart(ctx, lobby, rec)
}

// Close cancels the lobby. Every active member leaves now; stays of at least
// CloseHistoryThresholdMinutes are logged, then all memberships are purged.
func (m *Manager) Close(ctx context.Context, lobbyID, actorID uuid.UUID) ([]models.HistoryRecord, error) {
	lobby, err := m.openLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if lobby.CreatorID != actorID {
		return nil, errs.Validation("only the lobby creator can close the lobby")
	}

	members, err := m.store.ListMemberships(ctx, lobbyID)
	if err != nil {
		return nil, errs.Collaborator(err, "list memberships")
	}

	now := m.now()
	var logged []models.HistoryRecord
	for _, rec := range members {
		if !rec.Active() {
			continue
		}
		rec = leftAt(rec, now)
		if err := m.store.UpdateMembershipExit(ctx, rec); err != nil {
			return nil, errs.Collaborator(err, "update membership exit")
		}
		if rec.TotalTimeMinutes >= models.CloseHistoryThresholdMinutes {
			logged = append(logged, historyFor(lobby, rec, rec.JoinedAt, now))
		}
	}
	logged = m.writeHistory(ctx, lobby.ID, logged)

	if err := m.store.SetLobbyStatus(ctx, lobbyID, models.LobbyCancelled); err != nil {
		return logged, errs.Collaborator(err, "cancel lobby")
	}
	if err := m.store.DeleteMemberships(ctx, lobbyID); err != nil {
		return logged, errs.Collaborator(err, "purge memberships")
	}

	m.log.WithFields(logrus.Fields{
		"lobby":   lobbyID,
		"members": len(members),
		"logged":  len(logged),
	}).Info("lobby closed")
	return logged, nil
}

func (m *Manager) openLobby(ctx context.Context, lobbyID uuid.UUID) (models.Lobby, error) {
	lobby, err := m.store.GetLobby(ctx, lobbyID)
	if err != nil {
		if errs.IsNotFound(err) {
			return models.Lobby{}, err
		}
		return models.Lobby{}, errs.Collaborator(err, "load lobby")
	}
	if lobby.Status == models.LobbyCancelled {
		return models.Lobby{}, errs.Conflict("lobby %s is cancelled", lobbyID)
	}
	return lobby, nil
}

func (m *Manager) active(ctx context.Context, lobbyID, userID uuid.UUID) (models.Membership, error) {
	rec, err := m.store.ActiveMembership(ctx, lobbyID, userID)
	if err != nil {
		return models.Membership{}, errs.Collaborator(err, "load membership")
	}
	if rec == nil {
		return models.Membership{}, errs.NotFound("user %s has no active membership in lobby %s", userID, lobbyID)
	}
	return *rec, nil
}

// depart is shared by leave and kick.
func (m *Manager) depart(ctx context.Context, lobby models.Lobby, rec models.Membership) (models.Membership, error) {
	now := m.now()
	rec = leftAt(rec, now)

	if err := m.store.UpdateMembershipExit(ctx, rec); err != nil {
		return models.Membership{}, errs.Collaborator(err, "update membership exit")
	}
	if err := m.store.DecrementMembers(ctx, lobby.ID); err != nil {
		return rec, errs.Collaborator(err, "decrement lobby members")
	}

	if rec.CanEvaluate {
		m.propagateHistory(ctx, lobby, rec, now)
	}

	m.log.WithFields(logrus.Fields{
		"lobby":   lobby.ID,
		"user":    rec.UserID,
		"minutes": rec.TotalTimeMinutes,
	}).Info("member left")
	return rec, nil
}

// propagateHistory logs the leaver and every co-member who shared at least
// EvaluationThresholdMinutes with them. Co-members get their own times.
func (m *Manager) propagateHistory(ctx context.Context, lobby models.Lobby, leaver models.Membership, now time.Time) {
	recs := []models.HistoryRecord{historyFor(lobby, leaver, leaver.JoinedAt, now)}

	members, err := m.store.ListMemberships(ctx, lobby.ID)
	if err != nil {
		m.log.WithError(err).WithField("lobby", lobby.ID).Warn("history propagation skipped: list memberships")
	} else {
		seen := map[uuid.UUID]bool{leaver.UserID: true}
		for _, other := range members {
			if seen[other.UserID] {
				continue
			}
			start, end := other.Window(now)
			if models.OverlapMinutes(leaver.JoinedAt, now, start, end) < models.EvaluationThresholdMinutes {
				continue
			}
			seen[other.UserID] = true
			recs = append(recs, historyFor(lobby, other, start, end))
		}
	}
	m.writeHistory(ctx, lobby.ID, recs)
}

// writeHistory inserts the records whose users have none yet for the lobby.
// Failures are logged and swallowed; the written records are returned.
func (m *Manager) writeHistory(ctx context.Context, lobbyID uuid.UUID, recs []models.HistoryRecord) []models.HistoryRecord {
	if len(recs) == 0 {
		return nil
	}
	ids := lo.Map(recs, func(r models.HistoryRecord, _ int) uuid.UUID { return r.UserID })
	existing, err := m.store.UsersWithHistory(ctx, lobbyID, ids)
	if err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Warn("history lookup failed")
		return nil
	}
	fresh := lo.Reject(recs, func(r models.HistoryRecord, _ int) bool { return existing[r.UserID] })
	if len(fresh) == 0 {
		return nil
	}
	if err := m.store.InsertHistory(ctx, fresh); err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Warn("history insert failed")
		return nil
	}
	return fresh
}

func leftAt(rec models.Membership, now time.Time) models.Membership {
	rec.LeftAt = &now
	rec.TotalTimeMinutes = models.ElapsedMinutes(rec.JoinedAt, now)
	rec.CanEvaluate = rec.TotalTimeMinutes >= models.EvaluationThresholdMinutes
	return rec
}

func historyFor(lobby models.Lobby, rec models.Membership, start, end time.Time) models.HistoryRecord {
	return models.HistoryRecord{
		ID:               uuid.New(),
		LobbyID:          lobby.ID,
		UserID:           rec.UserID,
		LobbyTitle:       lobby.Title,
		GameMode:         lobby.GameMode,
		Role:             rec.Role,
		JoinedAt:         start,
		LeftAt:           end,
		TotalTimeMinutes: models.ElapsedMinutes(start, end),
	}
}
