// internal/memstore/memstore.go
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
)

// Store keeps every table in memory behind one mutex. It backs tests and the
// server when no database is configured.
type Store struct {
	mu          sync.Mutex
	profiles    map[uuid.UUID]models.Profile
	lobbies     map[uuid.UUID]models.Lobby
	queue       map[uuid.UUID]models.QueueEntry
	members     []models.Membership
	history     []models.HistoryRecord
	evaluations []models.Evaluation
	trackers    map[uuid.UUID]matchmaking.Tracker
	forecasts   map[string]cachedForecast
	events      []models.MatchEvent

	now func() time.Time
}

type cachedForecast struct {
	f       matchmaking.Forecast
	expires time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		profiles:  make(map[uuid.UUID]models.Profile),
		lobbies:   make(map[uuid.UUID]models.Lobby),
		queue:     make(map[uuid.UUID]models.QueueEntry),
		trackers:  make(map[uuid.UUID]matchmaking.Tracker),
		forecasts: make(map[string]cachedForecast),
		now:       time.Now,
	}
}

// PutProfile upserts a profile.
func (s *Store) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

func (s *Store) UpsertProfile(_ context.Context, p models.Profile) error {
	s.PutProfile(p)
	return nil
}

// Events returns a copy of every published event.
func (s *Store) Events() []models.MatchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MatchEvent(nil), s.events...)
}

// History returns a copy of every history record.
func (s *Store) History() []models.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HistoryRecord(nil), s.history...)
}

func (s *Store) GetLobby(_ context.Context, lobbyID uuid.UUID) (models.Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return models.Lobby{}, errs.NotFound("lobby %s not found", lobbyID)
	}
	return l, nil
}

func (s *Store) InsertLobby(_ context.Context, l models.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lobbies[l.ID]; exists {
		return errs.Conflict("lobby %s already exists", l.ID)
	}
	s.lobbies[l.ID] = l
	return nil
}

func (s *Store) LobbiesByCreator(_ context.Context, creatorID uuid.UUID) ([]models.Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := lo.Filter(lo.Values(s.lobbies), func(l models.Lobby, _ int) bool {
		return l.CreatorID == creatorID && l.Status != models.LobbyCancelled
	})
	sortLobbies(out)
	return out, nil
}

func (s *Store) OpenLobbies(_ context.Context, mode models.GameMode, limit int) ([]models.Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := lo.Filter(lo.Values(s.lobbies), func(l models.Lobby, _ int) bool {
		return l.GameMode == mode && l.IsOpen()
	})
	sortLobbies(out)
	return head(out, limit), nil
}

func (s *Store) IncrementMembers(_ context.Context, lobbyID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok || !l.IsOpen() {
		return false, nil
	}
	l.CurrentMembers++
	if l.CurrentMembers >= l.MaxMembers {
		l.Status = models.LobbyFull
	}
	l.UpdatedAt = s.now()
	s.lobbies[lobbyID] = l
	return true, nil
}

func (s *Store) DecrementMembers(_ context.Context, lobbyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return errs.NotFound("lobby %s not found", lobbyID)
	}
	if l.CurrentMembers > 0 {
		l.CurrentMembers--
	}
	if l.Status == models.LobbyFull {
		l.Status = models.LobbyWaiting
	}
	l.UpdatedAt = s.now()
	s.lobbies[lobbyID] = l
	return nil
}

func (s *Store) SetLobbyStatus(_ context.Context, lobbyID uuid.UUID, status models.LobbyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return errs.NotFound("lobby %s not found", lobbyID)
	}
	l.Status = status
	l.UpdatedAt = s.now()
	s.lobbies[lobbyID] = l
	return nil
}

func (s *Store) ActiveMembership(_ context.Context, lobbyID, userID uuid.UUID) (*models.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := lo.Find(s.members, func(m models.Membership) bool {
		return m.LobbyID == lobbyID && m.UserID == userID && m.Active()
	})
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *Store) ListMemberships(_ context.Context, lobbyID uuid.UUID) ([]models.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.members, func(m models.Membership, _ int) bool { return m.LobbyID == lobbyID }), nil
}

func (s *Store) InsertMembership(_ context.Context, m models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lo.ContainsBy(s.members, func(x models.Membership) bool {
		return x.LobbyID == m.LobbyID && x.UserID == m.UserID && x.Active()
	}) {
		return errs.Conflict("user %s already active in lobby %s", m.UserID, m.LobbyID)
	}
	s.members = append(s.members, m)
	return nil
}

func (s *Store) UpdateMembershipExit(_ context.Context, m models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID == m.ID {
			s.members[i].LeftAt = m.LeftAt
			s.members[i].TotalTimeMinutes = m.TotalTimeMinutes
			s.members[i].CanEvaluate = m.CanEvaluate
			return nil
		}
	}
	return errs.NotFound("membership %s not found", m.ID)
}

func (s *Store) DeleteMemberships(_ context.Context, lobbyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = lo.Reject(s.members, func(m models.Membership, _ int) bool { return m.LobbyID == lobbyID })
	return nil
}

func (s *Store) UsersWithHistory(_ context.Context, lobbyID uuid.UUID, userIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]bool)
	for _, h := range s.history {
		if h.LobbyID == lobbyID && lo.Contains(userIDs, h.UserID) {
			out[h.UserID] = true
		}
	}
	return out, nil
}

func (s *Store) InsertHistory(_ context.Context, recs []models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, recs...)
	return nil
}

func (s *Store) HistoryByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := lo.Filter(s.history, func(h models.HistoryRecord, _ int) bool { return h.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].LeftAt.After(out[j].LeftAt) })
	return head(out, limit), nil
}

func (s *Store) EvaluationsBy(_ context.Context, lobbyID, evaluatorID uuid.UUID) ([]models.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.evaluations, func(e models.Evaluation, _ int) bool {
		return e.LobbyID == lobbyID && e.EvaluatorID == evaluatorID
	}), nil
}

func (s *Store) EvaluationsFor(_ context.Context, userID uuid.UUID) ([]models.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.evaluations, func(e models.Evaluation, _ int) bool { return e.EvaluatedID == userID }), nil
}

func (s *Store) InsertEvaluations(_ context.Context, evals []models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations = append(s.evaluations, evals...)
	return nil
}

func (s *Store) ProfilesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *Store) QueueByMode(_ context.Context, mode models.GameMode, limit int) ([]models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := lo.Filter(lo.Values(s.queue), func(e models.QueueEntry, _ int) bool { return e.GameMode == mode })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return head(out, limit), nil
}

func (s *Store) QueueEntryByUser(_ context.Context, userID uuid.UUID) (*models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := lo.Find(lo.Values(s.queue), func(e models.QueueEntry) bool { return e.UserID == userID })
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *Store) InsertQueueEntry(_ context.Context, e models.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.queue {
		if q.UserID == e.UserID {
			return errs.Conflict("user %s is already queued", e.UserID)
		}
	}
	s.queue[e.ID] = e
	return nil
}

func (s *Store) DeleteQueueEntry(_ context.Context, entryID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queue[entryID]; !ok {
		return false, nil
	}
	delete(s.queue, entryID)
	return true, nil
}

func (s *Store) DeleteQueueEntryByUser(_ context.Context, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range s.queue {
		if q.UserID == userID {
			delete(s.queue, id)
			return true, nil
		}
	}
	return false, nil
}

// Load implements the proposal cache.
func (s *Store) Load(_ context.Context, viewerID uuid.UUID) (matchmaking.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.trackers[viewerID]; ok {
		return t, nil
	}
	return matchmaking.NewTracker(viewerID), nil
}

// Save implements the proposal cache.
func (s *Store) Save(_ context.Context, t matchmaking.Tracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers[t.ViewerID] = t
	return nil
}

func (s *Store) GetForecast(_ context.Context, key string) (*matchmaking.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.forecasts[key]
	if !ok || s.now().After(c.expires) {
		return nil, nil
	}
	f := c.f
	return &f, nil
}

func (s *Store) SetForecast(_ context.Context, key string, f matchmaking.Forecast, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[key] = cachedForecast{f: f, expires: s.now().Add(ttl)}
	return nil
}

func (s *Store) PublishEvent(_ context.Context, ev models.MatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func sortLobbies(ls []models.Lobby) {
	sort.SliceStable(ls, func(i, j int) bool {
		if ls[i].CreatedAt.Equal(ls[j].CreatedAt) {
			return ls[i].ID.String() < ls[j].ID.String()
		}
		return ls[i].CreatedAt.Before(ls[j].CreatedAt)
	})
}

func head[T any](xs []T, limit int) []T {
	if limit > 0 && len(xs) > limit {
		return xs[:limit]
	}
	return xs
}
