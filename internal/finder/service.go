// internal/finder/service.go
package finder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/membership"
	"github.com/jason-s-yu/premade/internal/metrics"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/jason-s-yu/premade/internal/rating"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPoolLimit bounds the rows read per mode in one detection cycle.
	DefaultPoolLimit = 100
	// DefaultHistoryLimit bounds a history listing.
	DefaultHistoryLimit = 50
	// ForecastTTL matches the estimate refresh interval.
	ForecastTTL = 30 * time.Second

	minTitleLength = 3
)

// Options tunes a Service.
type Options struct {
	PoolLimit    int
	HistoryLimit int
}

// Service runs the matchmaking flows: detection, accept, reject and estimate,
// plus creating lobbies and entering or leaving the queue.
type Service struct {
	store     Store
	proposals ProposalCache
	forecasts ForecastCache
	events    EventPublisher
	members   *membership.Manager
	log       *logrus.Logger
	now       func() time.Time
	opts      Options
}

// NewService wires a Service. forecasts and events may be nil.
func NewService(store Store, proposals ProposalCache, forecasts ForecastCache, events EventPublisher, members *membership.Manager, logger *logrus.Logger, opts Options) *Service {
	if opts.PoolLimit <= 0 {
		opts.PoolLimit = DefaultPoolLimit
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Service{
		store:     store,
		proposals: proposals,
		forecasts: forecasts,
		events:    events,
		members:   members,
		log:       logger,
		now:       time.Now,
		opts:      opts,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Members exposes the membership manager for lifecycle endpoints.
func (s *Service) Members() *membership.Manager { return s.members }

// DetectOutcome is the result of one detection cycle.
type DetectOutcome struct {
	Proposals []matchmaking.MatchProposal `json:"proposals"`
	Added     int                         `json:"added"`
	Pruned    int                         `json:"pruned"`
	// Active is false once the viewer has neither an open lobby nor a queue entry.
	Active bool `json:"active"`
}

// Detect runs a detection cycle for viewerID. Any read failure aborts the
// cycle; the next poll is the retry.
func (s *Service) Detect(ctx context.Context, viewerID uuid.UUID) (DetectOutcome, error) {
	start := time.Now()
	defer func() { metrics.DetectionDuration.Observe(time.Since(start).Seconds()) }()

	snap, err := s.snapshot(ctx, viewerID)
	if err != nil {
		metrics.DetectionErrors.Inc()
		return DetectOutcome{}, err
	}

	state, err := s.proposals.Load(ctx, viewerID)
	if err != nil {
		metrics.DetectionErrors.Inc()
		return DetectOutcome{}, errs.Collaborator(err, "load proposals")
	}

	next, res := matchmaking.Detect(state, snap)
	if err := s.proposals.Save(ctx, next); err != nil {
		metrics.DetectionErrors.Inc()
		return DetectOutcome{}, errs.Collaborator(err, "save proposals")
	}

	metrics.ProposalsDetected.Add(float64(len(res.Added)))
	metrics.ProposalsPruned.Add(float64(len(res.Pruned)))
	for _, p := range res.Added {
		s.publish(ctx, models.EventProposalDetected, viewerID, p)
	}
	for _, p := range res.Pruned {
		s.publish(ctx, models.EventProposalPruned, viewerID, p)
	}

	if len(res.Added) > 0 || len(res.Pruned) > 0 {
		s.log.WithFields(logrus.Fields{
			"viewer": viewerID,
			"added":  len(res.Added),
			"pruned": len(res.Pruned),
			"open":   len(next.Proposals),
		}).Debug("detection cycle")
	}

	return DetectOutcome{
		Proposals: next.Proposals,
		Added:     len(res.Added),
		Pruned:    len(res.Pruned),
		Active:    snap.Active(),
	}, nil
}

// snapshot loads everything a detection cycle reads. Profiles are fetched in
// one batch; when that fails the cycle proceeds with placeholders.
func (s *Service) snapshot(ctx context.Context, viewerID uuid.UUID) (matchmaking.Snapshot, error) {
	snap := matchmaking.Snapshot{
		ViewerID:   viewerID,
		QueuePools: make(map[models.GameMode][]models.QueueEntry),
		Now:        s.now(),
	}

	own, err := s.store.LobbiesByCreator(ctx, viewerID)
	if err != nil {
		return snap, errs.Collaborator(err, "load viewer lobbies")
	}
	snap.OwnLobbies = own

	for _, l := range own {
		if !l.IsOpen() {
			continue
		}
		if _, loaded := snap.QueuePools[l.GameMode]; loaded {
			continue
		}
		pool, err := s.store.QueueByMode(ctx, l.GameMode, s.opts.PoolLimit)
		if err != nil {
			return snap, errs.Collaborator(err, "load queue")
		}
		snap.QueuePools[l.GameMode] = pool
	}

	entry, err := s.store.QueueEntryByUser(ctx, viewerID)
	if err != nil {
		return snap, errs.Collaborator(err, "load viewer queue entry")
	}
	snap.ViewerEntry = entry
	if entry != nil {
		open, err := s.store.OpenLobbies(ctx, entry.GameMode, s.opts.PoolLimit)
		if err != nil {
			return snap, errs.Collaborator(err, "load open lobbies")
		}
		snap.OpenLobbies = open
	}

	ids := []uuid.UUID{viewerID}
	for _, pool := range snap.QueuePools {
		ids = append(ids, lo.Map(pool, func(e models.QueueEntry, _ int) uuid.UUID { return e.UserID })...)
	}
	ids = append(ids, lo.Map(snap.OpenLobbies, func(l models.Lobby, _ int) uuid.UUID { return l.CreatorID })...)

	profiles, err := s.store.ProfilesByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		s.log.WithError(err).WithField("viewer", viewerID).Warn("profile batch failed, using placeholders")
		profiles = map[uuid.UUID]models.Profile{}
	}
	snap.Profiles = profiles
	return snap, nil
}

// Accept admits the proposal's player to the lobby. The proposal is removed
// whatever the outcome. A lobby that filled in the meantime, or a player another
// lobby already took, yields a conflict.
func (s *Service) Accept(ctx context.Context, viewerID uuid.UUID, proposalID string) (models.Membership, error) {
	state, err := s.proposals.Load(ctx, viewerID)
	if err != nil {
		return models.Membership{}, errs.Collaborator(err, "load proposals")
	}
	proposal, _ := state.Get(proposalID)
	next, intent, err := matchmaking.Accept(state, proposalID)
	if err != nil {
		return models.Membership{}, err
	}
	if err := s.proposals.Save(ctx, next); err != nil {
		return models.Membership{}, errs.Collaborator(err, "save proposals")
	}

	lobby, err := s.store.GetLobby(ctx, intent.LobbyID)
	if err != nil {
		if errs.IsNotFound(err) {
			return models.Membership{}, err
		}
		return models.Membership{}, errs.Collaborator(err, "load lobby")
	}

	// Removing the queue entry claims the player; whoever removes it first wins.
	claimed, err := s.store.DeleteQueueEntry(ctx, intent.QueueEntryID)
	if err != nil {
		return models.Membership{}, errs.Collaborator(err, "claim queue entry")
	}
	if !claimed {
		metrics.AcceptConflicts.Inc()
		s.publish(ctx, models.EventAcceptConflict, viewerID, proposal)
		return models.Membership{}, errs.Conflict("player %s is no longer queued", intent.UserID)
	}

	member, err := s.members.Join(ctx, lobby, intent.UserID, intent.Role)
	if err != nil {
		s.requeue(ctx, proposal.Entry)
		if errs.IsConflict(err) {
			metrics.AcceptConflicts.Inc()
			s.publish(ctx, models.EventAcceptConflict, viewerID, proposal)
		}
		return models.Membership{}, err
	}

	metrics.ProposalsAccepted.Inc()
	s.publish(ctx, models.EventProposalAccepted, viewerID, proposal)
	s.log.WithFields(logrus.Fields{
		"viewer":   viewerID,
		"proposal": proposalID,
		"lobby":    intent.LobbyID,
		"user":     intent.UserID,
		"role":     intent.Role,
	}).Info("proposal accepted")
	return member, nil
}

// requeue puts back an entry claimed by an accept that could not seat the player.
func (s *Service) requeue(ctx context.Context, entry models.QueueEntry) {
	if err := s.store.InsertQueueEntry(ctx, entry); err != nil {
		s.log.WithError(err).WithField("user", entry.UserID).Warn("accept: could not restore queue entry")
	}
}

// Reject pulls the candidate out of the queue entirely and drops the proposal.
// The proposal is dropped even when the queue delete fails.
func (s *Service) Reject(ctx context.Context, viewerID uuid.UUID, proposalID string) error {
	state, err := s.proposals.Load(ctx, viewerID)
	if err != nil {
		return errs.Collaborator(err, "load proposals")
	}
	proposal, _ := state.Get(proposalID)
	next, intent, err := matchmaking.Reject(state, proposalID)
	if err != nil {
		return err
	}

	if _, err := s.store.DeleteQueueEntry(ctx, intent.QueueEntryID); err != nil {
		s.log.WithError(err).WithField("proposal", proposalID).Warn("reject: queue entry delete failed")
	}
	if err := s.proposals.Save(ctx, next); err != nil {
		return errs.Collaborator(err, "save proposals")
	}

	metrics.ProposalsRejected.Inc()
	s.publish(ctx, models.EventProposalRejected, viewerID, proposal)
	return nil
}

// CreateLobbyInput is what a creator submits.
type CreateLobbyInput struct {
	Title          string
	Description    string
	GameMode       models.GameMode
	PreferredRoles models.RoleSet
	RankMin        *models.Rank
	RankMax        *models.Rank
	PlaystyleTags  []string
	MaxMembers     int
	ScheduledTime  *time.Time
}

// CreateLobby opens a lobby and seats the creator in their first role.
// Seating failures are logged; the lobby still exists.
func (s *Service) CreateLobby(ctx context.Context, creatorID uuid.UUID, in CreateLobbyInput) (models.Lobby, error) {
	title := strings.TrimSpace(in.Title)
	if len([]rune(title)) < minTitleLength {
		return models.Lobby{}, errs.Validation("title must have at least %d characters", minTitleLength)
	}
	if in.GameMode == "" {
		return models.Lobby{}, errs.Validation("game mode is required")
	}
	if len(in.PreferredRoles) == 0 {
		return models.Lobby{}, errs.Validation("select at least one role")
	}
	maxMembers := in.MaxMembers
	if maxMembers == 0 {
		maxMembers = models.DefaultMaxMembers
	}
	if maxMembers < 2 || maxMembers > models.DefaultMaxMembers {
		return models.Lobby{}, errs.Validation("max members must be between 2 and %d", models.DefaultMaxMembers)
	}
	if in.RankMin != nil && in.RankMax != nil && rating.Ordinal(*in.RankMin) > rating.Ordinal(*in.RankMax) {
		return models.Lobby{}, errs.Validation("minimum rank is above maximum rank")
	}

	now := s.now()
	lobby := models.Lobby{
		ID:             uuid.New(),
		CreatorID:      creatorID,
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		GameMode:       in.GameMode,
		PreferredRoles: in.PreferredRoles,
		RankMin:        in.RankMin,
		RankMax:        in.RankMax,
		PlaystyleTags:  nilIfEmpty(in.PlaystyleTags),
		CurrentMembers: 1,
		MaxMembers:     maxMembers,
		Status:         models.LobbyWaiting,
		ScheduledTime:  in.ScheduledTime,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.InsertLobby(ctx, lobby); err != nil {
		return models.Lobby{}, errs.Collaborator(err, "insert lobby")
	}

	if _, err := s.members.Seat(ctx, lobby, in.PreferredRoles[0]); err != nil {
		s.log.WithError(err).WithField("lobby", lobby.ID).Warn("creator could not be seated")
	}

	metrics.LobbiesCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"lobby":   lobby.ID,
		"creator": creatorID,
		"mode":    lobby.GameMode,
	}).Info("lobby created")
	return lobby, nil
}

// EnterQueueInput is what a player submits to join the queue.
type EnterQueueInput struct {
	GameMode       models.GameMode
	PreferredRoles models.RoleSet
	RankMin        *models.Rank
	RankMax        *models.Rank
	PlaystyleTags  []string
}

// EnterQueue places userID in the queue, copying their ranks from the profile.
func (s *Service) EnterQueue(ctx context.Context, userID uuid.UUID, in EnterQueueInput) (models.QueueEntry, error) {
	if in.GameMode == "" {
		return models.QueueEntry{}, errs.Validation("game mode is required")
	}
	if len(in.PreferredRoles) == 0 {
		return models.QueueEntry{}, errs.Validation("select at least one role")
	}
	if in.RankMin != nil && in.RankMax != nil && rating.Ordinal(*in.RankMin) > rating.Ordinal(*in.RankMax) {
		return models.QueueEntry{}, errs.Validation("minimum rank is above maximum rank")
	}

	profiles, err := s.store.ProfilesByIDs(ctx, []uuid.UUID{userID})
	if err != nil {
		return models.QueueEntry{}, errs.Collaborator(err, "load profile")
	}
	profile := profiles[userID]

	entry := models.QueueEntry{
		ID:             uuid.New(),
		UserID:         userID,
		GameMode:       in.GameMode,
		PreferredRoles: in.PreferredRoles,
		RankSolo:       profile.RankSolo,
		RankFlex:       profile.RankFlex,
		RankMin:        in.RankMin,
		RankMax:        in.RankMax,
		PlaystyleTags:  nilIfEmpty(in.PlaystyleTags),
		CreatedAt:      s.now(),
	}
	if err := s.store.InsertQueueEntry(ctx, entry); err != nil {
		if errs.IsConflict(err) {
			return models.QueueEntry{}, err
		}
		return models.QueueEntry{}, errs.Collaborator(err, "insert queue entry")
	}

	metrics.QueueEntries.Inc()
	s.log.WithFields(logrus.Fields{
		"user": userID,
		"mode": entry.GameMode,
	}).Info("entered queue")
	return entry, nil
}

// LeaveQueue removes userID's queue entry.
func (s *Service) LeaveQueue(ctx context.Context, userID uuid.UUID) error {
	removed, err := s.store.DeleteQueueEntryByUser(ctx, userID)
	if err != nil {
		return errs.Collaborator(err, "delete queue entry")
	}
	if !removed {
		return errs.NotFound("user %s is not queued", userID)
	}
	return nil
}

// History lists userID's past lobbies, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]models.HistoryRecord, error) {
	recs, err := s.store.HistoryByUser(ctx, userID, s.opts.HistoryLimit)
	if err != nil {
		return nil, errs.Collaborator(err, "load history")
	}
	return recs, nil
}

// Reputation summarizes the evaluations userID received.
func (s *Service) Reputation(ctx context.Context, userID uuid.UUID) (rating.Reputation, error) {
	evals, err := s.store.EvaluationsFor(ctx, userID)
	if err != nil {
		return rating.Reputation{}, errs.Collaborator(err, "load evaluations")
	}
	return rating.Summarize(evals), nil
}

func (s *Service) publish(ctx context.Context, typ models.EventType, viewerID uuid.UUID, p matchmaking.MatchProposal) {
	if s.events == nil {
		return
	}
	ev := models.MatchEvent{
		Type:       typ,
		ViewerID:   viewerID,
		ProposalID: p.ID,
		LobbyID:    p.Lobby.ID,
		UserID:     p.Entry.UserID,
		Score:      p.Score,
		Timestamp:  s.now().UnixMilli(),
	}
	if err := s.events.PublishEvent(ctx, ev); err != nil {
		s.log.WithError(err).WithField("type", typ).Warn("event publish failed")
	}
}

// nilIfEmpty trims and deduplicates tags, returning nil when none remain.
func nilIfEmpty(tags []string) []string {
	tags = lo.Uniq(lo.Compact(lo.Map(tags, func(t string, _ int) string { return strings.TrimSpace(t) })))
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// defaultNickname names a user who has not set up a profile yet.
const defaultNickname = "Player"

// Profile returns userID's profile, or an empty starter profile when they have
// not saved one.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	profiles, err := s.store.ProfilesByIDs(ctx, []uuid.UUID{userID})
	if err != nil {
		return models.Profile{}, errs.Collaborator(err, "load profile")
	}
	if p, ok := profiles[userID]; ok {
		return p, nil
	}
	return models.PlaceholderProfile(userID, defaultNickname), nil
}

// ProfileInput is what a user submits to edit their profile.
type ProfileInput struct {
	Nickname        string
	IconURL         string
	RiotID          string
	RolesPreference models.RoleSet
	PlaystyleTags   []string
	RankSolo        *models.Rank
	RankFlex        *models.Rank
}

// UpdateProfile replaces userID's profile. Queue entries keep the ranks they
// copied on entry.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (models.Profile, error) {
	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" {
		return models.Profile{}, errs.Validation("nickname is required")
	}
	p := models.Profile{
		UserID:          userID,
		Nickname:        nickname,
		IconURL:         strings.TrimSpace(in.IconURL),
		RiotID:          strings.TrimSpace(in.RiotID),
		RolesPreference: in.RolesPreference,
		PlaystyleTags:   nilIfEmpty(in.PlaystyleTags),
		RankSolo:        in.RankSolo,
		RankFlex:        in.RankFlex,
	}
	if p.RolesPreference == nil {
		p.RolesPreference = models.RoleSet{}
	}
	if p.PlaystyleTags == nil {
		p.PlaystyleTags = []string{}
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return models.Profile{}, errs.Collaborator(err, "save profile")
	}
	return p, nil
}
