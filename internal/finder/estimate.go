// internal/finder/estimate.go
package finder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/samber/lo"
)

// EstimateForLobby forecasts how long the lobby will take to fill.
func (s *Service) EstimateForLobby(ctx context.Context, lobbyID uuid.UUID) (matchmaking.Forecast, error) {
	lobby, err := s.store.GetLobby(ctx, lobbyID)
	if err != nil {
		if errs.IsNotFound(err) {
			return matchmaking.Forecast{}, err
		}
		return matchmaking.FallbackForecast(""), nil
	}

	key := fmt.Sprintf("lobby:%s:%d", lobby.ID, lobby.CurrentMembers)
	return s.cachedForecast(ctx, key, lobby.GameMode, func() (matchmaking.Forecast, error) {
		pool, err := s.store.QueueByMode(ctx, lobby.GameMode, matchmaking.EstimateQueueLimit)
		if err != nil {
			return matchmaking.Forecast{}, err
		}
		pool = lo.Filter(pool, func(e models.QueueEntry, _ int) bool { return e.UserID != lobby.CreatorID })
		counts := matchmaking.Counts{
			CompatiblePlayers: len(matchmaking.FilterQueue(lobby, pool)),
			QueueDepth:        len(pool),
		}
		return matchmaking.NewForecast(counts, matchmaking.Viewer{
			IsLobbyCreator: true,
			SlotsNeeded:    lobby.SlotsNeeded(),
			GameMode:       lobby.GameMode,
		}), nil
	})
}

// EstimateForQueue forecasts how long userID will wait for a lobby.
func (s *Service) EstimateForQueue(ctx context.Context, userID uuid.UUID) (matchmaking.Forecast, error) {
	entry, err := s.store.QueueEntryByUser(ctx, userID)
	if err != nil {
		return matchmaking.FallbackForecast(""), nil
	}
	if entry == nil {
		return matchmaking.Forecast{}, errs.NotFound("user %s is not queued", userID)
	}

	key := "queue:" + entry.ID.String()
	return s.cachedForecast(ctx, key, entry.GameMode, func() (matchmaking.Forecast, error) {
		lobbies, err := s.store.OpenLobbies(ctx, entry.GameMode, matchmaking.EstimateLobbyLimit)
		if err != nil {
			return matchmaking.Forecast{}, err
		}
		lobbies = lo.Filter(lobbies, func(l models.Lobby, _ int) bool { return l.CreatorID != userID })

		creators := lo.Uniq(lo.Map(lobbies, func(l models.Lobby, _ int) uuid.UUID { return l.CreatorID }))
		profiles, err := s.store.ProfilesByIDs(ctx, creators)
		if err != nil {
			profiles = map[uuid.UUID]models.Profile{}
		}

		pool, err := s.store.QueueByMode(ctx, entry.GameMode, matchmaking.EstimateQueueLimit)
		if err != nil {
			return matchmaking.Forecast{}, err
		}
		counts := matchmaking.Counts{
			CompatibleLobbies: len(matchmaking.FilterLobbies(*entry, lobbies, profiles)),
			QueueDepth:        len(pool),
		}
		return matchmaking.NewForecast(counts, matchmaking.Viewer{GameMode: entry.GameMode}), nil
	})
}

// cachedForecast serves a cached forecast when present, otherwise computes and
// stores one. A compute failure degrades to the per-mode fallback.
func (s *Service) cachedForecast(ctx context.Context, key string, mode models.GameMode, compute func() (matchmaking.Forecast, error)) (matchmaking.Forecast, error) {
	if s.forecasts != nil {
		if f, err := s.forecasts.GetForecast(ctx, key); err != nil {
			s.log.WithError(err).WithField("key", key).Debug("forecast cache read failed")
		} else if f != nil {
			return *f, nil
		}
	}

	f, err := compute()
	if err != nil {
		s.log.WithError(err).WithField("mode", mode).Warn("estimate counts unavailable, using fallback")
		return matchmaking.FallbackForecast(mode), nil
	}

	if s.forecasts != nil {
		if err := s.forecasts.SetForecast(ctx, key, f, ForecastTTL); err != nil {
			s.log.WithError(err).WithField("key", key).Debug("forecast cache write failed")
		}
	}
	return f, nil
}
