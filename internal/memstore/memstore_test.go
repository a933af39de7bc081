package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementMembersStopsAtCapacity(t *testing.T) {
	ctx := context.Background()
	s := New()
	l := models.Lobby{ID: uuid.New(), CurrentMembers: 3, MaxMembers: 5, Status: models.LobbyWaiting}
	require.NoError(t, s.InsertLobby(ctx, l))

	ok, err := s.IncrementMembers(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IncrementMembers(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := s.GetLobby(ctx, l.ID)
	assert.Equal(t, 5, got.CurrentMembers)
	assert.Equal(t, models.LobbyFull, got.Status)

	ok, err = s.IncrementMembers(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.DecrementMembers(ctx, l.ID))
	got, _ = s.GetLobby(ctx, l.ID)
	assert.Equal(t, 4, got.CurrentMembers)
	assert.Equal(t, models.LobbyWaiting, got.Status)
}

func TestQueueOneEntryPerUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := uuid.New()
	require.NoError(t, s.InsertQueueEntry(ctx, models.QueueEntry{ID: uuid.New(), UserID: user}))

	err := s.InsertQueueEntry(ctx, models.QueueEntry{ID: uuid.New(), UserID: user})
	assert.True(t, errs.IsConflict(err))

	removed, err := s.DeleteQueueEntryByUser(ctx, user)
	require.NoError(t, err)
	assert.True(t, removed)

	e, err := s.QueueEntryByUser(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := uuid.New()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertHistory(ctx, []models.HistoryRecord{
		{ID: uuid.New(), UserID: user, LobbyTitle: "old", LeftAt: t0},
		{ID: uuid.New(), UserID: user, LobbyTitle: "new", LeftAt: t0.Add(time.Hour)},
		{ID: uuid.New(), UserID: uuid.New(), LobbyTitle: "other", LeftAt: t0},
	}))

	got, err := s.HistoryByUser(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].LobbyTitle)
}

func TestForecastExpires(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SetForecast(ctx, "k", matchmaking.Forecast{Label: "5 min"}, 30*time.Second))
	f, err := s.GetForecast(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "5 min", f.Label)

	now = now.Add(31 * time.Second)
	f, err = s.GetForecast(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, f)
}
