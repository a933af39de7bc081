package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/matchmaking"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, "", time.Minute), mr
}

func TestTrackerRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	viewer := uuid.New()

	empty, err := c.Load(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, viewer, empty.ViewerID)
	assert.Empty(t, empty.Proposals)

	tr := matchmaking.Tracker{ViewerID: viewer, Proposals: []matchmaking.MatchProposal{
		{ID: "b-1", Score: 90},
		{ID: "a-2", Score: 70},
	}}
	require.NoError(t, c.Save(ctx, tr))
	assert.True(t, mr.Exists(proposalsPrefix+viewer.String()))

	got, err := c.Load(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, got.Proposals, 2)
	assert.Equal(t, "b-1", got.Proposals[0].ID, "detection order survives the round trip")

	mr.FastForward(2 * time.Minute)
	expired, err := c.Load(ctx, viewer)
	require.NoError(t, err)
	assert.Empty(t, expired.Proposals)
}

func TestSaveEmptyTrackerDeletesKey(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	viewer := uuid.New()

	require.NoError(t, c.Save(ctx, matchmaking.Tracker{ViewerID: viewer, Proposals: []matchmaking.MatchProposal{{ID: "x"}}}))
	require.NoError(t, c.Save(ctx, matchmaking.NewTracker(viewer)))
	assert.False(t, mr.Exists(proposalsPrefix+viewer.String()))
}

func TestForecastCache(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	f, err := c.GetForecast(ctx, "lobby:1")
	require.NoError(t, err)
	assert.Nil(t, f)

	want := matchmaking.NewForecast(matchmaking.Counts{CompatibleLobbies: 3}, matchmaking.Viewer{})
	require.NoError(t, c.SetForecast(ctx, "lobby:1", want, 30*time.Second))

	f, err = c.GetForecast(ctx, "lobby:1")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, want, *f)

	mr.FastForward(31 * time.Second)
	f, err = c.GetForecast(ctx, "lobby:1")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestPublishEvent(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ev := models.MatchEvent{Type: models.EventProposalAccepted, ProposalID: "l-e", Score: 80, Timestamp: 1700000000000}
	require.NoError(t, c.PublishEvent(ctx, ev))

	items, err := mr.List(DefaultEventQueue)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got models.MatchEvent
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, ev, got)
}
