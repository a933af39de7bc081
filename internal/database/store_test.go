package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/models"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC)

func str(s string) *string { return &s }

// anyArgs matches n statement arguments of any value.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// expectTxClosed covers the deferred Rollback pgx.BeginTxFunc issues after the
// transaction already ended; real pgx answers it with ErrTxClosed.
func expectTxClosed(mock pgxmock.PgxPoolIface) {
	mock.ExpectRollback().WillReturnError(pgx.ErrTxClosed)
}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

var lobbyCols = []string{
	"id", "creator_id", "title", "description", "game_mode", "preferred_roles",
	"required_rank_min", "required_rank_max", "playstyle_tags",
	"current_members", "max_members", "status", "scheduled_time", "created_at", "updated_at",
}

func TestGetLobby(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()
	id, creator := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM lobbies WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(lobbyCols).AddRow(
			id, creator, "evening climb", "", "ranked_solo_duo", []string{"mid", "wood", "mid"},
			str("silver"), (*string)(nil), []string(nil),
			2, 5, "waiting", (*time.Time)(nil), t0, t0,
		))

	l, err := store.GetLobby(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, creator, l.CreatorID)
	assert.Equal(t, models.ModeRankedSoloDuo, l.GameMode)
	assert.Equal(t, models.RoleSet{models.RoleMid}, l.PreferredRoles)
	require.NotNil(t, l.RankMin)
	assert.Equal(t, models.RankSilver, *l.RankMin)
	assert.Nil(t, l.RankMax)
	assert.Equal(t, []string{}, l.PlaystyleTags)
	assert.True(t, l.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLobbyNotFound(t *testing.T) {
	mock, store := newMock(t)
	id := uuid.New()

	mock.ExpectQuery("FROM lobbies WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(lobbyCols))

	_, err := store.GetLobby(context.Background(), id)
	assert.True(t, errs.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementMembers(t *testing.T) {
	mock, store := newMock(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec("UPDATE lobbies").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE lobbies").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := store.IncrementMembers(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IncrementMembers(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "a full or closed lobby takes no slot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementMembersMissingLobby(t *testing.T) {
	mock, store := newMock(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE lobbies").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.DecrementMembers(context.Background(), id)
	assert.True(t, errs.IsNotFound(err))
}

func TestInsertQueueEntryDuplicate(t *testing.T) {
	mock, store := newMock(t)
	e := models.QueueEntry{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		GameMode:       models.ModeRankedFlex,
		PreferredRoles: models.RoleSet{models.RoleSupport},
		CreatedAt:      t0,
	}

	mock.ExpectExec("INSERT INTO queue_entries").
		WithArgs(e.ID, e.UserID, "ranked_flex", []string{"support"},
			(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), []string{}, t0).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := store.InsertQueueEntry(context.Background(), e)
	assert.True(t, errs.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteQueueEntryReportsClaim(t *testing.T) {
	mock, store := newMock(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM queue_entries WHERE id").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM queue_entries WHERE id").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	claimed, err := store.DeleteQueueEntry(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.DeleteQueueEntry(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, claimed, "a second delete finds nothing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueEntryByUserMissing(t *testing.T) {
	mock, store := newMock(t)
	user := uuid.New()

	mock.ExpectQuery("FROM queue_entries WHERE user_id").
		WithArgs(user).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "game_mode", "preferred_roles", "rank_solo", "rank_flex",
			"required_rank_min", "required_rank_max", "playstyle_tags", "created_at",
		}))

	e, err := store.QueueEntryByUser(context.Background(), user)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestProfilesByIDs(t *testing.T) {
	mock, store := newMock(t)
	a, b := uuid.New(), uuid.New()
	ids := []uuid.UUID{a, b}

	mock.ExpectQuery("FROM profiles").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "nickname", "icon_url", "riot_id", "roles_preference", "playstyle_tags", "rank_solo", "rank_flex",
		}).AddRow(a, "shotcaller", "", "shot#br1", []string{"top"}, []string{"tryhard"}, str("gold"), str("unranked")))

	got, err := store.ProfilesByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.RankGold, *got[a].RankSolo)
	assert.Nil(t, got[a].RankFlex)
	_, ok := got[b]
	assert.False(t, ok, "missing rows are left for the caller to fill")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfilesByIDsEmpty(t *testing.T) {
	mock, store := newMock(t)

	got, err := store.ProfilesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertHistoryBatch(t *testing.T) {
	mock, store := newMock(t)
	lobby := uuid.New()
	recs := []models.HistoryRecord{
		{ID: uuid.New(), LobbyID: lobby, UserID: uuid.New(), LobbyTitle: "duo", GameMode: models.ModeARAM, Role: models.RoleFill, JoinedAt: t0, LeftAt: t0.Add(25 * time.Minute), TotalTimeMinutes: 25},
		{ID: uuid.New(), LobbyID: lobby, UserID: uuid.New(), LobbyTitle: "duo", GameMode: models.ModeARAM, Role: models.RoleMid, JoinedAt: t0, LeftAt: t0.Add(25 * time.Minute), TotalTimeMinutes: 25},
	}

	mock.ExpectBegin()
	for range recs {
		mock.ExpectExec("INSERT INTO lobby_history").
			WithArgs(anyArgs(9)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()
	expectTxClosed(mock)

	require.NoError(t, store.InsertHistory(context.Background(), recs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEvaluationsRollsBackOnDuplicate(t *testing.T) {
	mock, store := newMock(t)
	evals := []models.Evaluation{
		{ID: uuid.New(), LobbyID: uuid.New(), EvaluatorID: uuid.New(), EvaluatedID: uuid.New(), Rating: 4, CreatedAt: t0},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_evaluations").
		WithArgs(anyArgs(9)...).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	mock.ExpectRollback()
	expectTxClosed(mock)

	err := store.InsertEvaluations(context.Background(), evals)
	assert.True(t, errs.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEvents(t *testing.T) {
	mock, store := newMock(t)
	ev := models.MatchEvent{
		Type:       models.EventProposalAccepted,
		ViewerID:   uuid.New(),
		ProposalID: "a-b",
		LobbyID:    uuid.New(),
		UserID:     uuid.New(),
		Score:      85,
		Timestamp:  t0.UnixMilli(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matchmaking_events").
		WithArgs("proposal_accepted", ev.ViewerID, "a-b", ev.LobbyID, ev.UserID, 85, t0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	expectTxClosed(mock)

	require.NoError(t, store.InsertEvents(context.Background(), []models.MatchEvent{ev}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	mock, store := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
